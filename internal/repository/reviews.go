package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Reviews persists listing reviews.
type Reviews struct {
	pool *pgxpool.Pool
}

// NewReviews creates a Reviews repository.
func NewReviews(pool *pgxpool.Pool) *Reviews {
	return &Reviews{pool: pool}
}

// Create inserts a review on a listing.
func (r *Reviews) Create(ctx context.Context, listingID, authorID uuid.UUID, rating int, comment string) (*Review, error) {
	const q = `
		INSERT INTO reviews (id, listing_id, author_id, rating, comment)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, listing_id, author_id, rating, comment, created_at`

	var rv Review
	err := r.pool.QueryRow(ctx, q, uuid.New(), listingID, authorID, rating, comment).
		Scan(&rv.ID, &rv.ListingID, &rv.AuthorID, &rv.Rating, &rv.Comment, &rv.CreatedAt)
	if err != nil {
		return nil, wrapErr(err)
	}
	return &rv, nil
}

// GetByID returns a review with its author's username.
func (r *Reviews) GetByID(ctx context.Context, id uuid.UUID) (*Review, error) {
	const q = `
		SELECT rv.id, rv.listing_id, rv.author_id, rv.rating, rv.comment, rv.created_at, u.username
		FROM reviews rv
		JOIN users u ON u.id = rv.author_id
		WHERE rv.id = $1`

	var rv Review
	err := r.pool.QueryRow(ctx, q, id).
		Scan(&rv.ID, &rv.ListingID, &rv.AuthorID, &rv.Rating, &rv.Comment, &rv.CreatedAt, &rv.AuthorName)
	if err != nil {
		return nil, wrapErr(err)
	}
	return &rv, nil
}

// ListForListing returns a listing's reviews, newest first.
func (r *Reviews) ListForListing(ctx context.Context, listingID uuid.UUID) ([]Review, error) {
	const q = `
		SELECT rv.id, rv.listing_id, rv.author_id, rv.rating, rv.comment, rv.created_at, u.username
		FROM reviews rv
		JOIN users u ON u.id = rv.author_id
		WHERE rv.listing_id = $1
		ORDER BY rv.created_at DESC`

	rows, err := r.pool.Query(ctx, q, listingID)
	if err != nil {
		return nil, wrapErr(err)
	}
	defer rows.Close()

	var out []Review
	for rows.Next() {
		var rv Review
		if err := rows.Scan(&rv.ID, &rv.ListingID, &rv.AuthorID, &rv.Rating, &rv.Comment, &rv.CreatedAt, &rv.AuthorName); err != nil {
			return nil, wrapErr(err)
		}
		out = append(out, rv)
	}
	return out, wrapErr(rows.Err())
}

// Delete removes a review.
func (r *Reviews) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM reviews WHERE id = $1`, id)
	if err != nil {
		return wrapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
