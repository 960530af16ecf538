package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wanderlust-app/wanderlust/pkg/cache"
)

const listingCacheTTL = 5 * time.Minute

// Listings persists property listings. Single-listing reads go through
// a cache; every write invalidates the affected entry.
type Listings struct {
	pool  *pgxpool.Pool
	cache cache.Cache[Listing]
}

// NewListings creates a Listings repository backed by the given cache.
func NewListings(pool *pgxpool.Pool, c cache.Cache[Listing]) *Listings {
	return &Listings{pool: pool, cache: c}
}

// CreateParams holds the fields needed to create a listing.
type CreateParams struct {
	Title       string
	Description string
	Location    string
	Country     string
	ImageURL    string
	Price       float64
	OwnerID     uuid.UUID
}

// Create inserts a new listing and returns it.
func (r *Listings) Create(ctx context.Context, p CreateParams) (*Listing, error) {
	const q = `
		INSERT INTO listings (id, owner_id, title, description, price, location, country, image_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, owner_id, title, description, price, location, country, image_url, created_at, updated_at`

	var l Listing
	err := r.pool.QueryRow(ctx, q,
		uuid.New(), p.OwnerID, p.Title, p.Description, p.Price, p.Location, p.Country, p.ImageURL,
	).Scan(&l.ID, &l.OwnerID, &l.Title, &l.Description, &l.Price, &l.Location, &l.Country, &l.ImageURL, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return nil, wrapErr(err)
	}
	return &l, nil
}

// GetByID returns a listing with its owner's username, served from the
// cache when possible.
func (r *Listings) GetByID(ctx context.Context, id uuid.UUID) (*Listing, error) {
	l, err := cache.GetOrSet(ctx, r.cache, cacheKey(id), func(ctx context.Context) (Listing, time.Duration, error) {
		l, err := r.fetch(ctx, id)
		if err != nil {
			return Listing{}, 0, err
		}
		return *l, listingCacheTTL, nil
	})
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *Listings) fetch(ctx context.Context, id uuid.UUID) (*Listing, error) {
	const q = `
		SELECT l.id, l.owner_id, l.title, l.description, l.price, l.location, l.country, l.image_url,
		       l.created_at, l.updated_at, u.username
		FROM listings l
		JOIN users u ON u.id = l.owner_id
		WHERE l.id = $1`

	var l Listing
	err := r.pool.QueryRow(ctx, q, id).Scan(
		&l.ID, &l.OwnerID, &l.Title, &l.Description, &l.Price, &l.Location, &l.Country, &l.ImageURL,
		&l.CreatedAt, &l.UpdatedAt, &l.OwnerName,
	)
	if err != nil {
		return nil, wrapErr(err)
	}
	return &l, nil
}

// List returns all listings, newest first.
func (r *Listings) List(ctx context.Context) ([]Listing, error) {
	const q = `
		SELECT l.id, l.owner_id, l.title, l.description, l.price, l.location, l.country, l.image_url,
		       l.created_at, l.updated_at, u.username
		FROM listings l
		JOIN users u ON u.id = l.owner_id
		ORDER BY l.created_at DESC`

	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, wrapErr(err)
	}
	defer rows.Close()

	return scanListings(rows)
}

// UpdateParams holds the mutable listing fields.
type UpdateParams struct {
	Title       string
	Description string
	Location    string
	Country     string
	ImageURL    string
	Price       float64
}

// Update replaces the mutable fields of a listing.
func (r *Listings) Update(ctx context.Context, id uuid.UUID, p UpdateParams) (*Listing, error) {
	const q = `
		UPDATE listings
		SET title = $2, description = $3, price = $4, location = $5, country = $6, image_url = $7,
		    updated_at = now()
		WHERE id = $1
		RETURNING id, owner_id, title, description, price, location, country, image_url, created_at, updated_at`

	var l Listing
	err := r.pool.QueryRow(ctx, q, id, p.Title, p.Description, p.Price, p.Location, p.Country, p.ImageURL).
		Scan(&l.ID, &l.OwnerID, &l.Title, &l.Description, &l.Price, &l.Location, &l.Country, &l.ImageURL, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return nil, wrapErr(err)
	}

	_ = r.cache.Delete(ctx, cacheKey(id))
	return &l, nil
}

// Delete removes a listing. Reviews cascade at the database level.
func (r *Listings) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM listings WHERE id = $1`, id)
	if err != nil {
		return wrapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	_ = r.cache.Delete(ctx, cacheKey(id))
	return nil
}

func scanListings(rows pgx.Rows) ([]Listing, error) {
	var out []Listing
	for rows.Next() {
		var l Listing
		if err := rows.Scan(
			&l.ID, &l.OwnerID, &l.Title, &l.Description, &l.Price, &l.Location, &l.Country, &l.ImageURL,
			&l.CreatedAt, &l.UpdatedAt, &l.OwnerName,
		); err != nil {
			return nil, wrapErr(err)
		}
		out = append(out, l)
	}
	return out, wrapErr(rows.Err())
}

func cacheKey(id uuid.UUID) string {
	return "listing:" + id.String()
}
