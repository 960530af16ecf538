package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/wanderlust-app/wanderlust/internal/app"
	"github.com/wanderlust-app/wanderlust/internal/middleware"
	"github.com/wanderlust-app/wanderlust/internal/repository"
)

// Review flash messages.
const (
	msgReviewCreated = "New Review Created!"
	msgReviewDeleted = "Review Deleted!"
)

// ReviewStore is the slice of the reviews repository the handler needs.
type ReviewStore interface {
	Create(ctx context.Context, listingID, authorID uuid.UUID, rating int, comment string) (*repository.Review, error)
	GetByID(ctx context.Context, id uuid.UUID) (*repository.Review, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// Reviews handles review creation and deletion on a listing.
type Reviews struct {
	reviews  ReviewStore
	listings middleware.ListingGetter
}

// NewReviews creates the reviews handler.
func NewReviews(reviews ReviewStore, listings middleware.ListingGetter) *Reviews {
	return &Reviews{reviews: reviews, listings: listings}
}

func (h *Reviews) Routes(r app.Router) {
	r.Route("/listings/{id}/reviews", func(r app.Router) {
		r.POST("/", h.create, middleware.RequireLogin(), middleware.ValidateReview())
		r.DELETE("/{reviewID}", h.delete,
			middleware.RequireLogin(), middleware.RequireReviewAuthor(h.reviews))
	})
}

func (h *Reviews) create(c app.Context) error {
	listingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.Error(http.StatusBadRequest, middleware.MsgGone)
	}

	l, err := h.listings.GetByID(c.Context(), listingID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.Error(http.StatusBadRequest, middleware.MsgGone)
		}
		return err
	}

	authorID, err := uuid.Parse(c.UserID())
	if err != nil {
		return err
	}

	form := middleware.ReviewForm(c)
	if _, err := h.reviews.Create(c.Context(), l.ID, authorID, form.Rating, form.Comment); err != nil {
		return err
	}

	c.Flash(app.FlashSuccess, msgReviewCreated)
	return c.Redirect(http.StatusFound, "/listings/"+l.ID.String())
}

func (h *Reviews) delete(c app.Context) error {
	rv := middleware.Review(c)

	if err := h.reviews.Delete(c.Context(), rv.ID); err != nil {
		return err
	}

	c.Flash(app.FlashSuccess, msgReviewDeleted)
	return c.Redirect(http.StatusFound, "/listings/"+rv.ListingID.String())
}
