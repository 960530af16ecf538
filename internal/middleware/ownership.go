package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/wanderlust-app/wanderlust/internal/app"
	"github.com/wanderlust-app/wanderlust/internal/repository"
)

const (
	// MsgGone is returned when a route references a listing or review
	// that no longer exists.
	MsgGone = "Page does not exist anymore."

	// MsgNotOwner is flashed when a user tries to modify someone
	// else's listing.
	MsgNotOwner = "You are not the owner of this listing."

	// MsgNotAuthor is flashed when a user tries to delete someone
	// else's review.
	MsgNotAuthor = "You are not the author of this review."
)

type listingKey struct{}
type reviewKey struct{}

// ListingGetter loads listings for ownership checks.
type ListingGetter interface {
	GetByID(ctx context.Context, id uuid.UUID) (*repository.Listing, error)
}

// ReviewGetter loads reviews for authorship checks.
type ReviewGetter interface {
	GetByID(ctx context.Context, id uuid.UUID) (*repository.Review, error)
}

// RequireListingOwner gates mutating listing routes. The {id} route
// param must name an existing listing owned by the current user. A
// missing listing fails with 400 rather than 404 so stale bookmarks
// and re-submitted forms get a clear answer. A non-owner is flashed
// and bounced back to the listing page.
func RequireListingOwner(listings ListingGetter) app.Middleware {
	return func(next app.HandlerFunc) app.HandlerFunc {
		return func(c app.Context) error {
			id, err := uuid.Parse(c.Param("id"))
			if err != nil {
				return c.Error(http.StatusBadRequest, MsgGone)
			}

			l, err := listings.GetByID(c.Context(), id)
			if err != nil {
				if errors.Is(err, repository.ErrNotFound) {
					return c.Error(http.StatusBadRequest, MsgGone)
				}
				return err
			}

			if !c.IsCurrentUser(l.OwnerID.String()) {
				c.Flash(app.FlashError, MsgNotOwner)
				return c.Redirect(http.StatusFound, "/listings/"+l.ID.String())
			}

			c.Set(listingKey{}, l)
			return next(c)
		}
	}
}

// Listing returns the listing loaded by RequireListingOwner, or nil.
func Listing(c app.Context) *repository.Listing {
	if l, ok := c.Get(listingKey{}).(*repository.Listing); ok {
		return l
	}
	return nil
}

// RequireReviewAuthor gates review deletion. Mirrors
// RequireListingOwner: a missing review fails closed with 400, and a
// non-author is flashed and redirected to the listing.
func RequireReviewAuthor(reviews ReviewGetter) app.Middleware {
	return func(next app.HandlerFunc) app.HandlerFunc {
		return func(c app.Context) error {
			id, err := uuid.Parse(c.Param("reviewID"))
			if err != nil {
				return c.Error(http.StatusBadRequest, MsgGone)
			}

			rv, err := reviews.GetByID(c.Context(), id)
			if err != nil {
				if errors.Is(err, repository.ErrNotFound) {
					return c.Error(http.StatusBadRequest, MsgGone)
				}
				return err
			}

			if !c.IsCurrentUser(rv.AuthorID.String()) {
				c.Flash(app.FlashError, MsgNotAuthor)
				return c.Redirect(http.StatusFound, "/listings/"+rv.ListingID.String())
			}

			c.Set(reviewKey{}, rv)
			return next(c)
		}
	}
}

// Review returns the review loaded by RequireReviewAuthor, or nil.
func Review(c app.Context) *repository.Review {
	if rv, ok := c.Get(reviewKey{}).(*repository.Review); ok {
		return rv
	}
	return nil
}
