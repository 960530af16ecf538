package middleware

import (
	"net/http"
	"strings"

	"github.com/wanderlust-app/wanderlust/internal/app"
	"github.com/wanderlust-app/wanderlust/internal/schema"
)

type listingFormKey struct{}
type reviewFormKey struct{}

// ValidateListing binds and validates the listing form before the
// handler runs. Validation failures are joined into a single 400
// response; a successfully validated form is stashed on the request
// so the handler does not re-parse the body.
func ValidateListing() app.Middleware {
	return func(next app.HandlerFunc) app.HandlerFunc {
		return func(c app.Context) error {
			var form schema.ListingForm
			if err := c.Bind(&form); err != nil {
				return c.Error(http.StatusBadRequest, "invalid form data", app.WithError(err))
			}

			details, err := schema.Details(form)
			if err != nil {
				return err
			}
			if len(details) > 0 {
				return c.Error(http.StatusBadRequest, strings.Join(details, ","))
			}

			c.Set(listingFormKey{}, &form)
			return next(c)
		}
	}
}

// ListingForm returns the form validated by ValidateListing, or nil.
func ListingForm(c app.Context) *schema.ListingForm {
	if f, ok := c.Get(listingFormKey{}).(*schema.ListingForm); ok {
		return f
	}
	return nil
}

// ValidateReview binds and validates the review form. Same contract as
// ValidateListing.
func ValidateReview() app.Middleware {
	return func(next app.HandlerFunc) app.HandlerFunc {
		return func(c app.Context) error {
			var form schema.ReviewForm
			if err := c.Bind(&form); err != nil {
				return c.Error(http.StatusBadRequest, "invalid form data", app.WithError(err))
			}

			details, err := schema.Details(form)
			if err != nil {
				return err
			}
			if len(details) > 0 {
				return c.Error(http.StatusBadRequest, strings.Join(details, ","))
			}

			c.Set(reviewFormKey{}, &form)
			return next(c)
		}
	}
}

// ReviewForm returns the form validated by ValidateReview, or nil.
func ReviewForm(c app.Context) *schema.ReviewForm {
	if f, ok := c.Get(reviewFormKey{}).(*schema.ReviewForm); ok {
		return f
	}
	return nil
}
