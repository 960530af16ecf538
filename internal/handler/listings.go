package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/wanderlust-app/wanderlust/internal/app"
	"github.com/wanderlust-app/wanderlust/internal/middleware"
	"github.com/wanderlust-app/wanderlust/internal/repository"
	"github.com/wanderlust-app/wanderlust/pkg/storage"
	"github.com/wanderlust-app/wanderlust/views"
)

// Listing flash messages.
const (
	msgListingCreated = "New Listing Created!"
	msgListingUpdated = "Listing Updated!"
	msgListingDeleted = "Listing Deleted!"
)

// imagePrefix is the object-storage key prefix for listing images.
const imagePrefix = "listings"

// ListingStore is the slice of the listings repository the handler
// needs.
type ListingStore interface {
	Create(ctx context.Context, p repository.CreateParams) (*repository.Listing, error)
	GetByID(ctx context.Context, id uuid.UUID) (*repository.Listing, error)
	List(ctx context.Context) ([]repository.Listing, error)
	Update(ctx context.Context, id uuid.UUID, p repository.UpdateParams) (*repository.Listing, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// ReviewLister loads a listing's reviews for the show page.
type ReviewLister interface {
	ListForListing(ctx context.Context, listingID uuid.UUID) ([]repository.Review, error)
}

// Listings handles the listing CRUD routes.
type Listings struct {
	listings ListingStore
	reviews  ReviewLister
}

// NewListings creates the listings handler.
func NewListings(listings ListingStore, reviews ReviewLister) *Listings {
	return &Listings{listings: listings, reviews: reviews}
}

func (h *Listings) Routes(r app.Router) {
	r.GET("/", h.home)

	r.Route("/listings", func(r app.Router) {
		r.GET("/", h.index)
		r.GET("/new", h.newForm, middleware.RequireLogin())
		r.POST("/", h.create, middleware.RequireLogin(), middleware.ValidateListing())
		r.GET("/{id}", h.show)
		r.GET("/{id}/edit", h.edit,
			middleware.RequireLogin(), middleware.RequireListingOwner(h.listings))
		r.PUT("/{id}", h.update,
			middleware.RequireLogin(), middleware.RequireListingOwner(h.listings), middleware.ValidateListing())
		r.DELETE("/{id}", h.delete,
			middleware.RequireLogin(), middleware.RequireListingOwner(h.listings))
	})
}

func (h *Listings) home(c app.Context) error {
	return c.Redirect(http.StatusMovedPermanently, "/listings")
}

func (h *Listings) index(c app.Context) error {
	listings, err := h.listings.List(c.Context())
	if err != nil {
		return err
	}
	return c.Render(http.StatusOK, views.ListingsPage(page(c), listings))
}

func (h *Listings) newForm(c app.Context) error {
	return c.Render(http.StatusOK, views.NewListingPage(page(c)))
}

func (h *Listings) create(c app.Context) error {
	form := middleware.ListingForm(c)

	ownerID, err := uuid.Parse(c.UserID())
	if err != nil {
		return err
	}

	imageURL, err := h.uploadImage(c, form.ImageURL)
	if err != nil {
		return err
	}

	l, err := h.listings.Create(c.Context(), repository.CreateParams{
		Title:       form.Title,
		Description: form.Description,
		Price:       form.Price,
		Location:    form.Location,
		Country:     form.Country,
		ImageURL:    imageURL,
		OwnerID:     ownerID,
	})
	if err != nil {
		return err
	}

	c.Flash(app.FlashSuccess, msgListingCreated)
	return c.Redirect(http.StatusFound, "/listings/"+l.ID.String())
}

func (h *Listings) show(c app.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.Error(http.StatusBadRequest, middleware.MsgGone)
	}

	l, err := h.listings.GetByID(c.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.Error(http.StatusBadRequest, middleware.MsgGone)
		}
		return err
	}

	reviews, err := h.reviews.ListForListing(c.Context(), l.ID)
	if err != nil {
		return err
	}

	return c.Render(http.StatusOK, views.ListingPage(page(c), l, reviews, views.Markdown(l.Description)))
}

func (h *Listings) edit(c app.Context) error {
	return c.Render(http.StatusOK, views.EditListingPage(page(c), middleware.Listing(c)))
}

func (h *Listings) update(c app.Context) error {
	l := middleware.Listing(c)
	form := middleware.ListingForm(c)

	imageURL, err := h.uploadImage(c, form.ImageURL)
	if err != nil {
		return err
	}
	if imageURL == "" {
		// No replacement submitted, keep the current image.
		imageURL = l.ImageURL
	}

	if _, err := h.listings.Update(c.Context(), l.ID, repository.UpdateParams{
		Title:       form.Title,
		Description: form.Description,
		Price:       form.Price,
		Location:    form.Location,
		Country:     form.Country,
		ImageURL:    imageURL,
	}); err != nil {
		return err
	}

	c.Flash(app.FlashSuccess, msgListingUpdated)
	return c.Redirect(http.StatusFound, "/listings/"+l.ID.String())
}

func (h *Listings) delete(c app.Context) error {
	l := middleware.Listing(c)

	if err := h.listings.Delete(c.Context(), l.ID); err != nil {
		return err
	}

	c.Flash(app.FlashSuccess, msgListingDeleted)
	return c.Redirect(http.StatusFound, "/listings")
}

// uploadImage stores a submitted image file and returns its public
// URL. Without a file it falls back to the URL typed into the form.
func (h *Listings) uploadImage(c app.Context, fallback string) (string, error) {
	file, header, err := c.FormFile("image")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return fallback, nil
		}
		return "", c.Error(http.StatusBadRequest, "invalid image upload", app.WithError(err))
	}
	defer file.Close()

	info, err := c.Upload(file, header.Size, storage.WithPrefix(imagePrefix))
	if err != nil {
		return "", err
	}
	return c.FileURL(info.Key)
}
