package views

import (
	"fmt"
	"io"

	"github.com/a-h/templ"

	"github.com/wanderlust-app/wanderlust/internal/repository"
)

// ListingsPage renders the listings index grid.
func ListingsPage(p Page, listings []repository.Listing) templ.Component {
	return layout("All Listings", p, func(w io.Writer) error {
		if _, err := io.WriteString(w, `<h1 class="h3 mb-4">All Listings</h1>
<div class="row row-cols-1 row-cols-md-2 row-cols-lg-3 g-4">
`); err != nil {
			return err
		}

		for i := range listings {
			l := &listings[i]
			if _, err := fmt.Fprintf(w, `<div class="col">
<a class="text-decoration-none" href="/listings/%s">
<div class="card h-100">
%s<div class="card-body">
<h5 class="card-title">%s</h5>
<p class="card-text text-muted">%s, %s</p>
<p class="card-text">&#8377;%.0f / night</p>
</div>
</div>
</a>
</div>
`, l.ID, cardImage(l.ImageURL, l.Title), esc(l.Title), esc(l.Location), esc(l.Country), l.Price); err != nil {
				return err
			}
		}

		_, err := io.WriteString(w, "</div>\n")
		return err
	})
}

func cardImage(url, alt string) string {
	if url == "" {
		return ""
	}
	return fmt.Sprintf(`<img class="card-img-top listing-img" src="%s" alt="%s">`+"\n", esc(url), esc(alt))
}

// ListingPage renders a single listing with its reviews. description is
// pre-rendered sanitized HTML.
func ListingPage(p Page, l *repository.Listing, reviews []repository.Review, description string) templ.Component {
	return layout(l.Title, p, func(w io.Writer) error {
		if _, err := fmt.Fprintf(w, `<div class="row justify-content-center">
<div class="col-lg-8">
<h1 class="h3">%s</h1>
<p class="text-muted">hosted by @%s</p>
%s<div class="my-3">%s</div>
<p class="fw-bold">&#8377;%.0f / night &middot; %s, %s</p>
`, esc(l.Title), esc(l.OwnerName), cardImage(l.ImageURL, l.Title), description, l.Price, esc(l.Location), esc(l.Country)); err != nil {
			return err
		}

		if isOwner(p, l) {
			if _, err := fmt.Fprintf(w, `<div class="mb-4">
<a class="btn btn-dark" href="/listings/%s/edit">Edit</a>
<form class="d-inline" method="POST" action="/listings/%s">
<input type="hidden" name="_method" value="DELETE">
<button class="btn btn-outline-danger" type="submit">Delete</button>
</form>
</div>
`, l.ID, l.ID); err != nil {
				return err
			}
		}

		if p.User != nil {
			if err := reviewForm(w, l); err != nil {
				return err
			}
		}

		if err := reviewList(w, p, l, reviews); err != nil {
			return err
		}

		_, err := io.WriteString(w, "</div>\n</div>\n")
		return err
	})
}

func isOwner(p Page, l *repository.Listing) bool {
	return p.User != nil && p.User.ID == l.OwnerID
}

func reviewForm(w io.Writer, l *repository.Listing) error {
	_, err := fmt.Fprintf(w, `<hr>
<h2 class="h5">Leave a review</h2>
<form method="POST" action="/listings/%s/reviews" novalidate>
<div class="mb-3">
<label class="form-label" for="rating">Rating</label>
<input class="form-range" type="range" id="rating" name="rating" min="1" max="5" value="3">
</div>
<div class="mb-3">
<label class="form-label" for="comment">Comment</label>
<textarea class="form-control" id="comment" name="comment" rows="3" required></textarea>
</div>
<button class="btn btn-outline-dark" type="submit">Submit</button>
</form>
`, l.ID)
	return err
}

func reviewList(w io.Writer, p Page, l *repository.Listing, reviews []repository.Review) error {
	if len(reviews) == 0 {
		return nil
	}

	if _, err := io.WriteString(w, `<hr>
<h2 class="h5">Reviews</h2>
<div class="row row-cols-1 row-cols-md-2 g-3 mb-4">
`); err != nil {
		return err
	}

	for i := range reviews {
		rv := &reviews[i]
		if _, err := fmt.Fprintf(w, `<div class="col">
<div class="card">
<div class="card-body">
<h6 class="card-title">@%s</h6>
<p class="card-text">%s</p>
<p class="card-text text-muted">%d/5</p>
`, esc(rv.AuthorName), esc(rv.Comment), rv.Rating); err != nil {
			return err
		}

		if p.User != nil && p.User.ID == rv.AuthorID {
			if _, err := fmt.Fprintf(w, `<form method="POST" action="/listings/%s/reviews/%s">
<input type="hidden" name="_method" value="DELETE">
<button class="btn btn-sm btn-outline-danger" type="submit">Delete</button>
</form>
`, l.ID, rv.ID); err != nil {
				return err
			}
		}

		if _, err := io.WriteString(w, "</div>\n</div>\n</div>\n"); err != nil {
			return err
		}
	}

	_, err := io.WriteString(w, "</div>\n")
	return err
}

// NewListingPage renders the create-listing form.
func NewListingPage(p Page) templ.Component {
	return layout("New Listing", p, func(w io.Writer) error {
		if _, err := io.WriteString(w, `<div class="row justify-content-center">
<div class="col-lg-8">
<h1 class="h3 mb-3">Create a New Listing</h1>
<form method="POST" action="/listings" enctype="multipart/form-data" novalidate>
`); err != nil {
			return err
		}
		if err := listingFields(w, nil); err != nil {
			return err
		}
		_, err := io.WriteString(w, `<button class="btn btn-dark" type="submit">Create</button>
</form>
</div>
</div>
`)
		return err
	})
}

// EditListingPage renders the edit form pre-filled with l.
func EditListingPage(p Page, l *repository.Listing) templ.Component {
	return layout("Edit Listing", p, func(w io.Writer) error {
		if _, err := fmt.Fprintf(w, `<div class="row justify-content-center">
<div class="col-lg-8">
<h1 class="h3 mb-3">Edit your Listing</h1>
<form method="POST" action="/listings/%s" enctype="multipart/form-data" novalidate>
<input type="hidden" name="_method" value="PUT">
`, l.ID); err != nil {
			return err
		}
		if err := listingFields(w, l); err != nil {
			return err
		}
		_, err := io.WriteString(w, `<button class="btn btn-dark" type="submit">Save</button>
</form>
</div>
</div>
`)
		return err
	})
}

// listingFields renders the shared create/edit form fields, pre-filled
// from l when editing.
func listingFields(w io.Writer, l *repository.Listing) error {
	var title, description, location, country string
	var price float64
	if l != nil {
		title, description, location, country, price = l.Title, l.Description, l.Location, l.Country, l.Price
	}

	_, err := fmt.Fprintf(w, `<div class="mb-3">
<label class="form-label" for="title">Title</label>
<input class="form-control" type="text" id="title" name="title" value="%s" required>
</div>
<div class="mb-3">
<label class="form-label" for="description">Description</label>
<textarea class="form-control" id="description" name="description" rows="4" required>%s</textarea>
</div>
<div class="mb-3">
<label class="form-label" for="image">Image</label>
<input class="form-control" type="file" id="image" name="image" accept="image/*">
</div>
<div class="row">
<div class="col-md-4 mb-3">
<label class="form-label" for="price">Price</label>
<input class="form-control" type="number" id="price" name="price" value="%v" min="0" required>
</div>
<div class="col-md-4 mb-3">
<label class="form-label" for="location">Location</label>
<input class="form-control" type="text" id="location" name="location" value="%s" required>
</div>
<div class="col-md-4 mb-3">
<label class="form-label" for="country">Country</label>
<input class="form-control" type="text" id="country" name="country" value="%s" required>
</div>
</div>
`, esc(title), esc(description), price, esc(location), esc(country))
	return err
}
