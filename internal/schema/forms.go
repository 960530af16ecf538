package schema

// ListingForm is the payload for creating or updating a listing.
type ListingForm struct {
	Title       string  `form:"title" validate:"required,max=140"`
	Description string  `form:"description" validate:"required"`
	Price       float64 `form:"price" validate:"required,min=0"`
	Location    string  `form:"location" validate:"required"`
	Country     string  `form:"country" validate:"required"`
	ImageURL    string  `form:"image_url" validate:"omitempty,url"`
}

// ReviewForm is the payload for posting a review on a listing.
type ReviewForm struct {
	Rating  int    `form:"rating" validate:"required,min=1,max=5"`
	Comment string `form:"comment" validate:"required"`
}

// SignupForm is the payload for registering a new user.
type SignupForm struct {
	Username string `form:"username" validate:"required,min=3,max=30"`
	Email    string `form:"email" validate:"required,email"`
	Password string `form:"password" validate:"required,min=8,max=72"`
}

// LoginForm is the payload for authenticating.
type LoginForm struct {
	Username string `form:"username" validate:"required"`
	Password string `form:"password" validate:"required"`
}
