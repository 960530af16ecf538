package schema_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wanderlust-app/wanderlust/internal/schema"
)

func TestDetails(t *testing.T) {
	t.Parallel()

	t.Run("valid listing has no details", func(t *testing.T) {
		t.Parallel()
		details, err := schema.Details(schema.ListingForm{
			Title:       "Beach Bungalow",
			Description: "Steps from the sand.",
			Price:       250,
			Location:    "Goa",
			Country:     "India",
		})
		require.NoError(t, err)
		assert.Empty(t, details)
	})

	t.Run("missing title reported by form name", func(t *testing.T) {
		t.Parallel()
		details, err := schema.Details(schema.ListingForm{
			Description: "No title here.",
			Price:       100,
			Location:    "Goa",
			Country:     "India",
		})
		require.NoError(t, err)
		require.Len(t, details, 1)
		assert.Equal(t, `"title" is required`, details[0])
	})

	t.Run("multiple failures keep field order", func(t *testing.T) {
		t.Parallel()
		details, err := schema.Details(schema.ListingForm{
			Price:    50,
			Location: "Goa",
			Country:  "India",
			ImageURL: "not-a-url",
		})
		require.NoError(t, err)
		require.Len(t, details, 3)
		assert.Contains(t, details[0], "title")
		assert.Contains(t, details[1], "description")
		assert.Contains(t, details[2], "image_url")
	})

	t.Run("review rating bounds", func(t *testing.T) {
		t.Parallel()
		details, err := schema.Details(schema.ReviewForm{Rating: 7, Comment: "Great"})
		require.NoError(t, err)
		require.Len(t, details, 1)
		assert.Equal(t, `"rating" must be less than or equal to 5`, details[0])
	})

	t.Run("signup password length", func(t *testing.T) {
		t.Parallel()
		details, err := schema.Details(schema.SignupForm{
			Username: "ada",
			Email:    "ada@example.com",
			Password: "short",
		})
		require.NoError(t, err)
		require.Len(t, details, 1)
		assert.Equal(t, `"password" must be at least 8 characters long`, details[0])
	})
}
