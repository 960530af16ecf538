package app

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPError(t *testing.T) {
	t.Parallel()

	t.Run("empty message falls back to the default", func(t *testing.T) {
		t.Parallel()

		e := NewHTTPError(http.StatusBadRequest, "")
		assert.Equal(t, DefaultErrorMessage, e.Message)
		assert.Equal(t, DefaultErrorMessage, e.Error())
	})

	t.Run("zero code means 500", func(t *testing.T) {
		t.Parallel()

		e := &HTTPError{Message: "boom"}
		assert.Equal(t, http.StatusInternalServerError, e.StatusCode())
		assert.Equal(t, "Internal Server Error", e.StatusText())
	})

	t.Run("unwraps the underlying error", func(t *testing.T) {
		t.Parallel()

		cause := errors.New("pg: connection refused")
		e := ErrInternal("", WithError(cause))
		assert.ErrorIs(t, e, cause)
	})

	t.Run("AsHTTPError only matches the concrete type", func(t *testing.T) {
		t.Parallel()

		assert.Nil(t, AsHTTPError(nil))
		assert.Nil(t, AsHTTPError(errors.New("plain")))

		e := ErrNotFound("gone")
		assert.Same(t, e, AsHTTPError(e))
	})
}
