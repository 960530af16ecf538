package id_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wanderlust-app/wanderlust/pkg/id"
)

func TestNewULID(t *testing.T) {
	t.Parallel()

	t.Run("length and alphabet", func(t *testing.T) {
		t.Parallel()
		ulid := id.NewULID()
		require.Len(t, ulid, 26)
		for _, r := range ulid {
			assert.Contains(t, "0123456789ABCDEFGHJKMNPQRSTVWXYZ", string(r))
		}
	})

	t.Run("unique", func(t *testing.T) {
		t.Parallel()
		seen := make(map[string]bool)
		for range 1000 {
			ulid := id.NewULID()
			require.False(t, seen[ulid], "duplicate ULID: %s", ulid)
			seen[ulid] = true
		}
	})

	t.Run("lexicographically sortable", func(t *testing.T) {
		t.Parallel()
		first := id.NewULID()
		time.Sleep(2 * time.Millisecond)
		second := id.NewULID()
		assert.Less(t, first, second)
	})
}
