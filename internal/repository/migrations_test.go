package repository_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Reserved PostgreSQL keywords that cannot appear as unquoted column
// names. None of the repository queries quote identifiers, so the
// schema must not use them.
var reservedColumnNames = map[string]bool{
	"values": true,
	"user":   true,
	"select": true,
	"order":  true,
	"group":  true,
	"table":  true,
	"check":  true,
	"offset": true,
	"limit":  true,
	"using":  true,
}

func TestMigrations(t *testing.T) {
	t.Parallel()

	files, err := filepath.Glob(filepath.Join("..", "..", "migrations", "*.sql"))
	require.NoError(t, err)
	require.NotEmpty(t, files)

	for _, file := range files {
		t.Run(filepath.Base(file), func(t *testing.T) {
			t.Parallel()

			raw, err := os.ReadFile(file)
			require.NoError(t, err)
			sql := string(raw)

			assert.Contains(t, sql, "-- +goose Up")
			assert.Contains(t, sql, "-- +goose Down")

			for _, col := range columnNames(sql) {
				assert.False(t, reservedColumnNames[col],
					"column %q is a reserved keyword", col)
			}
		})
	}
}

// columnNames returns the first identifier of every column definition
// inside CREATE TABLE statements.
func columnNames(sql string) []string {
	var cols []string
	inTable := false
	for _, line := range strings.Split(sql, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "CREATE TABLE"):
			inTable = true
		case inTable && strings.HasPrefix(line, ")"):
			inTable = false
		case inTable && line != "" && !strings.HasPrefix(line, "--"):
			fields := strings.Fields(line)
			if len(fields) > 0 {
				cols = append(cols, strings.ToLower(fields[0]))
			}
		}
	}
	return cols
}
