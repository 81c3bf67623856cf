package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateValidQueries(t *testing.T) {
	tests := []struct {
		name string
		q    Query
	}{
		{"named", Named("vserver-by-uuid").Set("UUID").To("x")},
		{"literal", Literal("{host} = :HOST").Set("HOST").To("edge")},
		{"native", Native("SELECT v_uuid FROM vserver WHERE v_host = ?").Set("host").To("edge")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Validate(tt.q)
			assert.True(t, result.Valid)
			assert.Empty(t, result.Errors)
			assert.Empty(t, result.Warnings)
		})
	}
}

func TestValidateErrors(t *testing.T) {
	tests := []struct {
		name     string
		q        Query
		expected string
	}{
		{"zero query", Query{}, "query has no type"},
		{"empty name", Named(""), "named query requires a name"},
		{"empty text", Native(""), "native query requires text"},
		{"empty key", Named("q").Set("").To(1), "parameter 0 has an empty key"},
		{"unbound placeholder", Literal("{host} = :HOST"), "placeholder :HOST has no bound parameter"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Validate(tt.q)
			assert.False(t, result.Valid)
			require.Len(t, result.Errors, 1)
			assert.Equal(t, tt.expected, result.Errors[0])
		})
	}
}

func TestValidateWarnings(t *testing.T) {
	t.Run("duplicate key", func(t *testing.T) {
		result := Validate(Named("q").Set("a").To(1).Set("a").To(2))
		assert.True(t, result.Valid)
		require.Len(t, result.Warnings, 1)
		assert.Contains(t, result.Warnings[0], "bound more than once")
	})

	t.Run("unreferenced literal parameter", func(t *testing.T) {
		result := Validate(Literal("{host} = :HOST").Set("HOST").To("a").Set("EXTRA").To(1))
		assert.True(t, result.Valid)
		require.Len(t, result.Warnings, 1)
		assert.Contains(t, result.Warnings[0], `"EXTRA" is not referenced`)
	})

	t.Run("named placeholders in native query", func(t *testing.T) {
		result := Validate(Native("SELECT * FROM t WHERE a = :A").Set("A").To(1))
		assert.True(t, result.Valid)
		require.Len(t, result.Warnings, 1)
		assert.Contains(t, result.Warnings[0], "bind positionally")
	})
}

func TestValidateRepeatedPlaceholderReportedOnce(t *testing.T) {
	result := Validate(Literal(":A or :A"))
	assert.Len(t, result.Errors, 1)
}
