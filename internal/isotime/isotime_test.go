package isotime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	want := time.Date(2025, 10, 14, 9, 30, 0, 0, time.UTC)
	tests := []string{
		"2025-10-14T09:30:00Z",
		"2025-10-14T09:30:00z",
		"2025-10-14T09:30:00+00:00",
		"2025-10-14T12:30:00+03:00",
		"2025-10-14T09:30:00",
		"2025-10-14 09:30:00",
		" 2025-10-14T09:30:00.000Z ",
		"2025-10-14T09:30",
	}
	for _, in := range tests {
		t.Run(in, func(t *testing.T) {
			got, err := Parse(in)
			require.NoError(t, err)
			assert.True(t, want.Equal(got), "got %s", got)
			assert.Equal(t, time.UTC, got.Location())
		})
	}
}

func TestParse_Invalid(t *testing.T) {
	for _, in := range []string{"", "вчера", "2025-13-01T00:00:00Z"} {
		_, err := Parse(in)
		assert.Error(t, err, in)
		assert.Nil(t, ParseOptional(in))
	}
}
