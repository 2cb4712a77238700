package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLikePattern_ComodinesLiterales(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"kopi", `%kopi%`},
		{"100%", `%100\%%`},
		{"es_teh", `%es\_teh%`},
		{`a\b`, `%a\\b%`},
		{"", `%%`},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, likePattern(tt.in), tt.in)
	}
}

func TestValidID(t *testing.T) {
	assert.True(t, validID("0b8f2c7e-3d9a-4f51-9a57-1c2d3e4f5a6b"))
	assert.False(t, validID("no-existe"))
	assert.False(t, validID(""))
	assert.False(t, validID("1; DROP TABLE items"))
}
