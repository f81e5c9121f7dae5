package persistence

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLikePattern(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Linen", "%linen%"},
		{"  shirt ", "%shirt%"},
		{"50%", `%50\%%`},
		{"a_b", `%a\_b%`},
		{`c:\tmp`, `%c:\\tmp%`},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, likePattern(tt.input))
		})
	}
}
