package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"already canonical", "+380501234567", "+380501234567"},
		{"local with leading zero", "0501234567", "+380501234567"},
		{"formatted local", "050 123-45-67", "+380501234567"},
		{"ten digits no prefix", "5012345678", "+385012345678"},
		{"international without plus", "380501234567", "+380501234567"},
		{"parenthesized", "+38 (050) 123 45 67", "+380501234567"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizePhone(tt.input))
		})
	}
}

func TestValidPhone(t *testing.T) {
	assert.True(t, ValidPhone("+380501234567"))
	assert.True(t, ValidPhone("0501234567"))
	assert.False(t, ValidPhone("12345"))
	assert.False(t, ValidPhone(""))
	assert.False(t, ValidPhone("abc"))
}
