package okx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeAmount(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"1000000", "1000000"},
		{"0001000", "1000"},
		{"1,000,000", "1000000"},
		{"5.75", "5"},
		{"0.5", "0"},
		{"0", "0"},
	}

	for _, tc := range cases {
		got, err := NormalizeAmount(tc.in)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}
}

func TestNormalizeAmount_Invalid(t *testing.T) {
	for _, in := range []string{"", "abc", "."} {
		_, err := NormalizeAmount(in)
		assert.Error(t, err, in)
	}
}
