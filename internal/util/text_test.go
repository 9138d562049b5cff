package util

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFold(t *testing.T) {
	assert.Equal(t, "urocianina gotas", Fold("  \"Urocianina   Gotas\". "))
	assert.Equal(t, "l-nicotinina", Fold("L-Nicotinina"))
	assert.Equal(t, "", Fold(" ... "))
}

func TestParseMoney(t *testing.T) {
	cases := map[string]string{
		"R$ 1.234,56": "1234.56",
		"1234.56":     "1234.56",
		"89,90":       "89.9",
		"1.000":       "1000",
		"1,234.50":    "1234.5",
		"R$ 197":      "197",
	}
	for input, want := range cases {
		got, err := ParseMoney(input)
		require.NoError(t, err, input)
		assert.True(t, got.Equal(decimal.RequireFromString(want)), "%s: got %s want %s", input, got, want)
	}

	_, err := ParseMoney("R$ ")
	assert.Error(t, err)
	_, err = ParseMoney("grátis")
	assert.Error(t, err)
}
