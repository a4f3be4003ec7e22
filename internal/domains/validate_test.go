package domains

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/sitelaunch/sitelaunch/api/internal/apperrors"
)

func TestValidateLabel(t *testing.T) {
	valid := []string{"my-site", "abc", "site-42", "123abc", strings.Repeat("a", 63)}
	for _, label := range valid {
		assert.NoError(t, ValidateLabel(label), label)
	}

	invalid := []string{
		"ab",
		strings.Repeat("a", 64),
		"-leading",
		"trailing-",
		"double--hyphen",
		"UpperCase",
		"under_score",
		"dotted.label",
		"12345",
		"",
	}
	for _, label := range invalid {
		err := ValidateLabel(label)
		assert.Error(t, err, label)
		assert.True(t, apperrors.IsValidation(err), label)
	}
}

func TestIsReserved(t *testing.T) {
	for _, label := range []string{"admin", "api", "www", "mail", "staging"} {
		assert.True(t, IsReserved(label), label)
	}
	assert.False(t, IsReserved("my-bakery"))
	// Reservation is exact-match on the label
	assert.False(t, IsReserved("admin2"))
}

func TestValidateHostname(t *testing.T) {
	valid := []string{"example.com", "shop.example.co.uk", "xn--bcher-kva.example"}
	for _, h := range valid {
		assert.NoError(t, ValidateHostname(h), h)
	}

	invalid := []string{
		"",
		"https://example.com",
		"example com",
		"nodot",
		"-bad.example.com",
		"bad-.example.com",
		strings.Repeat("a", 254) + ".com",
	}
	for _, h := range invalid {
		err := ValidateHostname(h)
		assert.Error(t, err, h)
		assert.True(t, apperrors.IsValidation(err), h)
	}
}

func TestSuggestionCandidates(t *testing.T) {
	candidates := suggestionCandidates("bakery")
	assert.Equal(t, []string{
		fmt.Sprintf("bakery-%d", time.Now().Year()),
		"bakery-2",
		"bakery-app",
	}, candidates)
}
