package usecase

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	domainErrors "github.com/polkiloo/parceltrack/internal/domain/errors"
)

const (
	minPasswordLength = 4
	maxPasswordLength = 20
)

// ValidatePhone checks that phone consists of digits only.
func ValidatePhone(phone string) bool {
	if phone == "" {
		return false
	}
	for _, r := range phone {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// NormalizeTrackNumber trims surrounding whitespace and rejects empty numbers.
func NormalizeTrackNumber(number string) (string, error) {
	number = strings.TrimSpace(number)
	if number == "" {
		return "", domainErrors.ErrInvalidTrackNumber
	}
	return number, nil
}

// FuzzyPattern builds the case-insensitive pattern used to look a bookmark
// up: all whitespace removed, lowercased, regex metacharacters escaped.
func FuzzyPattern(number string) string {
	stripped := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, number)
	return regexp.QuoteMeta(strings.ToLower(stripped))
}

func validatePassword(password string) error {
	n := utf8.RuneCountInString(password)
	if n < minPasswordLength || n > maxPasswordLength {
		return fmt.Errorf("password must be %d to %d characters: %w", minPasswordLength, maxPasswordLength, domainErrors.ErrInvalidArgument)
	}
	return nil
}

// parseAmount parses a stored price or weight. Empty, malformed and
// negative values are rejected.
func parseAmount(raw string) (decimal.Decimal, bool) {
	raw = strings.TrimSpace(strings.ReplaceAll(raw, ",", "."))
	if raw == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(raw)
	if err != nil || d.IsNegative() {
		return decimal.Zero, false
	}
	return d, true
}

func parseOptionalAmount(raw *string) (decimal.Decimal, bool) {
	if raw == nil {
		return decimal.Zero, false
	}
	return parseAmount(*raw)
}
