package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// WhitelistType distinguishes phone and email exemptions.
type WhitelistType string

const (
	WhitelistTypePhone WhitelistType = "phone"
	WhitelistTypeEmail WhitelistType = "email"
)

// WhitelistEntry exempts one phone number or email from payment.
type WhitelistEntry struct {
	ID        uuid.UUID     `json:"id"`
	Type      WhitelistType `json:"type"`
	Value     string        `json:"value"`
	AddedAt   time.Time     `json:"added_at"`
	AddedBy   string        `json:"added_by"`
	IsDeleted bool          `json:"is_deleted"`
}

const (
	kenyaCountryCode = "254"
	localPrefix      = "0"
)

// IsEmailIdentifier reports whether identifier should be matched as an email.
func IsEmailIdentifier(identifier string) bool {
	return strings.Contains(identifier, "@")
}

// NormalizeEmail trims and lowercases an email for comparison.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// PhoneDigits strips everything but ASCII digits.
func PhoneDigits(phone string) string {
	var b strings.Builder
	b.Grow(len(phone))
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// PhoneVariants returns the equivalent representations of a phone number:
// the raw digits, the 0→254 form and the 254→0 form. Numbers that are
// neither local (0...) nor Kenyan international (254...) only yield their
// raw digits.
func PhoneVariants(phone string) []string {
	digits := PhoneDigits(phone)
	if digits == "" {
		return nil
	}
	variants := []string{digits}
	switch {
	case strings.HasPrefix(digits, kenyaCountryCode):
		variants = append(variants, localPrefix+strings.TrimPrefix(digits, kenyaCountryCode))
	case strings.HasPrefix(digits, localPrefix):
		variants = append(variants, kenyaCountryCode+strings.TrimPrefix(digits, localPrefix))
	}
	return variants
}

// PhonesMatch reports whether any representation of a equals any of b.
func PhonesMatch(a, b string) bool {
	bv := PhoneVariants(b)
	for _, x := range PhoneVariants(a) {
		for _, y := range bv {
			if x == y {
				return true
			}
		}
	}
	return false
}

// ToMSISDN converts a phone to the 2547XXXXXXXX form the gateway expects.
// Non-Kenyan numbers are returned as bare digits.
func ToMSISDN(phone string) string {
	digits := PhoneDigits(phone)
	if strings.HasPrefix(digits, localPrefix) {
		return kenyaCountryCode + strings.TrimPrefix(digits, localPrefix)
	}
	return digits
}

// Matches reports whether the entry matches identifier. Deleted entries
// never match.
func (e *WhitelistEntry) Matches(identifier string) bool {
	if e.IsDeleted {
		return false
	}
	switch e.Type {
	case WhitelistTypeEmail:
		return IsEmailIdentifier(identifier) && NormalizeEmail(e.Value) == NormalizeEmail(identifier)
	case WhitelistTypePhone:
		return !IsEmailIdentifier(identifier) && PhonesMatch(identifier, e.Value)
	}
	return false
}
