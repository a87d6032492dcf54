// Package phone validates customer phone numbers and formats them to E.164
package phone

import (
	"strings"

	"github.com/calculation/backend/internal/domain/shared"
	"github.com/ttacon/libphonenumber"
)

// ErrInvalidPhone is returned for numbers that cannot be dialled
var ErrInvalidPhone = shared.NewDomainError("INVALID_PHONE", "Invalid phone number")

// Normalizer parses numbers written in the national format of a default region
type Normalizer struct {
	region string
}

// NewNormalizer creates a normalizer for a region code such as "CH"
func NewNormalizer(defaultRegion string) *Normalizer {
	region := strings.ToUpper(strings.TrimSpace(defaultRegion))
	if region == "" {
		region = "CH"
	}
	return &Normalizer{region: region}
}

// Normalize returns the E.164 form of raw. An empty input stays empty.
func (n *Normalizer) Normalize(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", nil
	}
	number, err := libphonenumber.Parse(raw, n.region)
	if err != nil {
		return "", shared.NewDomainError(ErrInvalidPhone.Code, "Invalid phone number: "+raw)
	}
	if !libphonenumber.IsValidNumber(number) {
		return "", shared.NewDomainError(ErrInvalidPhone.Code, "Invalid phone number: "+raw)
	}
	return libphonenumber.Format(number, libphonenumber.E164), nil
}

// Display formats an E.164 number in the international format for documents
func (n *Normalizer) Display(e164 string) string {
	if e164 == "" {
		return ""
	}
	number, err := libphonenumber.Parse(e164, n.region)
	if err != nil {
		return e164
	}
	return libphonenumber.Format(number, libphonenumber.INTERNATIONAL)
}
