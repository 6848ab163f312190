package domain

import (
	"context"
	"fmt"
)

// GreenspaceStats is the green-space coverage of one postcode as reported by
// the upstream statistics service.
type GreenspaceStats struct {
	Postcode             string  `json:"postcode"`
	GreenspacePercentage float64 `json:"greenspace_percentage"`
	GreenspaceAreaSqm    float64 `json:"greenspace_area_sqm"`
	TotalAreaSqm         float64 `json:"total_area_sqm"`
}

// GreenspaceProvider looks up green-space statistics for a postcode.
type GreenspaceProvider interface {
	Lookup(ctx context.Context, postcode string) (GreenspaceStats, error)
}

// ValidatePostcode accepts exactly four ASCII digits.
func ValidatePostcode(postcode string) error {
	if len(postcode) != 4 {
		return fmt.Errorf("%w: postcode %q must be 4 digits", ErrInvalidInput, postcode)
	}
	for _, r := range postcode {
		if r < '0' || r > '9' {
			return fmt.Errorf("%w: postcode %q must be 4 digits", ErrInvalidInput, postcode)
		}
	}
	return nil
}
