package irail

import (
	"strings"
	"unicode"
)

// VehicleID is the decomposition of a dotted vehicle identifier such as
// "BE.NMBS.IC3033": operator "NMBS", type "IC", number "3033", code "IC3033"
type VehicleID struct {
	Operator string
	Type     string
	Number   string
	Code     string
}

// ParseVehicleID splits a <country>.<operator>.<code> identifier and
// separates the alphabetic prefix (train type) from the numeric suffix
// (train number) of the code part
func ParseVehicleID(id string) (*VehicleID, error) {
	parts := strings.Split(id, ".")
	if len(parts) < 3 {
		return nil, &MalformedVehicleIDError{ID: id}
	}
	code := parts[2]
	var trainType, number strings.Builder
	for _, r := range code {
		switch {
		case unicode.IsLetter(r):
			trainType.WriteRune(r)
		case unicode.IsDigit(r):
			number.WriteRune(r)
		}
	}
	return &VehicleID{
		Operator: parts[1],
		Type:     trainType.String(),
		Number:   number.String(),
		Code:     code,
	}, nil
}
