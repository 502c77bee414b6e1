package purchasing

import "github.com/shopspring/decimal"

// UnitType represents the unit a purchase line's quantity is expressed in
type UnitType string

const (
	UnitTypeKilo   UnitType = "kilo"
	UnitTypeCarton UnitType = "carton"
	UnitTypePaquet UnitType = "paquet"
	UnitTypeSac    UnitType = "sac"
	// UnitTypeUnit is never purchased directly; it only appears on variant
	// rows derived from carton or packaged-kilo purchases.
	UnitTypeUnit UnitType = "unit"
)

// IsValid checks if the unit type is allowed on a purchase line
func (u UnitType) IsValid() bool {
	switch u {
	case UnitTypeKilo, UnitTypeCarton, UnitTypePaquet, UnitTypeSac:
		return true
	}
	return false
}

// String returns the string representation of UnitType
func (u UnitType) String() string {
	return string(u)
}

// PackagingMode qualifies how a kilo-type purchase arrives physically.
// It is only consulted when the unit type is kilo.
type PackagingMode string

const (
	PackagingNone   PackagingMode = "none"
	PackagingCarton PackagingMode = "carton"
	PackagingSachet PackagingMode = "sachet"
)

// IsValid checks if the packaging mode is a known value
func (p PackagingMode) IsValid() bool {
	switch p {
	case PackagingNone, PackagingCarton, PackagingSachet:
		return true
	}
	return false
}

// String returns the string representation of PackagingMode
func (p PackagingMode) String() string {
	return string(p)
}

// orDefaultOne treats unset or non-positive multipliers as 1.
func orDefaultOne(d decimal.Decimal) decimal.Decimal {
	if d.LessThanOrEqual(decimal.Zero) {
		return decimal.NewFromInt(1)
	}
	return d
}

// BaseQuantity converts a purchase quantity into canonical base units.
//
// kilo counts as-is regardless of packaging; a carton contributes
// quantity * unitsPerCarton * weightPerUnit; paquet and sac contribute
// quantity * weightPerUnit. Multipliers that are unset or non-positive
// default to 1, and a non-positive quantity converts to zero. The
// function never fails; rejecting invalid magnitudes is the caller's
// validation concern.
func BaseQuantity(unitType UnitType, quantity, unitsPerCarton, weightPerUnit decimal.Decimal) decimal.Decimal {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}

	switch unitType {
	case UnitTypeCarton:
		return quantity.Mul(orDefaultOne(unitsPerCarton)).Mul(orDefaultOne(weightPerUnit))
	case UnitTypePaquet, UnitTypeSac:
		return quantity.Mul(orDefaultOne(weightPerUnit))
	default:
		// kilo (and anything unrecognized) counts as-is
		return quantity
	}
}
