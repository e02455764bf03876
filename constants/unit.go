package constants

import "strings"

// Unit is the measurement unit of an order item.
type Unit string

// Units appearing in order documents. Stored lowercase.
const (
	UnitPiece Unit = "szt"
	UnitKilo  Unit = "kg"
	UnitLiter Unit = "l"
	UnitMeter Unit = "m"
	UnitPack  Unit = "op"
)

var allUnits = []Unit{UnitPiece, UnitKilo, UnitLiter, UnitMeter, UnitPack}

// CanonicalizeUnit maps raw document spellings ("SZT", "szt.", "Op.") to a
// canonical Unit. Returns false for anything outside the known set.
func CanonicalizeUnit(input string) (Unit, bool) {
	normalized := strings.TrimSuffix(strings.ToLower(strings.TrimSpace(input)), ".")
	for _, u := range allUnits {
		if normalized == string(u) {
			return u, true
		}
	}
	return "", false
}
