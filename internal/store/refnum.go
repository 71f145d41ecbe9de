// internal/store/refnum.go
package store

import (
	"fmt"
	"math/rand"
	"regexp"
)

// referencePattern matches the human-facing tracking codes handed to
// applicants, e.g. RCC-2025-048213.
var referencePattern = regexp.MustCompile(`^RCC-\d{4}-\d{6}$`)

// newReferenceNumber generates a tracking code for the given epoch year.
// The 6-digit suffix is random and carries no uniqueness guarantee beyond
// the reference_number column constraint; a collision surfaces as a
// constraint violation from the datastore.
func newReferenceNumber(epoch int) string {
	return fmt.Sprintf("RCC-%d-%06d", epoch, rand.Intn(1000000))
}

// IsReferenceNumber reports whether ref has the portal's tracking-code shape.
func IsReferenceNumber(ref string) bool {
	return referencePattern.MatchString(ref)
}
