// internal/store/refnum_test.go
package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewReferenceNumberFormat(t *testing.T) {
	for i := 0; i < 100; i++ {
		ref := newReferenceNumber(2025)
		assert.Regexp(t, `^RCC-2025-\d{6}$`, ref)
		assert.True(t, IsReferenceNumber(ref))
	}
}

func TestIsReferenceNumber(t *testing.T) {
	valid := []string{
		"RCC-2025-000000",
		"RCC-2024-999999",
	}
	invalid := []string{
		"",
		"RCC-2025-00000",    // five digits
		"RCC-2025-0000000",  // seven digits
		"RCC-25-000123",     // two-digit year
		"rcc-2025-000123",   // lowercase prefix
		"RCC-2025-000123 ",  // trailing space
		"ABC-2025-000123",   // wrong prefix
		"RCC-2025-00O123",   // letter in sequence
	}

	for _, ref := range valid {
		assert.True(t, IsReferenceNumber(ref), "expected %q to be valid", ref)
	}
	for _, ref := range invalid {
		assert.False(t, IsReferenceNumber(ref), "expected %q to be invalid", ref)
	}
}
