// internal/validation/submission_test.go
package validation

import (
	"testing"

	commonerrors "clearance-portal/internal/common/errors"
	"clearance-portal/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validInput() *models.ApplicationInput {
	return &models.ApplicationInput{
		FullName:        "Jane Doe",
		IDNumber:        "63-123456A18",
		PhoneNumber:     "+263 772 123456",
		Email:           "jane@example.com",
		PropertyAddress: "14 Robertson Street, Masvingo",
		StandNumber:     "1482",
		PropertyType:    "residential",
		Reason:          "property sale",
	}
}

func assertValidationFailed(t *testing.T, err error) *commonerrors.StandardError {
	t.Helper()
	require.Error(t, err)
	var stdErr *commonerrors.StandardError
	require.ErrorAs(t, err, &stdErr)
	assert.Equal(t, commonerrors.ErrCodeValidationFailed, stdErr.Code)
	return stdErr
}

func TestValidateSubmission_Valid(t *testing.T) {
	assert.NoError(t, ValidateSubmission(validInput()))
}

func TestValidateSubmission_EmailIsOptional(t *testing.T) {
	input := validInput()
	input.Email = ""
	assert.NoError(t, ValidateSubmission(input))
}

func TestValidateSubmission_DocumentsAccepted(t *testing.T) {
	input := validInput()
	input.Documents = []string{"title-deed.pdf", "id-copy.pdf"}
	input.UploadedDocuments = []string{"title-deed.pdf"}
	assert.NoError(t, ValidateSubmission(input))
}

func TestValidateSubmission_MissingRequiredFields(t *testing.T) {
	input := validInput()
	input.FullName = ""
	input.StandNumber = ""

	stdErr := assertValidationFailed(t, ValidateSubmission(input))
	assert.NotEmpty(t, stdErr.Metadata["fields"])
}

func TestValidateSubmission_BadEmail(t *testing.T) {
	input := validInput()
	input.Email = "not-an-address"
	assertValidationFailed(t, ValidateSubmission(input))
}

func TestValidateSubmission_BadPhoneNumber(t *testing.T) {
	for _, phone := range []string{"", "abc", "123", "+263-772-123456x"} {
		input := validInput()
		input.PhoneNumber = phone
		assertValidationFailed(t, ValidateSubmission(input))
	}
}

func TestValidateSubmission_UnknownPropertyType(t *testing.T) {
	input := validInput()
	input.PropertyType = "maritime"
	assertValidationFailed(t, ValidateSubmission(input))
}

func TestValidateSubmission_ReasonTooShort(t *testing.T) {
	input := validInput()
	input.Reason = "ok"
	assertValidationFailed(t, ValidateSubmission(input))
}
