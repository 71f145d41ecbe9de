// internal/notify/notifier_test.go
package notify

import (
	"context"
	"fmt"
	"testing"
	"time"

	"clearance-portal/internal/common/config"
	commonerrors "clearance-portal/internal/common/errors"
	"clearance-portal/internal/common/logger"
	"clearance-portal/internal/models"

	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockSES struct {
	inputs []*ses.SendEmailInput
	err    error
}

func (m *mockSES) SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	m.inputs = append(m.inputs, params)
	if m.err != nil {
		return nil, m.err
	}
	return &ses.SendEmailOutput{}, nil
}

type mockSNS struct {
	inputs []*sns.PublishInput
	err    error
}

func (m *mockSNS) Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
	m.inputs = append(m.inputs, params)
	if m.err != nil {
		return nil, m.err
	}
	return &sns.PublishOutput{}, nil
}

func testConfig() config.NotificationConfig {
	var cfg config.NotificationConfig
	cfg.Email.Enabled = true
	cfg.Email.FromEmail = "noreply@masvingocity.gov.zw"
	cfg.SMS.Enabled = true
	cfg.AWS.Region = "af-south-1"
	return cfg
}

func testApplication(status models.ApplicationStatus) *models.Application {
	now := time.Now().UTC()
	return &models.Application{
		ID:              "app-1",
		ReferenceNumber: "RCC-2025-000123",
		FullName:        "Jane Doe",
		PhoneNumber:     "+263772123456",
		Email:           "jane@example.com",
		Status:          status,
		SubmittedDate:   now,
	}
}

func TestStatusChanged_UnderReviewSendsEmailOnly(t *testing.T) {
	sesMock := &mockSES{}
	snsMock := &mockSNS{}
	n := NewWithClients(testConfig(), sesMock, snsMock, nil, logger.NewTestLogger(t))

	err := n.StatusChanged(context.Background(), testApplication(models.StatusUnderReview))

	require.NoError(t, err)
	require.Len(t, sesMock.inputs, 1)
	assert.Empty(t, snsMock.inputs)

	input := sesMock.inputs[0]
	assert.Equal(t, []string{"jane@example.com"}, input.Destination.ToAddresses)
	assert.Contains(t, *input.Message.Subject.Data, "RCC-2025-000123")
	assert.Contains(t, *input.Message.Body.Text.Data, "under review")
	assert.Equal(t, "noreply@masvingocity.gov.zw", *input.Source)
}

func TestStatusChanged_ApprovedSendsEmailAndSMS(t *testing.T) {
	sesMock := &mockSES{}
	snsMock := &mockSNS{}
	n := NewWithClients(testConfig(), sesMock, snsMock, nil, logger.NewTestLogger(t))

	err := n.StatusChanged(context.Background(), testApplication(models.StatusApproved))

	require.NoError(t, err)
	require.Len(t, sesMock.inputs, 1)
	require.Len(t, snsMock.inputs, 1)
	assert.Equal(t, "+263772123456", *snsMock.inputs[0].PhoneNumber)
	assert.Contains(t, *snsMock.inputs[0].Message, "APPROVED")
}

func TestStatusChanged_RejectedIncludesReason(t *testing.T) {
	sesMock := &mockSES{}
	n := NewWithClients(testConfig(), sesMock, &mockSNS{}, nil, logger.NewTestLogger(t))

	app := testApplication(models.StatusRejected)
	app.Reason = "outstanding rates balance"

	require.NoError(t, n.StatusChanged(context.Background(), app))
	require.Len(t, sesMock.inputs, 1)
	assert.Contains(t, *sesMock.inputs[0].Message.Body.Text.Data, "outstanding rates balance")
}

func TestStatusChanged_NoEmailAddressSkipsEmail(t *testing.T) {
	sesMock := &mockSES{}
	snsMock := &mockSNS{}
	n := NewWithClients(testConfig(), sesMock, snsMock, nil, logger.NewTestLogger(t))

	app := testApplication(models.StatusApproved)
	app.Email = ""

	require.NoError(t, n.StatusChanged(context.Background(), app))
	assert.Empty(t, sesMock.inputs)
	require.Len(t, snsMock.inputs, 1)
}

func TestStatusChanged_DisabledChannelsSendNothing(t *testing.T) {
	sesMock := &mockSES{}
	snsMock := &mockSNS{}
	var cfg config.NotificationConfig
	n := NewWithClients(cfg, sesMock, snsMock, nil, logger.NewTestLogger(t))

	require.NoError(t, n.StatusChanged(context.Background(), testApplication(models.StatusApproved)))
	assert.Empty(t, sesMock.inputs)
	assert.Empty(t, snsMock.inputs)
}

func TestStatusChanged_EmailFailureStillAttemptsSMS(t *testing.T) {
	sesMock := &mockSES{err: fmt.Errorf("throttled")}
	snsMock := &mockSNS{}
	n := NewWithClients(testConfig(), sesMock, snsMock, nil, logger.NewTestLogger(t))

	err := n.StatusChanged(context.Background(), testApplication(models.StatusRejected))

	require.Error(t, err)
	var stdErr *commonerrors.StandardError
	require.ErrorAs(t, err, &stdErr)
	assert.Equal(t, commonerrors.ErrCodeNotificationSendFailed, stdErr.Code)
	assert.Equal(t, "email", stdErr.Metadata["channel"])
	require.Len(t, snsMock.inputs, 1)
}

func TestStatusChanged_SMSOnlyForDecisions(t *testing.T) {
	snsMock := &mockSNS{}
	n := NewWithClients(testConfig(), &mockSES{}, snsMock, nil, logger.NewTestLogger(t))

	require.NoError(t, n.StatusChanged(context.Background(), testApplication(models.StatusSubmitted)))
	require.NoError(t, n.StatusChanged(context.Background(), testApplication(models.StatusUnderReview)))
	assert.Empty(t, snsMock.inputs)

	require.NoError(t, n.StatusChanged(context.Background(), testApplication(models.StatusRejected)))
	assert.Len(t, snsMock.inputs, 1)
}
