// internal/notify/notifier.go
//
// Package notify delivers status-change notifications to applicants:
// email via SES for every transition, SMS via SNS for decisions. Delivery
// failure never rolls back the status change that triggered it; callers
// log and move on.
package notify

import (
	"context"
	"fmt"
	"time"

	"clearance-portal/internal/common/config"
	"clearance-portal/internal/common/errors"
	"clearance-portal/internal/common/logger"
	"clearance-portal/internal/common/observability"
	"clearance-portal/internal/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"
)

// Define interfaces for mocking
type SESService interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

type SNSService interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// Notifier sends applicant-facing notifications for one portal instance.
type Notifier struct {
	cfg    config.NotificationConfig
	logger logger.Logger
	obs    *observability.Observability
	ses    SESService
	sns    SNSService
}

// New constructs a Notifier with real AWS clients.
func New(ctx context.Context, cfg config.NotificationConfig, obs *observability.Observability, log logger.Logger) (*Notifier, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWS.Region))
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}
	return NewWithClients(cfg, ses.NewFromConfig(awsCfg), sns.NewFromConfig(awsCfg), obs, log), nil
}

// NewWithClients constructs a Notifier over caller-supplied clients.
func NewWithClients(cfg config.NotificationConfig, sesClient SESService, snsClient SNSService, obs *observability.Observability, log logger.Logger) *Notifier {
	return &Notifier{
		cfg:    cfg,
		logger: log.WithFields(map[string]interface{}{"component": "notify"}),
		obs:    obs,
		ses:    sesClient,
		sns:    snsClient,
	}
}

// StatusChanged notifies the applicant about a status transition. Email
// goes out whenever the applicant supplied an address; SMS only for
// approved/rejected decisions. The first delivery failure is returned, but
// both channels are always attempted.
func (n *Notifier) StatusChanged(ctx context.Context, app *models.Application) error {
	var firstErr error

	if n.cfg.Email.Enabled && app.Email != "" {
		if err := n.sendEmail(ctx, app); err != nil {
			n.logger.Error("email notification failed", map[string]interface{}{
				"applicationId": app.ID,
				"error":         err,
			})
			firstErr = errors.NewNotificationSendFailedError("email", err)
		}
	}

	if n.cfg.SMS.Enabled && app.Status.Terminal() && app.PhoneNumber != "" {
		if err := n.sendSMS(ctx, app); err != nil {
			n.logger.Error("sms notification failed", map[string]interface{}{
				"applicationId": app.ID,
				"error":         err,
			})
			if firstErr == nil {
				firstErr = errors.NewNotificationSendFailedError("sms", err)
			}
		}
	}

	return firstErr
}

func (n *Notifier) sendEmail(ctx context.Context, app *models.Application) error {
	start := time.Now()
	subject, body := emailContent(app)

	_, err := n.ses.SendEmail(ctx, &ses.SendEmailInput{
		Destination: &types.Destination{
			ToAddresses: []string{app.Email},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(subject)},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(body)},
			},
		},
		Source: aws.String(n.cfg.Email.FromEmail),
	})

	n.recordDelivery(ctx, "email", start, err)
	return err
}

func (n *Notifier) sendSMS(ctx context.Context, app *models.Application) error {
	start := time.Now()

	_, err := n.sns.Publish(ctx, &sns.PublishInput{
		PhoneNumber: aws.String(app.PhoneNumber),
		Message:     aws.String(smsContent(app)),
	})

	n.recordDelivery(ctx, "sms", start, err)
	return err
}

func (n *Notifier) recordDelivery(ctx context.Context, channel string, start time.Time, err error) {
	if n.obs == nil {
		return
	}
	status := "sent"
	if err != nil {
		status = "failed"
	}
	n.obs.RecordNotification(ctx, channel, status)
	n.obs.RecordNotificationDuration(ctx, time.Since(start), channel)
}

func emailContent(app *models.Application) (subject, body string) {
	switch app.Status {
	case models.StatusUnderReview:
		subject = fmt.Sprintf("Application %s is under review", app.ReferenceNumber)
		body = fmt.Sprintf(
			"Dear %s,\n\nYour rates clearance application %s is now under review. "+
				"We will contact you if further documents are required.\n\nMasvingo City Council",
			app.FullName, app.ReferenceNumber)
	case models.StatusApproved:
		subject = fmt.Sprintf("Application %s approved", app.ReferenceNumber)
		body = fmt.Sprintf(
			"Dear %s,\n\nYour rates clearance application %s has been approved. "+
				"You may collect your clearance certificate at the revenue hall.\n\nMasvingo City Council",
			app.FullName, app.ReferenceNumber)
	case models.StatusRejected:
		subject = fmt.Sprintf("Application %s rejected", app.ReferenceNumber)
		body = fmt.Sprintf(
			"Dear %s,\n\nYour rates clearance application %s has been rejected. "+
				"Reason: %s\n\nMasvingo City Council",
			app.FullName, app.ReferenceNumber, app.Reason)
	default:
		subject = fmt.Sprintf("Application %s received", app.ReferenceNumber)
		body = fmt.Sprintf(
			"Dear %s,\n\nYour rates clearance application has been received. "+
				"Your reference number is %s.\n\nMasvingo City Council",
			app.FullName, app.ReferenceNumber)
	}
	return subject, body
}

func smsContent(app *models.Application) string {
	if app.Status == models.StatusApproved {
		return fmt.Sprintf("Masvingo City Council: application %s APPROVED. Collect your certificate at the revenue hall.", app.ReferenceNumber)
	}
	return fmt.Sprintf("Masvingo City Council: application %s was rejected. Contact the revenue office for details.", app.ReferenceNumber)
}
