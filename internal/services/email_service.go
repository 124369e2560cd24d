package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
)

// EmailService is the outbound notifier. Delivery failures are the caller's
// to log; they must never fail the parent operation.
type EmailService interface {
	SendVerificationEmail(ctx context.Context, email, link string) error
	SendPasswordResetEmail(ctx context.Context, email, link string) error
}

// AWSSESEmailService sends emails using AWS SES
type AWSSESEmailService struct {
	sesClient   *ses.Client
	fromAddress string
	logger      *slog.Logger
}

// NewAWSSESEmailService creates a new AWS SES email service
func NewAWSSESEmailService(region, fromAddress string, logger *slog.Logger) (*AWSSESEmailService, error) {
	cfg, err := awsconfig.LoadDefaultConfig(context.Background(), awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &AWSSESEmailService{
		sesClient:   ses.NewFromConfig(cfg),
		fromAddress: fromAddress,
		logger:      logger,
	}, nil
}

// SendVerificationEmail sends an email-verification link
func (s *AWSSESEmailService) SendVerificationEmail(ctx context.Context, email, link string) error {
	htmlBody := fmt.Sprintf(`
<div>
	<p>Thank you for creating an account. Please click the link below to verify your email address:</p>
	<p><a href="%s">Verify Email Address</a></p>
	<p>Or copy and paste this link in your browser:<br><code>%s</code></p>
	<p>This link will expire in 24 hours. If you didn't sign up for this account, you can ignore this email.</p>
</div>
`, link, link)

	textBody := fmt.Sprintf(`Please verify your email address by opening the link below:

%s

This link will expire in 24 hours. If you didn't sign up for this account, you can ignore this email.
`, link)

	return s.send(ctx, email, "Verify your email address", htmlBody, textBody)
}

// SendPasswordResetEmail sends a password-reset link
func (s *AWSSESEmailService) SendPasswordResetEmail(ctx context.Context, email, link string) error {
	htmlBody := fmt.Sprintf(`
<div>
	<p>We received a request to reset your password. Click the link below to choose a new one:</p>
	<p><a href="%s">Reset your password</a></p>
	<p>Or copy and paste this link in your browser:<br><code>%s</code></p>
	<p>This link will expire in 24 hours. If you didn't request a reset, you can ignore this email.</p>
</div>
`, link, link)

	textBody := fmt.Sprintf(`We received a request to reset your password. Open the link below to choose a new one:

%s

This link will expire in 24 hours. If you didn't request a reset, you can ignore this email.
`, link)

	return s.send(ctx, email, "Reset your password", htmlBody, textBody)
}

func (s *AWSSESEmailService) send(ctx context.Context, email, subject, htmlBody, textBody string) error {
	input := &ses.SendEmailInput{
		Source: aws.String(s.fromAddress),
		Destination: &types.Destination{
			ToAddresses: []string{email},
		},
		Message: &types.Message{
			Subject: &types.Content{
				Data: aws.String(subject),
			},
			Body: &types.Body{
				Html: &types.Content{
					Data: aws.String(htmlBody),
				},
				Text: &types.Content{
					Data: aws.String(textBody),
				},
			},
		},
	}

	result, err := s.sesClient.SendEmail(ctx, input)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.logger.Info("email sent",
		slog.String("subject", subject),
		slog.String("message_id", aws.ToString(result.MessageId)))

	return nil
}
