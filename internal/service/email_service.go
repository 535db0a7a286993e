package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/resend/resend-go/v2"

	"github.com/yourusername/testprep-api/internal/domain/entity"
)

// EmailService sends transactional emails.
type EmailService interface {
	SendAttemptResult(ctx context.Context, user *entity.User, test *entity.Test, attempt *entity.TestAttempt) error
}

// NoopEmailService is used when result emails are disabled.
type NoopEmailService struct{}

func (s *NoopEmailService) SendAttemptResult(ctx context.Context, user *entity.User, test *entity.Test, attempt *entity.TestAttempt) error {
	log.Printf("[EmailService] noop send attempt result to=%s attempt=%d", user.Email, attempt.ID)
	return nil
}

// ResendEmailService sends emails via Resend REST API.
type ResendEmailService struct {
	from   string
	client *resend.Client
}

func NewResendEmailService(apiKey, from string) (*ResendEmailService, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("resend api key is required")
	}
	if from == "" {
		return nil, fmt.Errorf("email from is required")
	}
	return &ResendEmailService{
		from:   from,
		client: resend.NewClient(apiKey),
	}, nil
}

func (s *ResendEmailService) SendAttemptResult(ctx context.Context, user *entity.User, test *entity.Test, attempt *entity.TestAttempt) error {
	if user.Email == "" || attempt.Score == nil || attempt.Percentage == nil {
		return fmt.Errorf("user email and completed attempt are required")
	}

	params := &resend.SendEmailRequest{
		From:    s.from,
		To:      []string{user.Email},
		Subject: fmt.Sprintf("Your result for %s", test.Title),
		Text: fmt.Sprintf("You scored %.2f out of %d (%.2f%%) on %s.",
			*attempt.Score, attempt.TotalMarks, *attempt.Percentage, test.Title),
		Html: fmt.Sprintf("<p>You scored <strong>%.2f</strong> out of %d (%.2f%%) on %s.</p>",
			*attempt.Score, attempt.TotalMarks, *attempt.Percentage, test.Title),
	}

	// One attempt per completion; the key makes retries safe.
	options := &resend.SendEmailOptions{
		IdempotencyKey: fmt.Sprintf("attempt-result-%d", attempt.ID),
	}

	var lastErr error
	for i := 0; i < 3; i++ {
		_, err := s.client.Emails.SendWithOptions(ctx, params, options)
		if err == nil {
			return nil
		}
		lastErr = err

		if wait, ok := resendRetryDelay(err, i); ok {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
				continue
			}
		}

		return fmt.Errorf("resend send failed: %w", err)
	}

	return fmt.Errorf("resend send failed after retries: %w", lastErr)
}

func resendRetryDelay(err error, attempt int) (time.Duration, bool) {
	var rateLimitErr *resend.RateLimitError
	if errors.As(err, &rateLimitErr) {
		if seconds, convErr := strconv.Atoi(strings.TrimSpace(rateLimitErr.RetryAfter)); convErr == nil && seconds > 0 {
			if seconds > 30 {
				seconds = 30
			}
			return time.Duration(seconds) * time.Second, true
		}
		return time.Duration(attempt+1) * time.Second, true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && (netErr.Timeout() || netErr.Temporary()) {
		return time.Duration(attempt+1) * 500 * time.Millisecond, true
	}

	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "timeout") || strings.Contains(msg, "temporar") {
		return time.Duration(attempt+1) * 500 * time.Millisecond, true
	}

	return 0, false
}
