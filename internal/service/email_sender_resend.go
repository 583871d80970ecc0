package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/resend/resend-go/v2"
)

// ResendEmailSender delivers verification codes through the Resend API.
type ResendEmailSender struct {
	Client *resend.Client
	From   string
}

func NewResendEmailSender(apiKey, from string) *ResendEmailSender {
	if strings.TrimSpace(apiKey) == "" || strings.TrimSpace(from) == "" {
		return nil
	}
	return &ResendEmailSender{
		Client: resend.NewClient(apiKey),
		From:   from,
	}
}

func (s *ResendEmailSender) SendVerificationCode(ctx context.Context, to, username string, code int) error {
	html := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
			<h2>Verification code</h2>
			<p>Dear %s,</p>
			<p>Your verification code is:</p>
			<h1 style="font-size: 32px; margin: 20px 0;">%06d</h1>
			<p>The code is valid for 2 minutes.</p>
			<p style="font-size: 12px; margin-top: 30px;">
				If you did not request registration, ignore this message.
			</p>
		</div>`, username, code)

	params := &resend.SendEmailRequest{
		From:    s.From,
		To:      []string{to},
		Subject: "Verification code",
		Html:    html,
		Text:    fmt.Sprintf("Your verification code: %06d (valid for 2 minutes)", code),
	}
	if _, err := s.Client.Emails.Send(params); err != nil {
		return fmt.Errorf("resend send: %w", err)
	}
	return nil
}
