// Copyright (c) 2026 Veriden. All rights reserved.
// Author: duc.leminh.vn@gmail.com

package messaging

import (
	"context"
	"fmt"

	"github.com/mrz1836/postmark"
)

// PostmarkMailer sends transactional email through the Postmark API.
type PostmarkMailer struct {
	client *postmark.Client
	sender string
}

// NewPostmarkMailer constructs the production mailer.
// Both API tokens and the sender address are required.
func NewPostmarkMailer(serverToken, accountToken, senderEmail string) (*PostmarkMailer, error) {
	if serverToken == "" || accountToken == "" {
		return nil, fmt.Errorf("messaging: postmark tokens are required")
	}
	if senderEmail == "" {
		return nil, fmt.Errorf("messaging: sender email is required")
	}

	return &PostmarkMailer{
		client: postmark.NewClient(serverToken, accountToken),
		sender: senderEmail,
	}, nil
}

// SendSingleEmail delivers one message via Postmark.
func (mailer *PostmarkMailer) SendSingleEmail(ctx context.Context, email Email) error {
	response, err := mailer.client.SendEmail(ctx, postmark.Email{
		From:     mailer.sender,
		To:       email.To,
		Subject:  email.Subject,
		HTMLBody: email.Body,
		Tag:      email.Tag,
	})
	if err != nil {
		return fmt.Errorf("messaging: postmark send failed: %w", err)
	}

	// Postmark signals per-message rejection in the body, not the HTTP status.
	if response.ErrorCode != 0 {
		return fmt.Errorf("messaging: postmark rejected message: code=%d %s", response.ErrorCode, response.Message)
	}

	return nil
}
