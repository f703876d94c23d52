// Copyright (c) 2026 Veriden. All rights reserved.
// Author: duc.leminh.vn@gmail.com

/*
Package messaging provides the outbound notification boundary.

It defines the Mailer and SMSSender contracts consumed by the identity
service when dispatching security tokens, plus concrete senders:

  - Postmark-backed transactional email for production.
  - File-based development senders that write messages to a local outbox.

Both contracts report success or failure only. Delivery retries, bounce
handling, and provider failover live outside this service.
*/
package messaging

import "context"

// Email is a single outbound email message.
type Email struct {
	To      string
	Subject string
	Body    string
	Tag     string
}

// SMS is a single outbound text message.
type SMS struct {
	To   string
	Body string
}

// Mailer sends a single email and reports the outcome.
type Mailer interface {
	SendSingleEmail(ctx context.Context, email Email) error
}

// SMSSender sends a single text message and reports the outcome.
type SMSSender interface {
	SendSingleSms(ctx context.Context, sms SMS) error
}
