// Copyright (c) 2026 Veriden. All rights reserved.
// Author: duc.leminh.vn@gmail.com

package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// DevMailer writes emails as JSON files into a local outbox directory
// instead of delivering them. Used in development and integration tests.
type DevMailer struct {
	directory string
}

// NewDevMailer creates the file-based development mailer.
// The directory is created lazily on first send.
func NewDevMailer(directory string) *DevMailer {
	return &DevMailer{directory: directory}
}

// SendSingleEmail saves the message under a timestamped filename.
func (mailer *DevMailer) SendSingleEmail(ctx context.Context, email Email) error {
	if err := os.MkdirAll(mailer.directory, 0o755); err != nil {
		return fmt.Errorf("messaging: failed to create outbox: %w", err)
	}

	payload, err := json.MarshalIndent(email, "", "  ")
	if err != nil {
		return fmt.Errorf("messaging: failed to encode email: %w", err)
	}

	filename := fmt.Sprintf("%s_email.json", time.Now().Format("20060102_150405.000"))
	if err := os.WriteFile(filepath.Join(mailer.directory, filename), payload, 0o644); err != nil {
		return fmt.Errorf("messaging: failed to write email: %w", err)
	}

	return nil
}

// LogSMSSender logs text messages instead of delivering them. There is no
// production SMS provider wired yet; operators follow the structured log.
type LogSMSSender struct {
	logger *slog.Logger
}

// NewLogSMSSender creates the logging SMS sender.
func NewLogSMSSender(logger *slog.Logger) *LogSMSSender {
	return &LogSMSSender{logger: logger}
}

// SendSingleSms logs the message at INFO level.
func (sender *LogSMSSender) SendSingleSms(ctx context.Context, sms SMS) error {
	sender.logger.InfoContext(ctx, "sms_dispatched",
		slog.String("to", sms.To),
		slog.Int("body_length", len(sms.Body)),
	)
	return nil
}
