// Copyright (c) 2026 Veriden. All rights reserved.
// Author: duc.leminh.vn@gmail.com

/*
Package recaptcha talks to the external human-verification collaborator.

It exposes a single question, "was this token produced by a human?", and a
tri-state answer: a definite yes/no, or an error when the collaborator could
not be reached at all. Gates must keep those outcomes distinct: an unreachable
verifier is a server fault, not a denial.
*/
package recaptcha

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Result is the collaborator's verdict on a challenge token.
type Result struct {
	// IsHuman is the definitive verdict.
	IsHuman bool `json:"success"`

	// Hostname is the site the challenge was solved on.
	Hostname string `json:"hostname"`
}

// Verifier is the interface consumed by the recaptcha gate. The concrete
// [Client] is swapped for a stub in gate tests.
type Verifier interface {
	// IsHumanActivity verifies a challenge token.
	// A nil result with a nil error never occurs; an error means the check
	// could not be performed.
	IsHumanActivity(ctx context.Context, token string) (*Result, error)
}

// Client calls the remote verification endpoint over HTTPS.
type Client struct {
	endpoint string
	secret   string
	http     *http.Client
}

// NewClient constructs a verification client with a hard request timeout.
func NewClient(endpoint, secret string, timeout time.Duration) *Client {
	return &Client{
		endpoint: endpoint,
		secret:   secret,
		http:     &http.Client{Timeout: timeout},
	}
}

// IsHumanActivity submits the token for verification.
func (client *Client) IsHumanActivity(ctx context.Context, token string) (*Result, error) {
	form := url.Values{}
	form.Set("secret", client.secret)
	form.Set("response", token)

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, client.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("recaptcha: failed to build request: %w", err)
	}
	request.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	response, err := client.http.Do(request)
	if err != nil {
		return nil, fmt.Errorf("recaptcha: verifier unreachable: %w", err)
	}
	defer func() { _ = response.Body.Close() }()

	if response.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("recaptcha: verifier returned status %d", response.StatusCode)
	}

	result := &Result{}
	if err := json.NewDecoder(response.Body).Decode(result); err != nil {
		return nil, fmt.Errorf("recaptcha: malformed verifier response: %w", err)
	}

	return result, nil
}
