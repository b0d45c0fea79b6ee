// Package notify delivers invite emails through an HTTP mail relay.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

// InviteEmail contains everything the relay needs to render an invite.
type InviteEmail struct {
	To        string
	TeamName  string
	InvitedBy string
	RoleName  string
	AcceptURL string
	ExpiresAt time.Time
}

// Client posts invite emails to the relay endpoint.
type Client struct {
	httpClient *http.Client
	endpoint   string
	timeout    time.Duration
}

// NewClient creates a relay client. An empty endpoint disables delivery;
// invites are still created and can be accepted from the in-app inbox.
func NewClient(endpoint string, timeoutMS int) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: time.Duration(timeoutMS) * time.Millisecond,
		},
		endpoint: endpoint,
		timeout:  time.Duration(timeoutMS) * time.Millisecond,
	}
}

type relayPayload struct {
	Template string            `json:"template"`
	To       string            `json:"to"`
	Subject  string            `json:"subject"`
	Vars     map[string]string `json:"vars"`
}

// SendInvite posts the invite to the relay. Any non-2xx answer is an error.
func (c *Client) SendInvite(ctx context.Context, msg InviteEmail) error {
	if c.endpoint == "" {
		log.Info().
			Str("to", msg.To).
			Str("team", msg.TeamName).
			Msg("Mail relay not configured, skipping invite email")
		return nil
	}

	payload := relayPayload{
		Template: "team_invite",
		To:       msg.To,
		Subject:  fmt.Sprintf("Você foi convidado para a equipe %s", msg.TeamName),
		Vars: map[string]string{
			"team_name":  msg.TeamName,
			"invited_by": msg.InvitedBy,
			"role_name":  msg.RoleName,
			"accept_url": msg.AcceptURL,
			"expires_at": msg.ExpiresAt.UTC().Format(time.RFC3339),
		},
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal invite payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create relay request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || isTimeoutError(err) {
			return fmt.Errorf("mail relay timed out after %s: %w", c.timeout, err)
		}
		return fmt.Errorf("failed to call mail relay: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 && resp.StatusCode < 500 {
		return fmt.Errorf("mail relay rejected invite (status %d)", resp.StatusCode)
	}
	if resp.StatusCode >= 500 {
		return fmt.Errorf("mail relay failed (status %d)", resp.StatusCode)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("mail relay returned unexpected status %d", resp.StatusCode)
	}

	log.Info().
		Str("to", msg.To).
		Str("team", msg.TeamName).
		Msg("Invite email sent")

	return nil
}

func isTimeoutError(err error) bool {
	var netErr interface{ Timeout() bool }
	return errors.As(err, &netErr) && netErr.Timeout()
}
