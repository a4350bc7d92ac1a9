package emails

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const brevoAPI = "https://api.brevo.com/v3/smtp/email"

// BrevoSendRequest matches Brevo API v3 send transactional email body.
type BrevoSendRequest struct {
	Sender      BrevoSender `json:"sender"`
	To          []BrevoTo   `json:"to"`
	Subject     string      `json:"subject"`
	HTMLContent string      `json:"htmlContent"`
}

type BrevoSender struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

type BrevoTo struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

// Sender delivers the preview email. The publish flow aborts when this
// fails, so implementations must report delivery errors.
type Sender interface {
	SendPreview(ctx context.Context, toEmail, agentName, listingTitle, previewURL string) error
}

// BrevoClient sends transactional email via the Brevo API.
type BrevoClient struct {
	APIKey   string
	MailFrom string
	Client   *http.Client
}

func (c *BrevoClient) from() string {
	if c.MailFrom != "" {
		return c.MailFrom
	}
	return "noreply@propview.local"
}

func (c *BrevoClient) send(ctx context.Context, toEmail, toName, subject, html string) error {
	if c.APIKey == "" {
		return fmt.Errorf("brevo: API key is not configured")
	}
	body := BrevoSendRequest{
		Sender:      BrevoSender{Email: c.from(), Name: "Propview"},
		To:          []BrevoTo{{Email: toEmail, Name: toName}},
		Subject:     subject,
		HTMLContent: html,
	}
	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, brevoAPI, bytes.NewReader(bodyBytes))
	if err != nil {
		return err
	}
	req.Header.Set("api-key", c.APIKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.Client == nil {
		c.Client = &http.Client{Timeout: 15 * time.Second}
	}
	resp, err := c.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("brevo send failed: status %d", resp.StatusCode)
	}
	return nil
}

// SendPreview emails an agent the scoped link to their listing.
func (c *BrevoClient) SendPreview(ctx context.Context, toEmail, agentName, listingTitle, previewURL string) error {
	content := previewContent(agentName, listingTitle, previewURL)
	return c.send(ctx, toEmail, agentName, "Your listing preview is ready", EmailLayout(content))
}

func previewContent(agentName, listingTitle, previewURL string) string {
	name := agentName
	if name == "" {
		name = "there"
	}
	title := listingTitle
	if title == "" {
		title = "your listing"
	}
	return fmt.Sprintf(`
    <h1>Your listing is ready</h1>
    <p>Hi %s,</p>
    <p>Your listing for <strong>%s</strong> is ready to view.</p>
    <center>
      <a href="%s" class="pv-button">Open Listing</a>
    </center>
    <p>Thanks for doing business with us!</p>
    <p>— The Propview Team</p>
`, EscapeHTML(name), EscapeHTML(title), previewURL)
}
