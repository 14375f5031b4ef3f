package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	appconfig "github.com/ignite/campaigner/internal/config"
	"github.com/ignite/campaigner/internal/pkg/logger"
)

// SparkPostMailer sends email via the SparkPost Transmissions API.
type SparkPostMailer struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewSparkPostMailer creates a mailer targeting the SparkPost v1 API.
func NewSparkPostMailer(cfg appconfig.SparkPostConfig) (*SparkPostMailer, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("SparkPost API key not configured")
	}
	return &SparkPostMailer{
		apiKey:     cfg.APIKey,
		baseURL:    cfg.BaseURL,
		httpClient: &http.Client{Timeout: cfg.Timeout()},
	}, nil
}

// Send delivers a single message through SparkPost. Open and click tracking
// are disabled so the provider does not rewrite links or inject pixels.
func (m *SparkPostMailer) Send(ctx context.Context, msg *Message) error {
	content := map[string]interface{}{
		"from":    map[string]string{"email": msg.FromEmail, "name": msg.FromName},
		"subject": msg.Subject,
		"html":    msg.HTML,
	}
	if msg.Text != "" {
		content["text"] = msg.Text
	}
	if msg.ReplyTo != "" {
		content["reply_to"] = msg.ReplyTo
	}
	if len(msg.Headers) > 0 {
		content["headers"] = msg.Headers
	}

	transmission := map[string]interface{}{
		"recipients": []map[string]interface{}{
			{"address": map[string]string{"email": msg.To}},
		},
		"content": content,
		"options": map[string]bool{
			"open_tracking":  false,
			"click_tracking": false,
		},
	}
	if len(msg.Metadata) > 0 {
		transmission["metadata"] = msg.Metadata
	}

	jsonData, err := json.Marshal(transmission)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL+"/transmissions", bytes.NewBuffer(jsonData))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", m.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sparkpost send: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode >= 400 {
		return fmt.Errorf("sparkpost error %d: %s", resp.StatusCode, string(body))
	}

	var result struct {
		Results struct {
			ID string `json:"id"`
		} `json:"results"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		// The provider accepted the message; a bad body only costs the ID.
		logger.Warn("sparkpost response parse failed", "to", msg.To, "error", err.Error())
		return nil
	}

	logger.Debug("sparkpost message accepted", "to", msg.To, "message_id", result.Results.ID)

	return nil
}
