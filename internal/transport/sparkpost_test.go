package transport

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	appconfig "github.com/ignite/campaigner/internal/config"
)

func newSparkPostTestServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *SparkPostMailer) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	mailer, err := NewSparkPostMailer(appconfig.SparkPostConfig{
		APIKey:         "test-key",
		BaseURL:        srv.URL,
		TimeoutSeconds: 5,
	})
	if err != nil {
		t.Fatalf("NewSparkPostMailer: %v", err)
	}
	return srv, mailer
}

func TestSparkPostSend(t *testing.T) {
	var got map[string]interface{}
	_, mailer := newSparkPostTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/transmissions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "test-key" {
			t.Errorf("missing Authorization header")
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"results": map[string]string{"id": "tx-123"},
		})
	})

	msg := &Message{
		To:        "alice@example.com",
		FromEmail: "news@sender.io",
		FromName:  "Newsletter",
		Subject:   "Hello Alice",
		HTML:      "<p>Hi</p>",
		Text:      "Hi",
		Headers:   map[string]string{"List-Unsubscribe": "<https://app.example.com/unsubscribe?email=alice%40example.com>"},
	}
	if err := mailer.Send(context.Background(), msg); err != nil {
		t.Fatalf("Send: %v", err)
	}

	content, ok := got["content"].(map[string]interface{})
	if !ok {
		t.Fatal("missing content block")
	}
	if content["subject"] != "Hello Alice" {
		t.Errorf("subject = %v", content["subject"])
	}
	headers, _ := content["headers"].(map[string]interface{})
	if headers["List-Unsubscribe"] == "" {
		t.Error("List-Unsubscribe header not forwarded")
	}

	options, ok := got["options"].(map[string]interface{})
	if !ok {
		t.Fatal("missing options block")
	}
	if options["open_tracking"] != false || options["click_tracking"] != false {
		t.Errorf("tracking should be disabled, got %v", options)
	}
}

func TestSparkPostSendMalformedSuccessBody(t *testing.T) {
	_, mailer := newSparkPostTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("not json"))
	})

	msg := &Message{
		To:        "alice@example.com",
		FromEmail: "news@sender.io",
		Subject:   "Hello",
		HTML:      "<p>Hi</p>",
	}
	// The provider accepted the message, so a bad body is not a send failure.
	if err := mailer.Send(context.Background(), msg); err != nil {
		t.Fatalf("Send: %v", err)
	}
}

func TestSparkPostSendError(t *testing.T) {
	_, mailer := newSparkPostTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"errors":[{"message":"invalid recipient"}]}`))
	})

	err := mailer.Send(context.Background(), &Message{To: "bad", Subject: "x", HTML: "y"})
	if err == nil {
		t.Fatal("expected error on 4xx response")
	}
}

func TestSparkPostRequiresAPIKey(t *testing.T) {
	_, err := NewSparkPostMailer(appconfig.SparkPostConfig{})
	if err == nil {
		t.Fatal("expected error for missing API key")
	}
}

func TestNewMailerUnknownProvider(t *testing.T) {
	cfg := &appconfig.Config{}
	cfg.Email.Provider = "pigeon"
	_, err := NewMailer(context.Background(), cfg)
	if err == nil {
		t.Fatal("expected error for unknown provider")
	}
}
