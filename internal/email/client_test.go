package email

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goliatone/go-sitecms/internal/apperrors"
)

func TestSendPostsMessage(t *testing.T) {
	var got Message
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/emails" || r.Header.Get("Authorization") != "Bearer key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		_, _ = w.Write([]byte(`{"id":"msg_1"}`))
	}))
	defer srv.Close()

	client, err := NewClient(srv.URL, "key", WithDefaultFrom("site@example.com"))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	id, err := client.Send(context.Background(), Message{To: []string{"ada@example.com"}, Subject: "Your download", Text: "hi"})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if id != "msg_1" || got.From != "site@example.com" || got.Subject != "Your download" {
		t.Fatalf("unexpected send id=%q msg=%+v", id, got)
	}
}

func TestSendFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client, _ := NewClient(srv.URL, "")
	ctx := context.Background()
	if _, err := client.Send(ctx, Message{Subject: "x"}); !apperrors.IsValidation(err) {
		t.Fatalf("expected recipient validation, got %v", err)
	}
	if _, err := client.Send(ctx, Message{To: []string{"a@b.c"}}); !apperrors.IsValidation(err) {
		t.Fatalf("expected subject validation, got %v", err)
	}
	if _, err := client.Send(ctx, Message{To: []string{"a@b.c"}, Subject: "x"}); !apperrors.IsIntegration(err) {
		t.Fatalf("expected integration error, got %v", err)
	}
}
