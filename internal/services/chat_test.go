package services

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/BerylCAtieno/document-metadata-api/internal/models"
	"github.com/BerylCAtieno/document-metadata-api/internal/utils"
)

func TestChatQuery(t *testing.T) {
	repo := &memoryChat{}
	client := &fakeBackend{answer: "The report covers Q3."}
	svc := NewChatService(repo, client, utils.NewLogger("error"))

	resp, err := svc.Query(context.Background(), "  what does the report cover?  ")
	if err != nil {
		t.Fatalf("Query returned error: %v", err)
	}
	if resp.Response != "The report covers Q3." {
		t.Errorf("Response = %q", resp.Response)
	}
	if resp.ResponseTimeMS < 0 {
		t.Errorf("ResponseTimeMS = %d", resp.ResponseTimeMS)
	}
	if len(client.queries) != 1 || client.queries[0] != "what does the report cover?" {
		t.Errorf("backend queries = %q", client.queries)
	}

	history, err := svc.History(context.Background())
	if err != nil {
		t.Fatalf("History returned error: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("history has %d messages, want 2", len(history))
	}
	if history[0].Sender != models.SenderUser || history[1].Sender != models.SenderAI {
		t.Errorf("senders = %s, %s", history[0].Sender, history[1].Sender)
	}
}

func TestChatQuery_Validation(t *testing.T) {
	svc := NewChatService(&memoryChat{}, &fakeBackend{}, utils.NewLogger("error"))

	_, err := svc.Query(context.Background(), "   ")
	if !errors.Is(err, ErrEmptyQuery) || statusOf(t, err) != http.StatusBadRequest {
		t.Errorf("empty query error = %v", err)
	}

	_, err = svc.Query(context.Background(), strings.Repeat("x", MaxQueryBytes+1))
	if !errors.Is(err, ErrQueryTooLarge) || statusOf(t, err) != http.StatusBadRequest {
		t.Errorf("large query error = %v", err)
	}
}

func TestChatQuery_BackendFailureKeepsUserMessage(t *testing.T) {
	repo := &memoryChat{}
	svc := NewChatService(repo, &fakeBackend{err: errors.New("model overloaded")}, utils.NewLogger("error"))

	_, err := svc.Query(context.Background(), "hello")
	if statusOf(t, err) != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", statusOf(t, err))
	}
	if len(repo.msgs) != 1 || repo.msgs[0].Sender != models.SenderUser {
		t.Errorf("history = %+v", repo.msgs)
	}
}

func TestChatQuery_Unconfigured(t *testing.T) {
	svc := NewChatService(&memoryChat{}, &fakeBackend{unconfigured: true}, utils.NewLogger("error"))

	_, err := svc.Query(context.Background(), "hello")
	if statusOf(t, err) != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", statusOf(t, err))
	}
}

func TestChatClearHistory(t *testing.T) {
	repo := &memoryChat{msgs: []models.ChatMessage{{ID: 1, Text: "hi", Sender: models.SenderUser}}}
	svc := NewChatService(repo, &fakeBackend{}, utils.NewLogger("error"))

	if err := svc.ClearHistory(context.Background()); err != nil {
		t.Fatalf("ClearHistory returned error: %v", err)
	}
	history, _ := svc.History(context.Background())
	if len(history) != 0 {
		t.Errorf("history has %d messages after clear", len(history))
	}
}
