package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/BerylCAtieno/document-metadata-api/internal/backend"
	"github.com/BerylCAtieno/document-metadata-api/internal/models"
	"github.com/BerylCAtieno/document-metadata-api/internal/repository"
	"github.com/BerylCAtieno/document-metadata-api/internal/utils"
)

// MaxQueryBytes is the largest chat query forwarded to the backend (16KB).
const MaxQueryBytes = 16 * 1024

var (
	ErrEmptyQuery    = errors.New("query is empty")
	ErrQueryTooLarge = errors.New("query exceeds maximum size")
)

type ChatService interface {
	Query(ctx context.Context, query string) (*models.QueryResponse, error)
	History(ctx context.Context) ([]models.ChatMessage, error)
	ClearHistory(ctx context.Context) error
}

type chatService struct {
	repo    repository.ChatRepository
	backend backend.Client
	logger  *utils.Logger
}

func NewChatService(repo repository.ChatRepository, client backend.Client, logger *utils.Logger) ChatService {
	return &chatService{
		repo:    repo,
		backend: client,
		logger:  logger,
	}
}

func (s *chatService) Query(ctx context.Context, query string) (*models.QueryResponse, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, &utils.AppError{StatusCode: http.StatusBadRequest, Message: "Query must not be empty", Err: ErrEmptyQuery}
	}
	if len(query) > MaxQueryBytes {
		return nil, &utils.AppError{
			StatusCode: http.StatusBadRequest,
			Message:    fmt.Sprintf("Query exceeds %d bytes", MaxQueryBytes),
			Err:        ErrQueryTooLarge,
		}
	}

	// The user's message is kept even if the backend fails to answer.
	userMsg := models.ChatMessage{Text: query, Sender: models.SenderUser, CreatedAt: time.Now()}
	if err := s.repo.Append(ctx, userMsg); err != nil {
		s.logger.Error("Failed to save chat message", "error", err)
		return nil, utils.NewInternalError("Failed to save chat message")
	}

	start := time.Now()
	answer, err := s.backend.Query(ctx, query)
	elapsed := time.Since(start)

	if errors.Is(err, backend.ErrNotConfigured) {
		return nil, utils.NewServiceUnavailableError("RAG backend is not configured")
	}
	if err != nil {
		s.logger.Error("Failed to query backend", "error", err, "query_length", len(query))
		return nil, utils.NewBadGatewayError("Failed to get a response", err)
	}

	aiMsg := models.ChatMessage{Text: answer, Sender: models.SenderAI, CreatedAt: time.Now()}
	if err := s.repo.Append(ctx, aiMsg); err != nil {
		s.logger.Error("Failed to save chat message", "error", err)
		return nil, utils.NewInternalError("Failed to save chat message")
	}

	s.logger.Info("Chat query answered",
		"query_length", len(query),
		"response_length", len(answer),
		"latency", elapsed)

	return &models.QueryResponse{
		Response:       answer,
		ResponseTimeMS: elapsed.Milliseconds(),
	}, nil
}

func (s *chatService) History(ctx context.Context) ([]models.ChatMessage, error) {
	msgs, err := s.repo.List(ctx)
	if err != nil {
		s.logger.Error("Failed to list chat messages", "error", err)
		return nil, utils.NewInternalError("Failed to retrieve chat history")
	}
	return msgs, nil
}

func (s *chatService) ClearHistory(ctx context.Context) error {
	if err := s.repo.Clear(ctx); err != nil {
		s.logger.Error("Failed to clear chat messages", "error", err)
		return utils.NewInternalError("Failed to clear chat history")
	}
	s.logger.Info("Chat history cleared")
	return nil
}
