package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"fdv-chatbot-platform/internal/ai"
	"fdv-chatbot-platform/internal/logger"
	"fdv-chatbot-platform/models"
)

var (
	// ErrEmptyQuestion is returned for a blank question.
	ErrEmptyQuestion       = errors.New("question is empty")
	ErrTranscriptsDisabled = errors.New("transcript storage is not configured")
	// ErrAnswerFailed wraps errors from the answer step.
	ErrAnswerFailed        = errors.New("answer generation failed")
)

// TranscriptStore persists answered turns. Optional.
type TranscriptStore interface {
	Save(ctx context.Context, msg *models.Message) error
	History(ctx context.Context, sessionID string, limit int) ([]models.Message, error)
}

// Assistant answers questions against a vendor's documents.
type Assistant struct {
	retriever   *Retriever
	answerer    ai.Answerer
	transcripts TranscriptStore
	timeout     time.Duration
	now         func() time.Time
}

// NewAssistant wires the retrieval and answer steps. transcripts may be nil.
func NewAssistant(retriever *Retriever, answerer ai.Answerer, transcripts TranscriptStore, timeout time.Duration) *Assistant {
	if answerer == nil {
		answerer = ai.ContextOnlyAnswerer{}
	}
	return &Assistant{
		retriever:   retriever,
		answerer:    answerer,
		transcripts: transcripts,
		timeout:     timeout,
		now:         time.Now,
	}
}

func (a *Assistant) Retriever() *Retriever { return a.retriever }

// Ask retrieves context for the question, asks the answerer and records the
// turn. Failing to record the turn is logged and does not fail the answer.
func (a *Assistant) Ask(ctx context.Context, req models.AskRequest) (models.AskResponse, error) {
	start := a.now()
	question := strings.TrimSpace(req.Question)
	if question == "" {
		return models.AskResponse{}, ErrEmptyQuestion
	}

	result, err := a.retriever.Retrieve(ctx, question, req.Vendor, req.SessionID)
	if err != nil {
		return models.AskResponse{}, err
	}

	answerCtx := ctx
	if a.timeout > 0 {
		var cancel context.CancelFunc
		answerCtx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}
	answer, err := a.answerer.Answer(answerCtx, ai.AnswerInput{
		Question: question,
		Role:     req.Role,
		Vendor:   req.Vendor,
		Context:  result.ContextText,
		Sources:  result.Sources,
	})
	if err != nil {
		return models.AskResponse{}, fmt.Errorf("%w: %w", ErrAnswerFailed, err)
	}

	now := a.now()
	resp := models.AskResponse{
		Answer:        answer,
		Sources:       result.Sources,
		SessionID:     result.SessionID,
		UsedRetrieval: result.UsedRetrieval,
		LatencyMs:     now.Sub(start).Milliseconds(),
		Timestamp:     now.UTC(),
	}

	if a.transcripts != nil {
		msg := &models.Message{
			SessionID:     resp.SessionID,
			Vendor:        req.Vendor,
			Role:          req.Role,
			Question:      question,
			Answer:        answer,
			Sources:       resp.Sources,
			UsedRetrieval: resp.UsedRetrieval,
			LatencyMs:     resp.LatencyMs,
			Timestamp:     resp.Timestamp,
		}
		if err := a.transcripts.Save(ctx, msg); err != nil {
			logger.Warn("Failed to save transcript", "session_id", resp.SessionID, "error", err)
		}
	}
	return resp, nil
}

// History returns the stored turns of a session. Without a transcript store
// it returns ErrTranscriptsDisabled.
func (a *Assistant) History(ctx context.Context, sessionID string) (models.ConversationHistory, error) {
	if a.transcripts == nil {
		return models.ConversationHistory{}, ErrTranscriptsDisabled
	}
	msgs, err := a.transcripts.History(ctx, sessionID, 0)
	if err != nil {
		return models.ConversationHistory{}, err
	}
	return models.ConversationHistory{SessionID: sessionID, Messages: msgs}, nil
}
