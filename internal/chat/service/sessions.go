package service

import (
	"context"

	chatdomain "github.com/boddenberg/cargo-chat-bfa-go/internal/chat/domain"
	"github.com/boddenberg/cargo-chat-bfa-go/internal/domain"

	"go.uber.org/zap"
)

// CleanupResult is the body of GET /api/chat/sessions/cleanup.
type CleanupResult struct {
	Removed    int      `json:"removed"`
	RemovedIDs []string `json:"removedIds"`
	Active     int      `json:"active"`
}

// ListSessions snapshots every live session.
func (s *ChatService) ListSessions(ctx context.Context) []chatdomain.SessionSummary {
	_, span := chatTracer.Start(ctx, "ChatService.ListSessions")
	defer span.End()
	return s.sessions.List()
}

// Cleanup runs the inactivity sweep on demand.
func (s *ChatService) Cleanup(ctx context.Context) *CleanupResult {
	_, span := chatTracer.Start(ctx, "ChatService.Cleanup")
	defer span.End()

	removed := s.sessions.Sweep()
	if removed == nil {
		removed = []string{}
	}
	active := s.sessions.Count()
	s.metrics.AddEvicted(len(removed))
	s.metrics.SetActiveSessions(active)

	s.logger.Info("manual session cleanup",
		zap.Int("removed", len(removed)),
		zap.Int("active", active),
	)
	return &CleanupResult{Removed: len(removed), RemovedIDs: removed, Active: active}
}

// DeleteSession clears one conversation.
func (s *ChatService) DeleteSession(ctx context.Context, id string) error {
	_, span := chatTracer.Start(ctx, "ChatService.DeleteSession")
	defer span.End()

	if !s.sessions.Delete(id) {
		return &domain.ErrNotFound{Resource: "session", ID: id}
	}
	s.metrics.SetActiveSessions(s.sessions.Count())
	return nil
}

// Metrics returns the counters snapshot.
func (s *ChatService) Metrics() *domain.ChatMetrics {
	return s.metrics.Snapshot()
}
