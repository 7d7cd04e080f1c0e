// Package audit records authorization outcomes for the security trail.
// The trail is the only place denial reasons are written; callers must
// surface nothing beyond a generic refusal.
package audit

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type Service struct {
	logger zerolog.Logger
}

func NewService(logger zerolog.Logger) *Service {
	return &Service{logger: logger}
}

// LogDenial records a denied permission check with its internal reason.
func (s *Service) LogDenial(ctx context.Context, userID uuid.UUID, permission string, objectID uuid.UUID, reason string) {
	event := s.logger.Warn().
		Str("decision", "deny").
		Str("permission", permission).
		Str("user_id", userID.String()).
		Str("reason", reason)
	if objectID != uuid.Nil {
		event = event.Str("object_id", objectID.String())
	}
	if requestID, ok := ctx.Value("request_id").(string); ok {
		event = event.Str("request_id", requestID)
	}
	event.Msg("authorization denied")
}

// LogChange records a permission-gated mutation that went through.
func (s *Service) LogChange(ctx context.Context, userID uuid.UUID, action string, objectID uuid.UUID) {
	event := s.logger.Info().
		Str("action", action).
		Str("user_id", userID.String()).
		Str("object_id", objectID.String())
	if requestID, ok := ctx.Value("request_id").(string); ok {
		event = event.Str("request_id", requestID)
	}
	event.Msg("audited change")
}
