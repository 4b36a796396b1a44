package services

import (
	"context"
	"log/slog"

	"github.com/SscSPs/edu_center_app/internal/apperrors"
	"github.com/SscSPs/edu_center_app/internal/core/domain"
	portssvc "github.com/SscSPs/edu_center_app/internal/core/ports/services"
	"github.com/SscSPs/edu_center_app/internal/middleware"
)

// BaseService provides common functionality for all services
type BaseService struct {
	AccessGate portssvc.AccessGateSvc
}

// GetLogger gets the logger from context or returns a default one
func (s *BaseService) GetLogger(ctx context.Context) *slog.Logger {
	return middleware.GetLoggerFromCtx(ctx)
}

// LogError logs an error with consistent formatting
func (s *BaseService) LogError(ctx context.Context, err error, msg string, keyvals ...any) {
	logger := s.GetLogger(ctx)
	args := make([]any, 0, len(keyvals)+1)
	args = append(args, slog.String("error", err.Error()))
	args = append(args, keyvals...)
	logger.Error(msg, args...)
}

// LogWarn logs a warning with consistent formatting
func (s *BaseService) LogWarn(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).Warn(msg, keyvals...)
}

// LogInfo logs an info message with consistent formatting
func (s *BaseService) LogInfo(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).Info(msg, keyvals...)
}

// LogDebug logs a debug message with consistent formatting
func (s *BaseService) LogDebug(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).Debug(msg, keyvals...)
}

// AuthorizeGroup checks that the principal holds the capability on the group and returns the group.
// Without an access gate every request is denied.
func (s *BaseService) AuthorizeGroup(ctx context.Context, principal domain.Principal, groupID string, capability domain.Capability) (*domain.Group, error) {
	if s.AccessGate == nil {
		s.LogWarn(ctx, "No access gate configured, denying access",
			slog.String("principal_id", principal.ID),
			slog.String("group_id", groupID))
		return nil, apperrors.NewForbiddenError("access gate not configured")
	}
	return s.AccessGate.AuthorizeGroupAccess(ctx, principal, groupID, capability)
}
