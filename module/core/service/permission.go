package service

import (
	"context"
	"log/slog"

	"github.com/nandanugg/hr-checkin/module/core/domain"
	"github.com/nandanugg/hr-checkin/module/core/internal/repository/sensor"
)

type PermissionService struct {
	querier sensor.PermissionQuerier
	logger  *slog.Logger
}

func NewPermissionService(querier sensor.PermissionQuerier, logger *slog.Logger) *PermissionService {
	return &PermissionService{querier: querier, logger: logger}
}

// QueryPermission never fails. When the device cannot be asked, or answers
// with something unexpected, it reports "prompt".
func (s *PermissionService) QueryPermission(ctx context.Context, deviceID string) domain.PermissionState {
	if s.querier == nil {
		return domain.PermissionPrompt
	}

	state, err := s.querier.QueryPermission(ctx, deviceID)
	if err != nil {
		s.logger.DebugContext(ctx, "permission query failed", "device_id", deviceID, "error", err)
		return domain.PermissionPrompt
	}

	parsed, ok := domain.ParsePermissionState(string(state))
	if !ok {
		s.logger.DebugContext(ctx, "unrecognised permission state", "device_id", deviceID, "state", state)
	}
	return parsed
}
