package publisher

import (
	"context"

	"github.com/nandanugg/hr-checkin/module/core/domain"
)

type AttendancePublisher interface {
	PublishEvent(ctx context.Context, event *domain.AttendanceEvent) error
}
