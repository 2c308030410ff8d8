package usecase

import (
	"context"
	"time"

	uuid "github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/KevinRuanSoares/serasa-test-api/internal/core/domain"
	"github.com/KevinRuanSoares/serasa-test-api/internal/core/port"
)

// publishRecordArchived emits the shared archive event for any registry
// entity. Publish failures are logged, never surfaced.
func publishRecordArchived(ctx context.Context, events port.EventPublisher, log *zap.Logger, at time.Time, entityType, entityID, archivedBy string) {
	if events == nil {
		return
	}

	event := domain.RecordArchivedEvent{
		EventID:    uuid.NewString(),
		EntityType: entityType,
		EntityID:   entityID,
		ArchivedBy: archivedBy,
		ArchivedAt: at,
	}
	if err := events.PublishRecordArchived(ctx, event); err != nil {
		log.Warn("publish record archived event",
			zap.String("entity_type", entityType),
			zap.String("entity_id", entityID),
			zap.Error(err),
		)
	}
}
