package port

import (
	"context"
	"time"

	"github.com/KevinRuanSoares/serasa-test-api/internal/core/domain"
)

// TokenRepository persists opaque auth tokens, at most one per user.
type TokenRepository interface {
	GetByKey(ctx context.Context, key string) (*domain.AuthToken, error)
	GetByUserID(ctx context.Context, userID string) (*domain.AuthToken, error)
	Create(ctx context.Context, token domain.AuthToken) error
	// Touch rewinds the creation timestamp, sliding the expiry window.
	Touch(ctx context.Context, id string, createdAt time.Time) error
	Delete(ctx context.Context, id string) error
	DeleteByUserID(ctx context.Context, userID string) error
}
