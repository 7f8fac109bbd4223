package repository

import (
	"context"

	"github.com/dom/videotube-backend/internal/domain"
	"github.com/google/uuid"
)

// UserRepository persists user records. Implementations return
// domain.ErrUserNotFound and domain.ErrDuplicateUser rather than driver errors.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	FindByUsernameOrEmail(ctx context.Context, username, email string) (*domain.User, error)
	SetRefreshToken(ctx context.Context, id uuid.UUID, token string) error
	SetPasswordHash(ctx context.Context, id uuid.UUID, hash string) error
	SetMedia(ctx context.Context, id uuid.UUID, field domain.MediaField, url string) (*domain.User, error)
}

// ChannelRepository runs the read-model aggregations over users, videos
// and subscriptions.
type ChannelRepository interface {
	GetChannelProfile(ctx context.Context, username string, viewerID uuid.UUID) (*domain.ChannelProfile, error)
	GetWatchHistory(ctx context.Context, userID uuid.UUID) ([]domain.WatchedVideo, error)
}

type HealthChecker interface {
	Ping(ctx context.Context) error
}

type Repositories struct {
	User    UserRepository
	Channel ChannelRepository
	Health  HealthChecker
}
