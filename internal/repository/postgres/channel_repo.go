package postgres

import (
	"context"
	"database/sql"

	"github.com/dom/videotube-backend/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type channelRepository struct {
	db *gorm.DB
}

func NewChannelRepository(db *gorm.DB) *channelRepository {
	return &channelRepository{db: db}
}

// GetChannelProfile counts subscribers and subscriptions for the channel and
// reports whether viewerID is one of its subscribers.
func (r *channelRepository) GetChannelProfile(ctx context.Context, username string, viewerID uuid.UUID) (*domain.ChannelProfile, error) {
	var profile domain.ChannelProfile
	result := r.db.WithContext(ctx).
		Table("users AS u").
		Select(`u.id, u.username, u.full_name, u.email, u.avatar, u.cover_image,
			(SELECT COUNT(*) FROM subscriptions s WHERE s.channel_id = u.id) AS subscribers_count,
			(SELECT COUNT(*) FROM subscriptions s WHERE s.subscriber_id = u.id) AS subscribed_count,
			EXISTS (SELECT 1 FROM subscriptions s WHERE s.channel_id = u.id AND s.subscriber_id = ?) AS is_subscribed`,
			viewerID).
		Where("u.username = ?", username).
		Limit(1).
		Scan(&profile)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, domain.ErrChannelNotFound
	}
	return &profile, nil
}

type watchRow struct {
	domain.Video
	OwnerRef      uuid.NullUUID
	OwnerUsername sql.NullString
	OwnerFullName sql.NullString
	OwnerAvatar   sql.NullString
}

// GetWatchHistory resolves the user's watch history in order, attaching each
// video's owner. Videos that no longer exist are skipped.
func (r *channelRepository) GetWatchHistory(ctx context.Context, userID uuid.UUID) ([]domain.WatchedVideo, error) {
	var rows []watchRow
	err := r.db.WithContext(ctx).
		Table("users AS u").
		Select(`v.id, v.video_file, v.thumbnail, v.title, v.description, v.duration, v.views,
			v.is_published, v.owner_id, v.created_at, v.updated_at,
			o.id AS owner_ref, o.username AS owner_username, o.full_name AS owner_full_name, o.avatar AS owner_avatar`).
		Joins("CROSS JOIN LATERAL jsonb_array_elements_text(u.watch_history) WITH ORDINALITY AS wh(video_id, position)").
		Joins("JOIN videos v ON v.id = wh.video_id::uuid").
		Joins("LEFT JOIN users o ON o.id = v.owner_id").
		Where("u.id = ?", userID).
		Order("wh.position").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	history := make([]domain.WatchedVideo, 0, len(rows))
	for _, row := range rows {
		entry := domain.WatchedVideo{Video: row.Video}
		if row.OwnerRef.Valid {
			entry.Owner = &domain.VideoOwner{
				ID:       row.OwnerRef.UUID,
				Username: row.OwnerUsername.String,
				FullName: row.OwnerFullName.String,
				Avatar:   row.OwnerAvatar.String,
			}
		}
		history = append(history, entry)
	}
	return history, nil
}
