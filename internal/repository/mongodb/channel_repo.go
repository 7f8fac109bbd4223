package mongodb

import (
	"context"

	"github.com/dom/videotube-backend/internal/domain"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"
)

type channelRepository struct {
	users *mongo.Collection
}

func NewChannelRepository(db *mongo.Database) *channelRepository {
	return &channelRepository{users: db.Collection(usersCollection)}
}

func (r *channelRepository) GetChannelProfile(ctx context.Context, username string, viewerID uuid.UUID) (*domain.ChannelProfile, error) {
	cursor, err := r.users.Aggregate(ctx, channelProfilePipeline(username, viewerID))
	if err != nil {
		return nil, err
	}

	var docs []channelDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, domain.ErrChannelNotFound
	}
	return docs[0].toDomain(), nil
}

func (r *channelRepository) GetWatchHistory(ctx context.Context, userID uuid.UUID) ([]domain.WatchedVideo, error) {
	cursor, err := r.users.Aggregate(ctx, watchHistoryPipeline(userID))
	if err != nil {
		return nil, err
	}

	var docs []watchHistoryDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	history := []domain.WatchedVideo{}
	if len(docs) == 0 {
		return history, nil
	}
	for _, v := range orderByHistory(docs[0].WatchHistory, docs[0].Videos) {
		history = append(history, v.toDomain())
	}
	return history, nil
}
