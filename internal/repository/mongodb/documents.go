package mongodb

import (
	"time"

	"github.com/dom/videotube-backend/internal/domain"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// IDs are stored as their canonical UUID string.

type userDocument struct {
	ID           string    `bson:"_id"`
	Username     string    `bson:"username"`
	Email        string    `bson:"email"`
	FullName     string    `bson:"fullName"`
	Avatar       string    `bson:"avatar"`
	CoverImage   string    `bson:"coverImage,omitempty"`
	Password     string    `bson:"password"`
	RefreshToken string    `bson:"refreshToken"`
	WatchHistory []string  `bson:"watchHistory"`
	CreatedAt    time.Time `bson:"createdAt"`
	UpdatedAt    time.Time `bson:"updatedAt"`
}

func newUserDocument(u *domain.User) userDocument {
	history := make([]string, 0, len(u.WatchHistory))
	for _, id := range u.WatchHistory {
		history = append(history, id.String())
	}
	return userDocument{
		ID:           u.ID.String(),
		Username:     u.Username,
		Email:        u.Email,
		FullName:     u.FullName,
		Avatar:       u.Avatar,
		CoverImage:   u.CoverImage,
		Password:     u.PasswordHash,
		RefreshToken: u.RefreshToken,
		WatchHistory: history,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func (d userDocument) toDomain() *domain.User {
	history := make(datatypes.JSONSlice[uuid.UUID], 0, len(d.WatchHistory))
	for _, raw := range d.WatchHistory {
		if id, err := uuid.Parse(raw); err == nil {
			history = append(history, id)
		}
	}
	return &domain.User{
		ID:           parseID(d.ID),
		Username:     d.Username,
		Email:        d.Email,
		FullName:     d.FullName,
		Avatar:       d.Avatar,
		CoverImage:   d.CoverImage,
		PasswordHash: d.Password,
		RefreshToken: d.RefreshToken,
		WatchHistory: history,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

type channelDocument struct {
	ID               string `bson:"_id"`
	Username         string `bson:"username"`
	FullName         string `bson:"fullName"`
	Email            string `bson:"email"`
	Avatar           string `bson:"avatar"`
	CoverImage       string `bson:"coverImage"`
	SubscribersCount int64  `bson:"subscribersCount"`
	SubscribedCount  int64  `bson:"subscribedCount"`
	IsSubscribed     bool   `bson:"isSubscribed"`
}

func (d channelDocument) toDomain() *domain.ChannelProfile {
	return &domain.ChannelProfile{
		ID:               parseID(d.ID),
		Username:         d.Username,
		FullName:         d.FullName,
		Email:            d.Email,
		Avatar:           d.Avatar,
		CoverImage:       d.CoverImage,
		SubscribersCount: d.SubscribersCount,
		SubscribedCount:  d.SubscribedCount,
		IsSubscribed:     d.IsSubscribed,
	}
}

type ownerDocument struct {
	ID       string `bson:"_id"`
	Username string `bson:"username"`
	FullName string `bson:"fullName"`
	Avatar   string `bson:"avatar"`
}

type videoDocument struct {
	ID          string         `bson:"_id"`
	VideoFile   string         `bson:"videoFile"`
	Thumbnail   string         `bson:"thumbnail"`
	Title       string         `bson:"title"`
	Description string         `bson:"description"`
	Duration    float64        `bson:"duration"`
	Views       int64          `bson:"views"`
	IsPublished bool           `bson:"isPublished"`
	Owner       string         `bson:"owner"`
	OwnerInfo   *ownerDocument `bson:"ownerInfo,omitempty"`
	CreatedAt   time.Time      `bson:"createdAt"`
	UpdatedAt   time.Time      `bson:"updatedAt"`
}

func (d videoDocument) toDomain() domain.WatchedVideo {
	entry := domain.WatchedVideo{
		Video: domain.Video{
			ID:          parseID(d.ID),
			VideoFile:   d.VideoFile,
			Thumbnail:   d.Thumbnail,
			Title:       d.Title,
			Description: d.Description,
			Duration:    d.Duration,
			Views:       d.Views,
			IsPublished: d.IsPublished,
			OwnerID:     parseID(d.Owner),
			CreatedAt:   d.CreatedAt,
			UpdatedAt:   d.UpdatedAt,
		},
	}
	if d.OwnerInfo != nil {
		entry.Owner = &domain.VideoOwner{
			ID:       parseID(d.OwnerInfo.ID),
			Username: d.OwnerInfo.Username,
			FullName: d.OwnerInfo.FullName,
			Avatar:   d.OwnerInfo.Avatar,
		}
	}
	return entry
}

type watchHistoryDocument struct {
	WatchHistory []string        `bson:"watchHistory"`
	Videos       []videoDocument `bson:"videos"`
}

func parseID(raw string) uuid.UUID {
	id, _ := uuid.Parse(raw)
	return id
}

func mediaKey(field domain.MediaField) string {
	if field == domain.MediaCoverImage {
		return "coverImage"
	}
	return "avatar"
}
