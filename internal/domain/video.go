package domain

import (
	"time"

	"github.com/google/uuid"
)

// Video and Subscription are owned by other services; this backend only reads them.

type Video struct {
	ID          uuid.UUID `json:"_id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	VideoFile   string    `json:"videoFile" gorm:"not null"`
	Thumbnail   string    `json:"thumbnail" gorm:"not null"`
	Title       string    `json:"title" gorm:"not null"`
	Description string    `json:"description"`
	Duration    float64   `json:"duration"`
	Views       int64     `json:"views" gorm:"not null;default:0"`
	IsPublished bool      `json:"isPublished" gorm:"not null;default:true"`
	OwnerID     uuid.UUID `json:"ownerId" gorm:"type:uuid;not null;index"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type Subscription struct {
	ID           uuid.UUID `json:"_id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	SubscriberID uuid.UUID `json:"subscriber" gorm:"type:uuid;not null;index"`
	ChannelID    uuid.UUID `json:"channel" gorm:"type:uuid;not null;index"`
	CreatedAt    time.Time `json:"createdAt"`
}

// VideoOwner is the public slice of a user embedded into watch history entries.
type VideoOwner struct {
	ID       uuid.UUID `json:"_id"`
	Username string    `json:"username"`
	FullName string    `json:"fullName"`
	Avatar   string    `json:"avatar"`
}

type WatchedVideo struct {
	Video
	Owner *VideoOwner `json:"owner"`
}

// ChannelProfile is the public view of a user as a channel.
type ChannelProfile struct {
	ID               uuid.UUID `json:"_id"`
	Username         string    `json:"username"`
	FullName         string    `json:"fullName"`
	Email            string    `json:"email"`
	Avatar           string    `json:"avatar"`
	CoverImage       string    `json:"coverImage"`
	SubscribersCount int64     `json:"subscribersCount"`
	SubscribedCount  int64     `json:"subscribedCount"`
	IsSubscribed     bool      `json:"isSubscribed"`
}
