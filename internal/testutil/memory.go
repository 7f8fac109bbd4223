package testutil

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/dom/videotube-backend/internal/domain"
	"github.com/dom/videotube-backend/internal/repository"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// MemoryStore is an in-process store implementing every repository interface.
type MemoryStore struct {
	mu            sync.RWMutex
	users         map[uuid.UUID]*domain.User
	videos        map[uuid.UUID]domain.Video
	subscriptions []domain.Subscription
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:  make(map[uuid.UUID]*domain.User),
		videos: make(map[uuid.UUID]domain.Video),
	}
}

func (m *MemoryStore) Repositories() *repository.Repositories {
	return &repository.Repositories{User: m, Channel: m, Health: m}
}

func cloneUser(u *domain.User) *domain.User {
	c := *u
	c.WatchHistory = slices.Clone(u.WatchHistory)
	if c.WatchHistory == nil {
		c.WatchHistory = datatypes.JSONSlice[uuid.UUID]{}
	}
	return &c
}

func (m *MemoryStore) Create(_ context.Context, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if u.Username == user.Username || u.Email == user.Email {
			return domain.ErrDuplicateUser
		}
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
		user.UpdatedAt = user.CreatedAt
	}
	m.users[user.ID] = cloneUser(user)
	return nil
}

func (m *MemoryStore) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (m *MemoryStore) FindByUsernameOrEmail(_ context.Context, username, email string) (*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var found *domain.User
	for _, u := range m.users {
		if u.Username != username && u.Email != email {
			continue
		}
		if found == nil || u.CreatedAt.Before(found.CreatedAt) {
			found = u
		}
	}
	if found == nil {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(found), nil
}

func (m *MemoryStore) SetRefreshToken(_ context.Context, id uuid.UUID, token string) error {
	return m.update(id, func(u *domain.User) { u.RefreshToken = token })
}

func (m *MemoryStore) SetPasswordHash(_ context.Context, id uuid.UUID, hash string) error {
	return m.update(id, func(u *domain.User) { u.PasswordHash = hash })
}

func (m *MemoryStore) SetMedia(_ context.Context, id uuid.UUID, field domain.MediaField, url string) (*domain.User, error) {
	err := m.update(id, func(u *domain.User) {
		if field == domain.MediaCoverImage {
			u.CoverImage = url
		} else {
			u.Avatar = url
		}
	})
	if err != nil {
		return nil, err
	}
	return m.GetByID(context.Background(), id)
}

func (m *MemoryStore) update(id uuid.UUID, fn func(*domain.User)) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	fn(u)
	u.UpdatedAt = time.Now()
	return nil
}

func (m *MemoryStore) GetChannelProfile(_ context.Context, username string, viewerID uuid.UUID) (*domain.ChannelProfile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var channel *domain.User
	for _, u := range m.users {
		if u.Username == username {
			channel = u
			break
		}
	}
	if channel == nil {
		return nil, domain.ErrChannelNotFound
	}

	profile := &domain.ChannelProfile{
		ID:         channel.ID,
		Username:   channel.Username,
		FullName:   channel.FullName,
		Email:      channel.Email,
		Avatar:     channel.Avatar,
		CoverImage: channel.CoverImage,
	}
	for _, s := range m.subscriptions {
		if s.ChannelID == channel.ID {
			profile.SubscribersCount++
			if viewerID != uuid.Nil && s.SubscriberID == viewerID {
				profile.IsSubscribed = true
			}
		}
		if s.SubscriberID == channel.ID {
			profile.SubscribedCount++
		}
	}
	return profile, nil
}

func (m *MemoryStore) GetWatchHistory(_ context.Context, userID uuid.UUID) ([]domain.WatchedVideo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	history := []domain.WatchedVideo{}
	u, ok := m.users[userID]
	if !ok {
		return history, nil
	}

	for _, id := range u.WatchHistory {
		v, ok := m.videos[id]
		if !ok {
			continue
		}
		entry := domain.WatchedVideo{Video: v}
		if owner, ok := m.users[v.OwnerID]; ok {
			entry.Owner = &domain.VideoOwner{
				ID:       owner.ID,
				Username: owner.Username,
				FullName: owner.FullName,
				Avatar:   owner.Avatar,
			}
		}
		history = append(history, entry)
	}
	return history, nil
}

func (m *MemoryStore) Ping(context.Context) error {
	return nil
}

// AddVideo stores a published video owned by ownerID
func (m *MemoryStore) AddVideo(ownerID uuid.UUID, title string) uuid.UUID {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	v := domain.Video{
		ID:          uuid.New(),
		VideoFile:   "https://cdn.test/" + title + ".mp4",
		Thumbnail:   "https://cdn.test/" + title + ".png",
		Title:       title,
		IsPublished: true,
		OwnerID:     ownerID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	m.videos[v.ID] = v
	return v.ID
}

// Subscribe records subscriber following channel
func (m *MemoryStore) Subscribe(subscriber, channel uuid.UUID) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.subscriptions = append(m.subscriptions, domain.Subscription{
		ID:           uuid.New(),
		SubscriberID: subscriber,
		ChannelID:    channel,
		CreatedAt:    time.Now(),
	})
}

// SetWatchHistory overwrites the user's watch history
func (m *MemoryStore) SetWatchHistory(userID uuid.UUID, videoIDs ...uuid.UUID) {
	_ = m.update(userID, func(u *domain.User) {
		u.WatchHistory = datatypes.JSONSlice[uuid.UUID](slices.Clone(videoIDs))
	})
}
