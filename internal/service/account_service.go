package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/dom/videotube-backend/internal/apperr"
	"github.com/dom/videotube-backend/internal/domain"
	"github.com/dom/videotube-backend/internal/media"
	"github.com/dom/videotube-backend/internal/repository"
	"github.com/google/uuid"
)

type AccountService struct {
	userRepo    repository.UserRepository
	channelRepo repository.ChannelRepository
	relay       media.Relay
	log         *slog.Logger
}

func NewAccountService(userRepo repository.UserRepository, channelRepo repository.ChannelRepository, relay media.Relay, log *slog.Logger) *AccountService {
	return &AccountService{
		userRepo:    userRepo,
		channelRepo: channelRepo,
		relay:       relay,
		log:         log,
	}
}

// GetCurrentUser reloads the user record for an authenticated identity
func (s *AccountService) GetCurrentUser(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, apperr.NotFound("User not found")
		}
		return nil, apperr.Internal("Something went wrong while fetching user", err)
	}
	return user, nil
}

func (s *AccountService) UpdateAvatar(ctx context.Context, user *domain.User, localPath string) (*domain.User, error) {
	return s.updateMedia(ctx, user, domain.MediaAvatar, localPath, "Avatar")
}

func (s *AccountService) UpdateCoverImage(ctx context.Context, user *domain.User, localPath string) (*domain.User, error) {
	return s.updateMedia(ctx, user, domain.MediaCoverImage, localPath, "Cover image")
}

func (s *AccountService) updateMedia(ctx context.Context, user *domain.User, field domain.MediaField, localPath, label string) (*domain.User, error) {
	if user == nil {
		return nil, ErrUnauthorized
	}
	if localPath == "" {
		return nil, apperr.Validation(label + " is required")
	}

	asset, err := s.relay.Upload(ctx, localPath)
	if err != nil || asset == nil || asset.URL == "" {
		return nil, apperr.Internal("Error uploading "+strings.ToLower(label), err)
	}

	updated, err := s.userRepo.SetMedia(ctx, user.ID, field, asset.URL)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, apperr.NotFound("User not found")
		}
		return nil, apperr.Internal("Something went wrong while updating "+strings.ToLower(label), err)
	}

	s.log.InfoContext(ctx, "profile media updated", "user_id", user.ID, "field", field, "key", asset.Key)
	return updated, nil
}

func (s *AccountService) GetChannelProfile(ctx context.Context, username string, viewer *domain.User) (*domain.ChannelProfile, error) {
	username = domain.NormalizeUsername(username)
	if username == "" {
		return nil, apperr.Validation("Username is missing")
	}

	var viewerID uuid.UUID
	if viewer != nil {
		viewerID = viewer.ID
	}

	profile, err := s.channelRepo.GetChannelProfile(ctx, username, viewerID)
	if err != nil {
		if errors.Is(err, domain.ErrChannelNotFound) {
			return nil, apperr.NotFound("Channel does not exist")
		}
		return nil, apperr.Internal("Something went wrong while fetching channel", err)
	}
	return profile, nil
}

func (s *AccountService) GetWatchHistory(ctx context.Context, user *domain.User) ([]domain.WatchedVideo, error) {
	if user == nil {
		return nil, ErrUnauthorized
	}

	history, err := s.channelRepo.GetWatchHistory(ctx, user.ID)
	if err != nil {
		return nil, apperr.Internal("Something went wrong while fetching watch history", err)
	}
	return history, nil
}
