package service

import (
	"log/slog"

	"github.com/dom/videotube-backend/internal/config"
	"github.com/dom/videotube-backend/internal/media"
	"github.com/dom/videotube-backend/internal/repository"
)

type Services struct {
	Auth    *AuthService
	Account *AccountService
}

func NewServices(repos *repository.Repositories, relay media.Relay, cfg *config.Config, log *slog.Logger) *Services {
	return &Services{
		Auth:    NewAuthService(repos.User, relay, cfg, log),
		Account: NewAccountService(repos.User, repos.Channel, relay, log),
	}
}
