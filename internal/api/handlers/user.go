package handlers

import (
	"context"
	"net/http"

	"github.com/dom/videotube-backend/internal/api/middleware"
	"github.com/dom/videotube-backend/internal/api/respond"
	"github.com/dom/videotube-backend/internal/config"
	"github.com/dom/videotube-backend/internal/domain"
	"github.com/dom/videotube-backend/internal/media"
	"github.com/dom/videotube-backend/internal/service"
	"github.com/go-chi/chi/v5"
)

type UserHandler struct {
	auth    *service.AuthService
	account *service.AccountService
	cfg     *config.Config
}

func NewUserHandler(auth *service.AuthService, account *service.AccountService, cfg *config.Config) *UserHandler {
	return &UserHandler{auth: auth, account: account, cfg: cfg}
}

type LoginRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	User         *domain.User `json:"user"`
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type TokenResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

type UserResponse struct {
	User *domain.User `json:"user"`
}

type WatchHistoryResponse struct {
	WatchHistory []domain.WatchedVideo `json:"watchHistory"`
}

func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	if err := parseMultipart(w, r, 2*h.cfg.MaxUploadBytes+h.cfg.MaxBodyBytes, h.cfg.MaxUploadBytes); err != nil {
		respond.Error(w, r, err)
		return
	}
	defer r.MultipartForm.RemoveAll()

	avatarPath, err := stageUpload(r, h.cfg.UploadDir, "avatar")
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	coverPath, err := stageUpload(r, h.cfg.UploadDir, "coverImage")
	defer media.Discard(avatarPath, coverPath)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	user, err := h.auth.Register(r.Context(), service.RegisterInput{
		Username:   r.FormValue("username"),
		Email:      r.FormValue("email"),
		FullName:   r.FormValue("fullName"),
		Password:   r.FormValue("password"),
		AvatarPath: avatarPath,
		CoverPath:  coverPath,
	})
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.Created(w, user, "User registered successfully")
}

func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(w, r, h.cfg.MaxBodyBytes, &req, false); err != nil {
		respond.Error(w, r, err)
		return
	}

	result, err := h.auth.Login(r.Context(), service.LoginInput{
		Email:    req.Email,
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	h.setAuthCookies(w, result.AccessToken, result.RefreshToken)
	respond.OK(w, LoginResponse{
		User:         result.User,
		AccessToken:  result.AccessToken,
		RefreshToken: result.RefreshToken,
	}, "User logged in successfully")
}

func (h *UserHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.auth.Logout(r.Context(), middleware.CurrentUser(r.Context())); err != nil {
		respond.Error(w, r, err)
		return
	}

	h.clearAuthCookies(w)
	respond.OK(w, nil, "User logged out successfully")
}

// RefreshToken accepts the token from the refreshToken cookie or the JSON body.
func (h *UserHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var token string
	if c, err := r.Cookie(refreshTokenCookie); err == nil {
		token = c.Value
	}
	if token == "" {
		var req RefreshRequest
		if err := decodeJSON(w, r, h.cfg.MaxBodyBytes, &req, true); err != nil {
			respond.Error(w, r, err)
			return
		}
		token = req.RefreshToken
	}

	result, err := h.auth.RefreshTokens(r.Context(), token)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	h.setAuthCookies(w, result.AccessToken, result.RefreshToken)
	respond.OK(w, TokenResponse{
		AccessToken:  result.AccessToken,
		RefreshToken: result.RefreshToken,
	}, "Token refreshed successfully")
}

func (h *UserHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req ChangePasswordRequest
	if err := decodeJSON(w, r, h.cfg.MaxBodyBytes, &req, false); err != nil {
		respond.Error(w, r, err)
		return
	}

	err := h.auth.ChangePassword(r.Context(), middleware.CurrentUser(r.Context()), service.ChangePasswordInput{
		CurrentPassword: req.CurrentPassword,
		NewPassword:     req.NewPassword,
	})
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.OK(w, nil, "Password updated successfully")
}

func (h *UserHandler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	user := middleware.CurrentUser(r.Context())
	if user == nil {
		respond.Error(w, r, service.ErrUnauthorized)
		return
	}

	user, err := h.account.GetCurrentUser(r.Context(), user.ID)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.OK(w, user, "User details fetched successfully")
}

func (h *UserHandler) UpdateAvatar(w http.ResponseWriter, r *http.Request) {
	h.updateMedia(w, r, "avatar", h.account.UpdateAvatar, "Avatar updated successfully")
}

func (h *UserHandler) UpdateCoverImage(w http.ResponseWriter, r *http.Request) {
	h.updateMedia(w, r, "coverImage", h.account.UpdateCoverImage, "Cover image updated successfully")
}

type mediaUpdater func(ctx context.Context, user *domain.User, localPath string) (*domain.User, error)

func (h *UserHandler) updateMedia(w http.ResponseWriter, r *http.Request, field string, update mediaUpdater, message string) {
	if err := parseMultipart(w, r, h.cfg.MaxUploadBytes+h.cfg.MaxBodyBytes, h.cfg.MaxUploadBytes); err != nil {
		respond.Error(w, r, err)
		return
	}
	defer r.MultipartForm.RemoveAll()

	path, err := stageUpload(r, h.cfg.UploadDir, field)
	defer media.Discard(path)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	user, err := update(r.Context(), middleware.CurrentUser(r.Context()), path)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.OK(w, UserResponse{User: user}, message)
}

func (h *UserHandler) ChannelProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := h.account.GetChannelProfile(r.Context(), chi.URLParam(r, "username"), middleware.CurrentUser(r.Context()))
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.OK(w, profile, "Channel profile fetched successfully")
}

func (h *UserHandler) WatchHistory(w http.ResponseWriter, r *http.Request) {
	history, err := h.account.GetWatchHistory(r.Context(), middleware.CurrentUser(r.Context()))
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.OK(w, WatchHistoryResponse{WatchHistory: history}, "Watch history fetched successfully")
}
