package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"testing"
	"time"

	"github.com/dom/videotube-backend/internal/domain"
	"github.com/dom/videotube-backend/internal/repository"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// UserBuilder creates test users with a builder pattern
type UserBuilder struct {
	username string
	email    string
	fullName string
	password string
}

// NewUserBuilder creates a new UserBuilder with default values
func NewUserBuilder() *UserBuilder {
	username := fmt.Sprintf("user_%s", uuid.New().String()[:8])
	return &UserBuilder{
		username: username,
		email:    username + "@example.com",
		fullName: "Test User",
		password: "testpassword123",
	}
}

// WithUsername sets the username and derives a matching email
func (b *UserBuilder) WithUsername(username string) *UserBuilder {
	b.username = username
	b.email = username + "@example.com"
	return b
}

func (b *UserBuilder) WithEmail(email string) *UserBuilder {
	b.email = email
	return b
}

// WithPassword sets the password
func (b *UserBuilder) WithPassword(password string) *UserBuilder {
	b.password = password
	return b
}

// Build stores the user through repo and returns it with the raw password
func (b *UserBuilder) Build(t *testing.T, repo repository.UserRepository) (*domain.User, string) {
	t.Helper()

	now := time.Now().UTC().Truncate(time.Microsecond)
	user := &domain.User{
		ID:           uuid.New(),
		Username:     domain.NormalizeUsername(b.username),
		Email:        domain.NormalizeEmail(b.email),
		FullName:     b.fullName,
		Avatar:       "https://cdn.test/image/" + b.username + ".png",
		WatchHistory: datatypes.JSONSlice[uuid.UUID]{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := user.SetPassword(b.password); err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	if err := repo.Create(context.Background(), user); err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	return user, b.password
}

// RegisterForm returns the multipart fields for registering this user
func (b *UserBuilder) RegisterForm() map[string]string {
	return map[string]string{
		"username": b.username,
		"email":    b.email,
		"fullName": b.fullName,
		"password": b.password,
	}
}

// LoginBody returns the JSON login body for this user
func (b *UserBuilder) LoginBody() map[string]string {
	return map[string]string{
		"username": b.username,
		"email":    b.email,
		"password": b.password,
	}
}

// CreateVideo inserts a published video owned by ownerID
func CreateVideo(t *testing.T, db *gorm.DB, ownerID uuid.UUID, title string) *domain.Video {
	t.Helper()

	video := &domain.Video{
		ID:          uuid.New(),
		VideoFile:   "https://cdn.test/video/" + title + ".mp4",
		Thumbnail:   "https://cdn.test/image/" + title + ".png",
		Title:       title,
		Duration:    60,
		IsPublished: true,
		OwnerID:     ownerID,
	}
	if err := db.Create(video).Error; err != nil {
		t.Fatalf("failed to create video: %v", err)
	}
	return video
}

// Subscribe inserts a subscription of subscriber to channel
func Subscribe(t *testing.T, db *gorm.DB, subscriber, channel uuid.UUID) {
	t.Helper()

	sub := &domain.Subscription{ID: uuid.New(), SubscriberID: subscriber, ChannelID: channel}
	if err := db.Create(sub).Error; err != nil {
		t.Fatalf("failed to create subscription: %v", err)
	}
}

// SetWatchHistory overwrites a user's watch history column
func SetWatchHistory(t *testing.T, db *gorm.DB, userID uuid.UUID, videoIDs ...uuid.UUID) {
	t.Helper()

	err := db.Model(&domain.User{}).Where("id = ?", userID).
		Update("watch_history", datatypes.JSONSlice[uuid.UUID](videoIDs)).Error
	if err != nil {
		t.Fatalf("failed to set watch history: %v", err)
	}
}

// FileField is one file part of a multipart request
type FileField struct {
	Field    string
	Filename string
	Content  []byte
}

// PNGBytes is a minimal PNG header, enough for content sniffing
var PNGBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

// NewMultipartRequest builds a multipart/form-data request
func NewMultipartRequest(t *testing.T, method, url string, fields map[string]string, files ...FileField) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("failed to write field: %v", err)
		}
	}
	for _, f := range files {
		part, err := mw.CreateFormFile(f.Field, f.Filename)
		if err != nil {
			t.Fatalf("failed to create form file: %v", err)
		}
		if _, err := part.Write(f.Content); err != nil {
			t.Fatalf("failed to write form file: %v", err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("failed to close multipart writer: %v", err)
	}

	req, err := http.NewRequestWithContext(context.Background(), method, url, &buf)
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

// NewJSONRequest creates an HTTP request with a JSON body and optional bearer token
func NewJSONRequest(t *testing.T, method, url string, body interface{}, token string) *http.Request {
	t.Helper()

	bodyReader := bytes.NewBuffer(nil)
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
		bodyReader = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequestWithContext(context.Background(), method, url, bodyReader)
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return req
}

// Do sends req with the default client and fails the test on transport errors
func Do(t *testing.T, req *http.Request) *http.Response {
	t.Helper()

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

// Tokens holds the token pair returned by login
type Tokens struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// Login logs the user in through the API and returns the issued tokens
func (b *UserBuilder) Login(t *testing.T, ts *TestServer) Tokens {
	t.Helper()

	resp := Do(t, NewJSONRequest(t, http.MethodPost, ts.APIURL("/user/login"), b.LoginBody(), ""))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login failed with status %d", resp.StatusCode)
	}

	var env struct {
		Data Tokens `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatalf("failed to decode login response: %v", err)
	}
	return env.Data
}
