package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/text/unicode/norm"
	"gorm.io/datatypes"
)

type User struct {
	ID           uuid.UUID                      `json:"_id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Username     string                         `json:"username" gorm:"uniqueIndex;not null"`
	Email        string                         `json:"email" gorm:"uniqueIndex;not null"`
	FullName     string                         `json:"fullName" gorm:"not null;index"`
	Avatar       string                         `json:"avatar" gorm:"not null"`
	CoverImage   string                         `json:"coverImage"`
	PasswordHash string                         `json:"-" gorm:"not null"`
	RefreshToken string                         `json:"-" gorm:"not null;default:''"`
	WatchHistory datatypes.JSONSlice[uuid.UUID] `json:"watchHistory" gorm:"type:jsonb;not null;default:'[]'"`
	CreatedAt    time.Time                      `json:"createdAt"`
	UpdatedAt    time.Time                      `json:"updatedAt"`
}

// MaxPasswordBytes is the longest secret bcrypt will hash.
const MaxPasswordBytes = 72

// PasswordTooLong reports whether password exceeds what bcrypt accepts.
func PasswordTooLong(password string) bool {
	return len(password) > MaxPasswordBytes
}

// SetPassword replaces the stored secret with the bcrypt hash of password.
func (u *User) SetPassword(password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hash)
	return nil
}

func (u *User) PasswordMatches(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// HasSession reports whether token is the refresh token currently on record.
func (u *User) HasSession(token string) bool {
	return u.RefreshToken != "" && u.RefreshToken == token
}

// NormalizeUsername folds a username to its stored form: NFKC, trimmed,
// lower-cased. Compatibility forms such as fullwidth letters collapse onto
// their plain equivalents.
func NormalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(norm.NFKC.String(username)))
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(norm.NFKC.String(email)))
}

// MediaField names a user profile media slot.
type MediaField string

const (
	MediaAvatar     MediaField = "avatar"
	MediaCoverImage MediaField = "cover_image"
)
