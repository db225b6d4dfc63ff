// Package driverauth authenticates driver devices by API key. Keys are
// stored hashed; lookup is by hash with a constant-time confirmation.
package driverauth

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

var ErrUnauthorized = errors.New("unauthorized")

type DriverCredential struct {
	ID       snowflake.ID `gorm:"primaryKey" json:"id"`
	DriverID string       `gorm:"not null;index" json:"driver_id"`
	Name     string       `json:"name"`
	KeyHash  string       `gorm:"not null;uniqueIndex" json:"-"`
	Active   bool         `gorm:"not null;default:true" json:"active"`

	CreatedAt  time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	LastUsedAt *time.Time `json:"last_used_at,omitempty"`
}

func (DriverCredential) TableName() string { return "driver_credentials" }

func HashKey(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}

// Authenticate resolves a bearer token to the driver it belongs to.
func Authenticate(ctx context.Context, db *gorm.DB, token string) (string, error) {
	if token == "" {
		return "", ErrUnauthorized
	}
	hash := HashKey(token)

	var cred DriverCredential
	err := db.WithContext(ctx).
		Where("key_hash = ? AND active = ?", hash, true).
		First(&cred).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", ErrUnauthorized
	}
	if err != nil {
		return "", err
	}
	if subtle.ConstantTimeCompare([]byte(cred.KeyHash), []byte(hash)) != 1 {
		return "", ErrUnauthorized
	}

	now := time.Now().UTC()
	_ = db.WithContext(ctx).
		Model(&DriverCredential{}).
		Where("id = ?", cred.ID).
		Update("last_used_at", now).Error

	return cred.DriverID, nil
}
