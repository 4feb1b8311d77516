package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"           json:"id"`
	Username     string    `gorm:"size:50;uniqueIndex;not null"   json:"username"`
	Email        string    `gorm:"size:255;uniqueIndex;not null"  json:"email"`
	PasswordHash string    `gorm:"not null"                       json:"-"`
	Role         string    `gorm:"size:16;not null"               json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

type RefreshToken struct {
	ID        uint      `gorm:"primaryKey"                 json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;index;not null"   json:"user_id"`
	JTI       string    `gorm:"size:64;uniqueIndex;not null" json:"jti"`
	TokenHash string    `gorm:"size:64;uniqueIndex;not null" json:"-"`
	ExpiresAt time.Time `gorm:"not null"                   json:"expires_at"`
	Revoked   bool      `gorm:"not null;default:false"     json:"revoked"`
	CreatedAt time.Time `json:"created_at"`
}
