package user

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID        string    `gorm:"primaryKey;type:uuid" json:"id"` // token subject from the identity provider
	Username  string    `gorm:"size:150;not null;uniqueIndex:uq_users_username" json:"username"`
	Email     string    `gorm:"size:254;not null" json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// Profile is created together with its User and never on its own.
type Profile struct {
	ID        string    `gorm:"primaryKey;type:uuid" json:"id"`
	UserID    string    `gorm:"type:uuid;not null;uniqueIndex:uq_profiles_user" json:"user_id"`
	Bio       string    `gorm:"size:255;not null" json:"bio"`
	Avatar    string    `gorm:"not null" json:"avatar"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (p *Profile) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}
