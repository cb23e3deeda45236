package like

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/AlexTsikhun/social-media-api/internal/target"
)

type Like struct {
	ID         string      `json:"id" gorm:"primaryKey;type:uuid"`
	UserID     string      `json:"user_id" gorm:"type:uuid;not null;uniqueIndex:uq_likes_user_target"`
	TargetType target.Kind `json:"target_type" gorm:"size:32;not null;uniqueIndex:uq_likes_user_target"`
	TargetID   string      `json:"target_id" gorm:"type:uuid;not null;uniqueIndex:uq_likes_user_target"`
	CreatedAt  time.Time   `json:"created_at"`
}

func (Like) TableName() string {
	return "likes"
}

func (l *Like) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	return nil
}

// View is a like as shown inside a post detail.
type View struct {
	ID        string    `json:"id"`
	User      string    `json:"user"`
	CreatedAt time.Time `json:"created_at"`
}

// Fan is a user who liked a target.
type Fan struct {
	ID       string    `json:"id"`
	Username string    `json:"username"`
	LikedAt  time.Time `json:"liked_at"`
}

type Result string

const (
	Added   Result = "added"
	Removed Result = "removed"
)

func (r Result) Message() string {
	if r == Added {
		return "Like added successfully"
	}
	return "Like removed successfully"
}
