package post

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/AlexTsikhun/social-media-api/internal/database"
	"github.com/AlexTsikhun/social-media-api/internal/errs"
	"github.com/AlexTsikhun/social-media-api/internal/like"
	"github.com/AlexTsikhun/social-media-api/internal/target"
)

const msgBlankComment = "This field may not be blank."

// Comment points at any registered target; the API only creates comments on posts.
type Comment struct {
	ID         string      `json:"id" gorm:"primaryKey;type:uuid"`
	UserID     string      `json:"user_id" gorm:"type:uuid;not null;index"`
	TargetType target.Kind `json:"target_type" gorm:"size:32;not null;index:idx_comments_target"`
	TargetID   string      `json:"target_id" gorm:"type:uuid;not null;index:idx_comments_target"`
	Text       string      `json:"comment_text" gorm:"column:comment_text;type:text;not null"`
	CreatedAt  time.Time   `json:"created_at"`
}

func (c *Comment) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

func (c Comment) OwnerID() string {
	return c.UserID
}

// CommentView is a comment with its author's username.
type CommentView struct {
	ID          string      `json:"id"`
	User        string      `json:"user"`
	TargetType  target.Kind `json:"target_type"`
	TargetID    string      `json:"target_id"`
	PostTitle   string      `json:"post_title,omitempty"`
	CommentText string      `json:"comment_text"`
	CreatedAt   time.Time   `json:"created_at"`
}

// AddComment checks the target first, then the text. The target stays locked until the insert commits.
func AddComment(db *gorm.DB, reg *target.Registry, ref target.Ref, userID, text string) (*Comment, error) {
	cm := &Comment{UserID: userID, TargetType: ref.Kind, TargetID: ref.ID, Text: strings.TrimSpace(text)}

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := reg.Resolve(tx, ref); err != nil {
			return err
		}
		if cm.Text == "" {
			return errs.Field("comment_text", msgBlankComment)
		}
		if err := tx.Create(cm).Error; err != nil {
			return fmt.Errorf("create comment: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return cm, nil
}

func CommentExists(db *gorm.DB, id string) (bool, error) {
	ids, err := lockIDs(db, &Comment{}, "SHARE", "id = ?", id)
	return len(ids) > 0, err
}

func GetComment(db *gorm.DB, id string) (*Comment, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, errs.NotFound("Comment not found")
	}

	var cm Comment
	if err := db.First(&cm, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NotFound("Comment not found")
		}
		return nil, err
	}
	return &cm, nil
}

func commentViews(db *gorm.DB) *gorm.DB {
	return db.Table("comments AS c").
		Select("c.id, u.username AS user, c.target_type, c.target_id, c.comment_text, c.created_at").
		Joins("JOIN users u ON u.id = c.user_id")
}

// ListComments returns the comments on ref, oldest first.
func ListComments(db *gorm.DB, ref target.Ref) ([]CommentView, error) {
	views := []CommentView{}
	err := commentViews(db).
		Where("c.target_type = ? AND c.target_id = ?", ref.Kind, ref.ID).
		Order("c.created_at").
		Scan(&views).Error
	return views, err
}

// ListUserComments returns userID's comments, newest first, optionally
// filtered on the commented post's title.
func ListUserComments(db *gorm.DB, userID, postTitle string) ([]CommentView, error) {
	tx := db.Table("comments AS c").
		Select("c.id, u.username AS user, c.target_type, c.target_id, COALESCE(p.title, '') AS post_title, c.comment_text, c.created_at").
		Joins("JOIN users u ON u.id = c.user_id").
		Joins("LEFT JOIN posts p ON c.target_type = ? AND p.id = c.target_id", target.KindPost).
		Where("c.user_id = ?", userID)
	if postTitle != "" {
		tx = tx.Where("p.title ILIKE ?", database.ContainsPattern(postTitle))
	}

	views := []CommentView{}
	err := tx.Order("c.created_at DESC").Scan(&views).Error
	return views, err
}

func CountComments(db *gorm.DB, kind target.Kind, ids []string) (map[string]int64, error) {
	out := make(map[string]int64, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	var rows []struct {
		TargetID string
		Total    int64
	}
	err := db.Model(&Comment{}).
		Select("target_id, count(*) AS total").
		Where("target_type = ? AND target_id IN ?", kind, ids).
		Group("target_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, r := range rows {
		out[r.TargetID] = r.Total
	}
	return out, nil
}

// DeleteComment removes cm and the likes attached to it.
func DeleteComment(db *gorm.DB, cm *Comment) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if _, err := lockIDs(tx, &Comment{}, "UPDATE", "id = ?", cm.ID); err != nil {
			return fmt.Errorf("lock comment: %w", err)
		}
		if err := like.DeleteForTargets(tx, target.KindComment, []string{cm.ID}); err != nil {
			return fmt.Errorf("delete comment likes: %w", err)
		}
		if err := tx.Delete(cm).Error; err != nil {
			return fmt.Errorf("delete comment: %w", err)
		}
		return nil
	})
}
