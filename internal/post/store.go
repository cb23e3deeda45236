package post

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/AlexTsikhun/social-media-api/internal/database"
	"github.com/AlexTsikhun/social-media-api/internal/errs"
	"github.com/AlexTsikhun/social-media-api/internal/like"
	"github.com/AlexTsikhun/social-media-api/internal/target"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

type Filter struct {
	UserID string
	// Title matches case-insensitively anywhere in the title.
	Title string
	// PostDate keeps posts created on that calendar day (UTC).
	PostDate *time.Time
	Limit    int
	Offset   int
}

func (f Filter) apply(db *gorm.DB) *gorm.DB {
	tx := db.Model(&Post{})
	if f.UserID != "" {
		tx = tx.Where("user_id = ?", f.UserID)
	}
	if f.Title != "" {
		tx = tx.Where("title ILIKE ?", database.ContainsPattern(f.Title))
	}
	if f.PostDate != nil {
		day := time.Date(f.PostDate.Year(), f.PostDate.Month(), f.PostDate.Day(), 0, 0, 0, 0, time.UTC)
		tx = tx.Where("created_at >= ? AND created_at < ?", day, day.AddDate(0, 0, 1))
	}

	limit := f.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	offset := f.Offset
	if offset < 0 {
		offset = 0
	}
	return tx.Order("created_at DESC").Limit(limit).Offset(offset)
}

func List(db *gorm.DB, f Filter) ([]Post, error) {
	posts := []Post{}
	err := f.apply(db).Find(&posts).Error
	return posts, err
}

func Get(db *gorm.DB, id string) (*Post, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, errs.NotFound("Post not found")
	}

	var p Post
	if err := db.First(&p, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NotFound("Post not found")
		}
		return nil, err
	}
	return &p, nil
}

// Exists share-locks the post row, so a concurrent Delete waits for the caller's transaction.
func Exists(db *gorm.DB, id string) (bool, error) {
	ids, err := lockIDs(db, &Post{}, "SHARE", "id = ?", id)
	return len(ids) > 0, err
}

// lockIDs selects the ids of matching rows with a row lock of the given strength.
func lockIDs(db *gorm.DB, model interface{}, strength string, query string, args ...interface{}) ([]string, error) {
	ids := []string{}
	err := db.Model(model).
		Clauses(clause.Locking{Strength: strength}).
		Where(query, args...).
		Pluck("id", &ids).Error
	return ids, err
}

func CountByUser(db *gorm.DB, userID string) (int64, error) {
	var count int64
	err := db.Model(&Post{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}

func Create(db *gorm.DB, p *Post) error {
	if err := db.Create(p).Error; err != nil {
		return fmt.Errorf("create post: %w", err)
	}
	return nil
}

// Update writes fields and mirrors them onto p.
func Update(db *gorm.DB, p *Post, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	if err := db.Model(p).Updates(fields).Error; err != nil {
		return fmt.Errorf("update post: %w", err)
	}
	for k, v := range fields {
		s, _ := v.(string)
		switch k {
		case "title":
			p.Title = s
		case "content":
			p.Content = s
		case "image":
			p.Image = s
		}
	}
	return nil
}

// Delete removes p with its comments, the likes on those comments and the likes on p.
// Likes and comments reference their target generically, so nothing cascades in the store.
// The post and its comments are locked first so no like or comment can be attached mid-delete.
func Delete(db *gorm.DB, p *Post) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if _, err := lockIDs(tx, &Post{}, "UPDATE", "id = ?", p.ID); err != nil {
			return fmt.Errorf("lock post: %w", err)
		}
		commentIDs, err := lockIDs(tx, &Comment{}, "UPDATE", "target_type = ? AND target_id = ?", target.KindPost, p.ID)
		if err != nil {
			return fmt.Errorf("lock comments: %w", err)
		}

		if len(commentIDs) > 0 {
			if err := like.DeleteForTargets(tx, target.KindComment, commentIDs); err != nil {
				return fmt.Errorf("delete comment likes: %w", err)
			}
			if err := tx.Where("id IN ?", commentIDs).Delete(&Comment{}).Error; err != nil {
				return fmt.Errorf("delete comments: %w", err)
			}
		}
		if err := like.DeleteForTargets(tx, target.KindPost, []string{p.ID}); err != nil {
			return fmt.Errorf("delete post likes: %w", err)
		}
		if err := tx.Delete(p).Error; err != nil {
			return fmt.Errorf("delete post: %w", err)
		}
		return nil
	})
}

// RegisterTargets makes posts and comments likeable and commentable.
func RegisterTargets(reg *target.Registry) {
	reg.Register(target.KindPost, "Post not found", Exists)
	reg.Register(target.KindComment, "Comment not found", CommentExists)
}
