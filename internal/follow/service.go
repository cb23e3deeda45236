package follow

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/AlexTsikhun/social-media-api/internal/database"
	"github.com/AlexTsikhun/social-media-api/internal/errs"
	"github.com/AlexTsikhun/social-media-api/internal/user"
)

// Create makes followerID follow followedID.
func Create(db *gorm.DB, followerID, followedID string) (*Follow, error) {
	if followerID == followedID {
		return nil, errs.ErrSelfFollow
	}

	exists, err := user.ExistsByID(db, followedID)
	if err != nil {
		return nil, fmt.Errorf("lookup followed user: %w", err)
	}
	if !exists {
		return nil, errs.NotFound("User not found")
	}

	f := &Follow{FollowerID: followerID, FollowedID: followedID}
	if err := db.Create(f).Error; err != nil {
		switch {
		case database.IsUniqueViolation(err):
			return nil, errs.ErrAlreadyFollowing
		case database.IsCheckViolation(err):
			return nil, errs.ErrSelfFollow
		}
		return nil, fmt.Errorf("create follow: %w", err)
	}
	return f, nil
}

func Delete(db *gorm.DB, followerID, followedID string) error {
	res := db.Where("follower_id = ? AND followed_id = ?", followerID, followedID).Delete(&Follow{})
	if res.Error != nil {
		return fmt.Errorf("delete follow: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return errs.ErrNotFollowing
	}
	return nil
}

func IsFollowing(db *gorm.DB, followerID, followedID string) (bool, error) {
	var f Follow
	err := db.Where("follower_id = ? AND followed_id = ?", followerID, followedID).First(&f).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Counts returns how many users follow userID and how many userID follows.
func Counts(db *gorm.DB, userID string) (followers, following int64, err error) {
	if err = db.Model(&Follow{}).Where("followed_id = ?", userID).Count(&followers).Error; err != nil {
		return 0, 0, err
	}
	if err = db.Model(&Follow{}).Where("follower_id = ?", userID).Count(&following).Error; err != nil {
		return 0, 0, err
	}
	return followers, following, nil
}

// Query scopes edge listings to one user and one side.
type Query struct {
	Side    Side
	OwnerID string
	// Username filters on the far end of the edge (case-insensitive substring).
	Username string
}

func (q Query) scope(db *gorm.DB) *gorm.DB {
	tx := db.Table("follows AS f").
		Select("f.id, f.follower_id, fr.username AS follower, f.followed_id, fd.username AS followed, f.created_at").
		Joins("JOIN users fr ON fr.id = f.follower_id").
		Joins("JOIN users fd ON fd.id = f.followed_id")

	if q.Side == Followers {
		tx = tx.Where("f.followed_id = ?", q.OwnerID)
		if q.Username != "" {
			tx = tx.Where("fr.username ILIKE ?", database.ContainsPattern(q.Username))
		}
		return tx
	}

	tx = tx.Where("f.follower_id = ?", q.OwnerID)
	if q.Username != "" {
		tx = tx.Where("fd.username ILIKE ?", database.ContainsPattern(q.Username))
	}
	return tx
}

func ListEdges(db *gorm.DB, q Query) ([]Edge, error) {
	edges := []Edge{}
	err := q.scope(db).Order("f.created_at DESC").Scan(&edges).Error
	return edges, err
}

func GetEdge(db *gorm.DB, q Query, id string) (*Edge, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, errs.NotFound("Not found.")
	}

	var edges []Edge
	if err := q.scope(db).Where("f.id = ?", id).Limit(1).Scan(&edges).Error; err != nil {
		return nil, err
	}
	if len(edges) == 0 {
		return nil, errs.NotFound("Not found.")
	}
	return &edges[0], nil
}

func DeleteEdge(db *gorm.DB, id string) error {
	return db.Where("id = ?", id).Delete(&Follow{}).Error
}
