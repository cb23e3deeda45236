package like

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/AlexTsikhun/social-media-api/internal/database"
	"github.com/AlexTsikhun/social-media-api/internal/target"
)

// Toggle removes the user's like on ref if there is one, otherwise adds it.
// A concurrent insert that wins the unique constraint is undone, so two
// toggles always cancel out. The target stays locked until the change commits.
func Toggle(db *gorm.DB, reg *target.Registry, ref target.Ref, userID string) (Result, error) {
	var result Result
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := reg.Resolve(tx, ref); err != nil {
			return err
		}

		removed, err := remove(tx, ref, userID)
		if err != nil {
			return err
		}
		if removed {
			result = Removed
			return nil
		}

		// The savepoint keeps the transaction usable after a unique violation.
		err = tx.Transaction(func(sp *gorm.DB) error {
			return sp.Create(&Like{UserID: userID, TargetType: ref.Kind, TargetID: ref.ID}).Error
		})
		if err == nil {
			result = Added
			return nil
		}
		if !database.IsUniqueViolation(err) {
			return fmt.Errorf("create like: %w", err)
		}

		if _, err := remove(tx, ref, userID); err != nil {
			return err
		}
		result = Removed
		return nil
	})
	if err != nil {
		return "", err
	}
	return result, nil
}

func remove(db *gorm.DB, ref target.Ref, userID string) (bool, error) {
	res := db.Where("user_id = ? AND target_type = ? AND target_id = ?", userID, ref.Kind, ref.ID).
		Delete(&Like{})
	if res.Error != nil {
		return false, fmt.Errorf("delete like: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func IsLiked(db *gorm.DB, ref target.Ref, userID string) (bool, error) {
	if userID == "" {
		return false, nil
	}
	var count int64
	err := db.Model(&Like{}).
		Where("user_id = ? AND target_type = ? AND target_id = ?", userID, ref.Kind, ref.ID).
		Count(&count).Error
	return count > 0, err
}

func Count(db *gorm.DB, ref target.Ref) (int64, error) {
	var count int64
	err := db.Model(&Like{}).
		Where("target_type = ? AND target_id = ?", ref.Kind, ref.ID).
		Count(&count).Error
	return count, err
}

// CountMany returns like totals for a page of targets of the same kind.
// Targets without likes are absent from the map.
func CountMany(db *gorm.DB, kind target.Kind, ids []string) (map[string]int64, error) {
	out := make(map[string]int64, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	var rows []struct {
		TargetID string
		Total    int64
	}
	err := db.Model(&Like{}).
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

// List returns the likes on ref, oldest first, with the liker's username.
func List(db *gorm.DB, ref target.Ref) ([]View, error) {
	views := []View{}
	err := db.Table("likes").
		Select("likes.id, users.username AS user, likes.created_at").
		Joins("JOIN users ON users.id = likes.user_id").
		Where("likes.target_type = ? AND likes.target_id = ?", ref.Kind, ref.ID).
		Order("likes.created_at").
		Scan(&views).Error
	return views, err
}

func Fans(db *gorm.DB, ref target.Ref) ([]Fan, error) {
	fans := []Fan{}
	err := db.Table("likes").
		Select("users.id, users.username, likes.created_at AS liked_at").
		Joins("JOIN users ON users.id = likes.user_id").
		Where("likes.target_type = ? AND likes.target_id = ?", ref.Kind, ref.ID).
		Order("likes.created_at DESC").
		Scan(&fans).Error
	return fans, err
}

// DeleteForTargets removes every like on the given targets.
func DeleteForTargets(db *gorm.DB, kind target.Kind, ids interface{}) error {
	return db.Where("target_type = ? AND target_id IN (?)", kind, ids).Delete(&Like{}).Error
}
