package user

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/AlexTsikhun/social-media-api/internal/database"
	"github.com/AlexTsikhun/social-media-api/internal/errs"
)

const msgUsernameTaken = "A user with that username already exists."

// Create stores u and its empty Profile in one transaction.
func Create(db *gorm.DB, u *User) (*Profile, error) {
	var profile *Profile

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(u).Error; err != nil {
			if database.IsUniqueViolation(err) {
				return errs.Field("username", msgUsernameTaken)
			}
			return fmt.Errorf("create user: %w", err)
		}

		profile = &Profile{UserID: u.ID}
		if err := tx.Create(profile).Error; err != nil {
			return fmt.Errorf("create profile: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return profile, nil
}

func ExistsByID(db *gorm.DB, id string) (bool, error) {
	var count int64
	err := db.Model(&User{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

func ExistsByUsername(db *gorm.DB, username string) (bool, error) {
	var count int64
	err := db.Model(&User{}).Where("username = ?", username).Count(&count).Error
	return count > 0, err
}

func ByID(db *gorm.DB, id string) (*User, error) {
	var u User
	if err := db.First(&u, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NotFound("User not found")
		}
		return nil, err
	}
	return &u, nil
}

func ByUsername(db *gorm.DB, username string) (*User, error) {
	var u User
	if err := db.Where("username = ?", username).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NotFound("User not found")
		}
		return nil, err
	}
	return &u, nil
}

// UsernamesByIDs resolves author names for a page of rows in one query.
func UsernamesByIDs(db *gorm.DB, ids []string) (map[string]string, error) {
	out := make(map[string]string, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	var rows []User
	if err := db.Select("id", "username").Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, r := range rows {
		out[r.ID] = r.Username
	}
	return out, nil
}

func ProfileByUserID(db *gorm.DB, userID string) (*Profile, error) {
	var p Profile
	if err := db.Where("user_id = ?", userID).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NotFound("Profile not found")
		}
		return nil, err
	}
	return &p, nil
}

// UpdateProfile writes only the given columns.
func UpdateProfile(db *gorm.DB, p *Profile, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	return db.Model(p).Updates(fields).Error
}
