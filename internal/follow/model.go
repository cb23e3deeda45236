package follow

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Follow is a directed edge: FollowerID follows FollowedID.
type Follow struct {
	ID         string    `gorm:"primaryKey;type:uuid" json:"id"`
	FollowerID string    `gorm:"type:uuid;not null;uniqueIndex:uq_follows_pair" json:"follower_id"`
	FollowedID string    `gorm:"type:uuid;not null;uniqueIndex:uq_follows_pair;index" json:"followed_id"`
	CreatedAt  time.Time `json:"created_at"`
}

func (f *Follow) BeforeCreate(tx *gorm.DB) error {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	return nil
}

func (f Follow) OwnerID() string {
	return f.FollowerID
}

// Side selects which end of the edge a listing is anchored on.
type Side int

const (
	// Following lists edges whose follower is the owner.
	Following Side = iota
	// Followers lists edges whose followed user is the owner.
	Followers
)

// Edge is a follow with both usernames resolved.
type Edge struct {
	ID         string    `json:"id"`
	FollowerID string    `json:"-"`
	Follower   string    `json:"follower"`
	FollowedID string    `json:"-"`
	Followed   string    `json:"followed"`
	CreatedAt  time.Time `json:"created_at"`
}

func (e Edge) OwnerID() string {
	return e.FollowerID
}

// Other returns the user at the far end of the edge as seen from side.
func (e Edge) Other(side Side) (id, username string) {
	if side == Followers {
		return e.FollowerID, e.Follower
	}
	return e.FollowedID, e.Followed
}
