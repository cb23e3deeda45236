// Package events publishes domain notifications after a mutation has been stored.
// Delivery is best effort: a failed publish is logged and never reaches the caller.
package events

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/AlexTsikhun/social-media-api/internal/logs"
)

const (
	PostCreated    = "post.created"
	PostDeleted    = "post.deleted"
	CommentCreated = "comment.created"
	LikeAdded      = "like.added"
	LikeRemoved    = "like.removed"
	FollowCreated  = "follow.created"
	FollowDeleted  = "follow.deleted"
)

type Event struct {
	Type       string    `json:"type"`
	ActorID    string    `json:"actor_id"`
	TargetType string    `json:"target_type,omitempty"`
	TargetID   string    `json:"target_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

func (e Event) Encode() ([]byte, error) {
	return json.Marshal(e)
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, Event) error { return nil }
func (nopPublisher) Close() error                         { return nil }

var (
	mu        sync.RWMutex
	publisher Publisher = nopPublisher{}
)

// SetPublisher replaces the process-wide publisher and returns the previous one.
func SetPublisher(p Publisher) Publisher {
	mu.Lock()
	defer mu.Unlock()
	prev := publisher
	if p == nil {
		p = nopPublisher{}
	}
	publisher = p
	return prev
}

func Emit(ctx context.Context, e Event) {
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now().UTC()
	}

	mu.RLock()
	p := publisher
	mu.RUnlock()

	if err := p.Publish(ctx, e); err != nil {
		logs.LogJSON("WARN", "Event publish failed", map[string]interface{}{
			"error":  err.Error(),
			"userID": e.ActorID,
			"extra":  e.Type,
		})
	}
}

func Close() error {
	mu.Lock()
	defer mu.Unlock()
	err := publisher.Close()
	publisher = nopPublisher{}
	return err
}
