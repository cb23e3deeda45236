// Package target names the things a like or comment can point at.
package target

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/AlexTsikhun/social-media-api/internal/errs"
)

type Kind string

const (
	KindPost    Kind = "post"
	KindComment Kind = "comment"
)

func (k Kind) IsValid() bool {
	switch k {
	case KindPost, KindComment:
		return true
	}
	return false
}

type Ref struct {
	Kind Kind
	ID   string
}

// Resolver reports whether the row with id exists.
type Resolver func(db *gorm.DB, id string) (bool, error)

type entry struct {
	resolve  Resolver
	notFound string
}

// Registry maps every target kind to the store that owns it.
type Registry struct {
	entries map[Kind]entry
}

func NewRegistry() *Registry {
	return &Registry{entries: map[Kind]entry{}}
}

func (r *Registry) Register(kind Kind, notFound string, fn Resolver) {
	r.entries[kind] = entry{resolve: fn, notFound: notFound}
}

// Resolve returns a NotFound error carrying the kind's message when ref points nowhere.
func (r *Registry) Resolve(db *gorm.DB, ref Ref) error {
	e, ok := r.entries[ref.Kind]
	if !ok {
		return errs.Validation(fmt.Sprintf("Unsupported target type %q", ref.Kind))
	}
	if _, err := uuid.Parse(ref.ID); err != nil {
		return errs.NotFound(e.notFound)
	}

	exists, err := e.resolve(db, ref.ID)
	if err != nil {
		return fmt.Errorf("resolve %s %s: %w", ref.Kind, ref.ID, err)
	}
	if !exists {
		return errs.NotFound(e.notFound)
	}
	return nil
}

func (r *Registry) NotFound(kind Kind) error {
	if e, ok := r.entries[kind]; ok {
		return errs.NotFound(e.notFound)
	}
	return errs.NotFound("Not found")
}
