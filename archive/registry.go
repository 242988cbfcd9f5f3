package archive

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/pa-prabumulih/sicantik-api/models"
)

// Store is the persistence collaborator behind the registry. The registry is
// written once against this interface; the mongo collection and the local
// JSON file are the two backing variants.
type Store interface {
	LoadAll(ctx context.Context) ([]models.Case, error)
	Save(ctx context.Context, c models.Case) error
	Remove(ctx context.Context, id primitive.ObjectID) error
}

// Watcher is implemented by stores that can push remote changes. Remote
// state is authoritative: the registry overwrites its snapshot with whatever
// the watcher delivers, last writer wins.
type Watcher interface {
	Watch(ctx context.Context, onChange func([]models.Case)) error
}

// EventType labels a registry change event
type EventType string

// Registry change event types
const (
	EventCreated EventType = "created"
	EventUpdated EventType = "updated"
	EventDeleted EventType = "deleted"
	EventReload  EventType = "reload"
)

// Event is delivered to registry subscribers after every successful mutation
type Event struct {
	Type EventType   `json:"type"`
	Case models.Case `json:"case"`
}

// Registry owns the authoritative collection of case records. Reads are
// served from an in-memory snapshot; every successful mutation is written
// through to the store before the caller is told it succeeded.
type Registry struct {
	store Store

	mu     sync.RWMutex
	cases  []models.Case
	subs   map[int]func(Event)
	nextID int
}

// NewRegistry loads the full collection from the store. If the store can
// watch for remote changes, the registry starts following them.
func NewRegistry(ctx context.Context, store Store) (*Registry, error) {
	cases, err := store.LoadAll(ctx)
	if err != nil {
		return nil, &PersistenceError{Op: "load", Err: err}
	}
	r := &Registry{
		store: store,
		cases: cases,
		subs:  map[int]func(Event){},
	}
	if w, ok := store.(Watcher); ok {
		go func() {
			if err := w.Watch(context.Background(), r.applyRemote); err != nil {
				zap.S().Warnw("registry: remote change feed unavailable", "error", err)
			}
		}()
	}
	return r, nil
}

// List returns a copy of the full registry snapshot, newest first.
func (r *Registry) List() []models.Case {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.Case, len(r.cases))
	copy(out, r.cases)
	return out
}

// Get returns the record with the given id.
func (r *Registry) Get(id primitive.ObjectID) (models.Case, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, c := range r.cases {
		if c.ID == id {
			return c, true
		}
	}
	return models.Case{}, false
}

// Create validates the details, rejects duplicate case numbers and persists
// the new record. The fresh record surfaces first in the default list view.
func (r *Registry) Create(ctx context.Context, details models.CaseDetails) (models.Case, error) {
	if err := ValidateDetails(details); err != nil {
		return models.Case{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	key := strings.ToLower(details.CaseNumber)
	for _, existing := range r.cases {
		if strings.ToLower(existing.Details.CaseNumber) == key {
			return models.Case{}, &DuplicateCaseNumberError{CaseNumber: details.CaseNumber}
		}
	}

	now := primitive.NewDateTimeFromTime(time.Now())
	details.CreatedAt = now
	details.UpdatedAt = now
	c := models.Case{ID: primitive.NewObjectID(), Details: details}

	if err := r.store.Save(ctx, c); err != nil {
		return models.Case{}, &PersistenceError{Op: "save", Err: err}
	}
	r.cases = append([]models.Case{c}, r.cases...)
	r.notify(Event{Type: EventCreated, Case: c})
	return c, nil
}

// Update replaces the mutable fields of an existing record. The case number
// and type are not expected to change (the form disables them) but the
// registry does not enforce that; it is a form-level constraint.
func (r *Registry) Update(ctx context.Context, id primitive.ObjectID, details models.CaseDetails) (models.Case, error) {
	if err := ValidateDetails(details); err != nil {
		return models.Case{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	idx := -1
	for i, c := range r.cases {
		if c.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return models.Case{}, &NotFoundError{ID: id.Hex()}
	}

	details.CreatedAt = r.cases[idx].Details.CreatedAt
	details.UpdatedAt = primitive.NewDateTimeFromTime(time.Now())
	c := models.Case{ID: id, Details: details}

	if err := r.store.Save(ctx, c); err != nil {
		return models.Case{}, &PersistenceError{Op: "save", Err: err}
	}
	r.cases[idx] = c
	r.notify(Event{Type: EventUpdated, Case: c})
	return c, nil
}

// Delete removes a record unconditionally. An unknown id is a no-op, which
// makes delete idempotent.
func (r *Registry) Delete(ctx context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := -1
	for i, c := range r.cases {
		if c.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil
	}

	removed := r.cases[idx]
	if err := r.store.Remove(ctx, id); err != nil {
		return &PersistenceError{Op: "remove", Err: err}
	}
	r.cases = append(r.cases[:idx], r.cases[idx+1:]...)
	r.notify(Event{Type: EventDeleted, Case: removed})
	return nil
}

// Subscribe registers a callback for registry change events and returns a
// function that removes it again.
func (r *Registry) Subscribe(fn func(Event)) func() {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := r.nextID
	r.nextID++
	r.subs[id] = fn
	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		delete(r.subs, id)
	}
}

// applyRemote overwrites the snapshot with the authoritative remote state.
func (r *Registry) applyRemote(cases []models.Case) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cases = cases
	zap.S().Debugw("registry: snapshot replaced from remote change feed", "count", len(cases))
	r.notify(Event{Type: EventReload})
}

// notify must be called with r.mu held.
func (r *Registry) notify(ev Event) {
	for _, fn := range r.subs {
		fn(ev)
	}
}
