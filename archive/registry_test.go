package archive_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/pa-prabumulih/sicantik-api/archive"
	"github.com/pa-prabumulih/sicantik-api/models"
)

// memStore is an in-memory archive.Store for registry tests. Errors can be
// injected per operation.
type memStore struct {
	cases   []models.Case
	saveErr error
	loadErr error
	rmErr   error
}

func (s *memStore) LoadAll(ctx context.Context) ([]models.Case, error) {
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	out := make([]models.Case, len(s.cases))
	copy(out, s.cases)
	return out, nil
}

func (s *memStore) Save(ctx context.Context, c models.Case) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	for i := range s.cases {
		if s.cases[i].ID == c.ID {
			s.cases[i] = c
			return nil
		}
	}
	s.cases = append(s.cases, c)
	return nil
}

func (s *memStore) Remove(ctx context.Context, id primitive.ObjectID) error {
	if s.rmErr != nil {
		return s.rmErr
	}
	for i := range s.cases {
		if s.cases[i].ID == id {
			s.cases = append(s.cases[:i], s.cases[i+1:]...)
			return nil
		}
	}
	return nil
}

func newTestRegistry(t *testing.T, store archive.Store) *archive.Registry {
	t.Helper()
	r, err := archive.NewRegistry(context.Background(), store)
	if err != nil {
		t.Fatal(err)
	}
	return r
}

func TestRegistryLoadFailure(t *testing.T) {
	_, err := archive.NewRegistry(context.Background(), &memStore{loadErr: errors.New("mocked-error")})
	var pErr *archive.PersistenceError
	assert.ErrorAs(t, err, &pErr)
}

func TestRegistryCreate(t *testing.T) {
	store := &memStore{}
	r := newTestRegistry(t, store)

	c, err := r.Create(context.Background(), validDetails())
	assert.NoError(t, err)
	assert.False(t, c.ID.IsZero())
	assert.NotZero(t, c.Details.CreatedAt)
	assert.Equal(t, c.Details.CreatedAt, c.Details.UpdatedAt)
	assert.Len(t, store.cases, 1)
}

func TestRegistryCreateNewestFirst(t *testing.T) {
	r := newTestRegistry(t, &memStore{})

	first := validDetails()
	second := validDetails()
	second.CaseNumber = "124/Pdt.G/2023/PA.Pbm"

	_, err := r.Create(context.Background(), first)
	assert.NoError(t, err)
	_, err = r.Create(context.Background(), second)
	assert.NoError(t, err)

	list := r.List()
	assert.Len(t, list, 2)
	assert.Equal(t, "124/Pdt.G/2023/PA.Pbm", list[0].Details.CaseNumber)
}

func TestRegistryCreateDuplicateNumber(t *testing.T) {
	r := newTestRegistry(t, &memStore{})

	_, err := r.Create(context.Background(), validDetails())
	assert.NoError(t, err)

	dup := validDetails()
	dup.CaseNumber = "123/PDT.G/2023/pa.pbm"
	_, err = r.Create(context.Background(), dup)

	var dErr *archive.DuplicateCaseNumberError
	assert.ErrorAs(t, err, &dErr)
	assert.Len(t, r.List(), 1)
}

func TestRegistryCreatePersistenceFailure(t *testing.T) {
	r := newTestRegistry(t, &memStore{saveErr: errors.New("mocked-error")})

	_, err := r.Create(context.Background(), validDetails())
	var pErr *archive.PersistenceError
	assert.ErrorAs(t, err, &pErr)
	assert.Empty(t, r.List())
}

func TestRegistryUpdate(t *testing.T) {
	r := newTestRegistry(t, &memStore{})

	c, err := r.Create(context.Background(), validDetails())
	assert.NoError(t, err)

	details := c.Details
	details.Parties = "Siti binti Ahmad vs Rudi bin Salim"
	updated, err := r.Update(context.Background(), c.ID, details)
	assert.NoError(t, err)
	assert.Equal(t, "Siti binti Ahmad vs Rudi bin Salim", updated.Details.Parties)
	assert.Equal(t, c.Details.CreatedAt, updated.Details.CreatedAt)

	got, ok := r.Get(c.ID)
	assert.True(t, ok)
	assert.Equal(t, updated.Details.Parties, got.Details.Parties)
}

func TestRegistryUpdateUnknownID(t *testing.T) {
	r := newTestRegistry(t, &memStore{})

	_, err := r.Update(context.Background(), primitive.NewObjectID(), validDetails())
	var nErr *archive.NotFoundError
	assert.ErrorAs(t, err, &nErr)
}

func TestRegistryDelete(t *testing.T) {
	store := &memStore{}
	r := newTestRegistry(t, store)

	c, err := r.Create(context.Background(), validDetails())
	assert.NoError(t, err)

	assert.NoError(t, r.Delete(context.Background(), c.ID))
	assert.Empty(t, r.List())
	assert.Empty(t, store.cases)

	// unknown id is a no-op
	assert.NoError(t, r.Delete(context.Background(), c.ID))
}

func TestRegistryDeletePersistenceFailure(t *testing.T) {
	store := &memStore{}
	r := newTestRegistry(t, store)

	c, err := r.Create(context.Background(), validDetails())
	assert.NoError(t, err)

	store.rmErr = errors.New("mocked-error")
	err = r.Delete(context.Background(), c.ID)
	var pErr *archive.PersistenceError
	assert.ErrorAs(t, err, &pErr)
	assert.Len(t, r.List(), 1)
}

func TestRegistrySubscribe(t *testing.T) {
	r := newTestRegistry(t, &memStore{})

	var events []archive.Event
	unsubscribe := r.Subscribe(func(ev archive.Event) {
		events = append(events, ev)
	})

	c, err := r.Create(context.Background(), validDetails())
	assert.NoError(t, err)
	assert.NoError(t, r.Delete(context.Background(), c.ID))

	assert.Len(t, events, 2)
	assert.Equal(t, archive.EventCreated, events[0].Type)
	assert.Equal(t, archive.EventDeleted, events[1].Type)
	assert.Equal(t, c.ID, events[1].Case.ID)

	unsubscribe()
	_, err = r.Create(context.Background(), validDetails())
	assert.NoError(t, err)
	assert.Len(t, events, 2)
}

// watchStore pushes a single remote snapshot once the registry subscribes.
type watchStore struct {
	memStore
	remote []models.Case
	pushed chan struct{}
}

func (s *watchStore) Watch(ctx context.Context, onChange func([]models.Case)) error {
	onChange(s.remote)
	close(s.pushed)
	return nil
}

func TestRegistryRemoteOverwrite(t *testing.T) {
	remote := []models.Case{caseWithNumber("5/Pdt.G/2024/PA.Pbm", models.CaseTypeGugatan)}
	store := &watchStore{remote: remote, pushed: make(chan struct{})}
	r := newTestRegistry(t, store)

	select {
	case <-store.pushed:
	case <-time.After(time.Second):
		t.Fatal("remote change feed was never consumed")
	}

	assert.Eventually(t, func() bool {
		list := r.List()
		return len(list) == 1 && list[0].ID == remote[0].ID
	}, time.Second, 10*time.Millisecond)
}
