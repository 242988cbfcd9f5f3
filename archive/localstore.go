package archive

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/pa-prabumulih/sicantik-api/models"
)

// FileStore keeps the registry as a JSON array in a single file. It is the
// local backing variant, used for single-desk deployments without a database
// and as the target of the nightly snapshot export.
type FileStore struct {
	path string
	mu   sync.Mutex
}

// NewFileStore returns a store writing to the given path. The file is
// created on first save; a missing file reads as an empty registry.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// LoadAll reads the whole registry from disk.
func (s *FileStore) LoadAll(ctx context.Context) ([]models.Case, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read()
}

// Save upserts one record and rewrites the file.
func (s *FileStore) Save(ctx context.Context, c models.Case) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cases, err := s.read()
	if err != nil {
		return err
	}
	replaced := false
	for i := range cases {
		if cases[i].ID == c.ID {
			cases[i] = c
			replaced = true
			break
		}
	}
	if !replaced {
		cases = append([]models.Case{c}, cases...)
	}
	return s.write(cases)
}

// Remove deletes one record. Removing an unknown id is a no-op.
func (s *FileStore) Remove(ctx context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cases, err := s.read()
	if err != nil {
		return err
	}
	for i := range cases {
		if cases[i].ID == id {
			return s.write(append(cases[:i], cases[i+1:]...))
		}
	}
	return nil
}

// WriteAll replaces the entire file contents with the given snapshot.
func (s *FileStore) WriteAll(cases []models.Case) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.write(cases)
}

func (s *FileStore) read() ([]models.Case, error) {
	b, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return []models.Case{}, nil
	}
	if err != nil {
		return nil, err
	}
	var cases []models.Case
	if err := json.Unmarshal(b, &cases); err != nil {
		return nil, err
	}
	return cases, nil
}

func (s *FileStore) write(cases []models.Case) error {
	if cases == nil {
		cases = []models.Case{}
	}
	b, err := json.MarshalIndent(cases, "", "  ")
	if err != nil {
		return err
	}
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(s.path, b, 0o644)
}
