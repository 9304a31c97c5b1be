package assistant

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// Assistant is a persona consumed when assembling a prompt.
type Assistant struct {
	Id            string   `json:"id"`
	Name          string   `json:"name"`
	SystemPrompt  string   `json:"systemPrompt"`
	ResumeContent string   `json:"resumeContent,omitempty"`
	Technologies  []string `json:"technologies,omitempty"`
}

var ErrNotFound = fmt.Errorf("assistant not found")

// Store is a file-backed assistant registry (a JSON array) with a read
// cache in front. Every write rewrites the file and flushes the cache,
// so edits are synchronously visible to future lookups.
type Store struct {
	mu    sync.Mutex
	path  string
	cache *cache.Cache
}

func NewStore(path string) *Store {
	return &Store{
		path:  path,
		cache: cache.New(5*time.Minute, 10*time.Minute),
	}
}

func (s *Store) List() ([]Assistant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked()
}

func (s *Store) Get(id string) (*Assistant, error) {
	if x, found := s.cache.Get(id); found {
		a := x.(Assistant)
		return &a, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	assistants, err := s.loadLocked()
	if err != nil {
		return nil, err
	}
	for _, a := range assistants {
		if a.Id == id {
			s.cache.Set(id, a, cache.DefaultExpiration)
			found := a
			return &found, nil
		}
	}
	return nil, ErrNotFound
}

func (s *Store) Create(a Assistant) (*Assistant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if a.Id == "" {
		a.Id = uuid.New().String()
	}

	assistants, err := s.loadLocked()
	if err != nil {
		return nil, err
	}
	for _, existing := range assistants {
		if existing.Id == a.Id {
			return nil, fmt.Errorf("assistant %s already exists", a.Id)
		}
	}

	assistants = append(assistants, a)
	if err := s.persistLocked(assistants); err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *Store) Update(a Assistant) (*Assistant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	assistants, err := s.loadLocked()
	if err != nil {
		return nil, err
	}

	for i, existing := range assistants {
		if existing.Id == a.Id {
			assistants[i] = a
			if err := s.persistLocked(assistants); err != nil {
				return nil, err
			}
			return &a, nil
		}
	}
	return nil, ErrNotFound
}

func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	assistants, err := s.loadLocked()
	if err != nil {
		return err
	}

	for i, existing := range assistants {
		if existing.Id == id {
			assistants = append(assistants[:i], assistants[i+1:]...)
			return s.persistLocked(assistants)
		}
	}
	return ErrNotFound
}

func (s *Store) loadLocked() ([]Assistant, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []Assistant{}, nil
		}
		return nil, err
	}

	var assistants []Assistant
	if err := json.Unmarshal(data, &assistants); err != nil {
		return nil, fmt.Errorf("parse assistants file: %w", err)
	}
	return assistants, nil
}

func (s *Store) persistLocked(assistants []Assistant) error {
	data, err := json.MarshalIndent(assistants, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return err
	}
	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return err
	}
	// Cache is busted on every write so stale personas never outlive an edit.
	s.cache.Flush()
	return nil
}
