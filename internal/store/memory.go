// Lectern - Congregation Meeting Scheduling and Administration
// Copyright 2026 Lectern Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lectern-app/lectern

package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lectern-app/lectern/internal/models"
)

// memoryKey scopes every record to its congregation so a lookup can never
// cross tenant boundaries.
type memoryKey struct {
	congregationID string
	id             string
}

// MemoryPublisherStore is an in-memory PublisherStore.
type MemoryPublisherStore struct {
	mu    sync.RWMutex
	items map[memoryKey]models.Publisher
}

// NewMemoryPublisherStore creates an empty in-memory publisher store.
func NewMemoryPublisherStore() *MemoryPublisherStore {
	return &MemoryPublisherStore{items: make(map[memoryKey]models.Publisher)}
}

func (s *MemoryPublisherStore) Get(ctx context.Context, congregationID, id string) (*models.Publisher, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.items[memoryKey{congregationID, id}]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (s *MemoryPublisherStore) List(ctx context.Context, congregationID string) ([]models.Publisher, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.Publisher
	for key, p := range s.items {
		if key.congregationID == congregationID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LastName < out[j].LastName })
	return out, nil
}

func (s *MemoryPublisherStore) Create(ctx context.Context, p *models.Publisher) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now
	s.items[memoryKey{p.CongregationID, p.ID}] = *p
	return nil
}

func (s *MemoryPublisherStore) Update(ctx context.Context, p *models.Publisher) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := memoryKey{p.CongregationID, p.ID}
	existing, ok := s.items[key]
	if !ok {
		return ErrNotFound
	}
	p.CreatedAt = existing.CreatedAt
	p.UpdatedAt = time.Now()
	s.items[key] = *p
	return nil
}

func (s *MemoryPublisherStore) Delete(ctx context.Context, congregationID, id string) (*models.Publisher, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := memoryKey{congregationID, id}
	p, ok := s.items[key]
	if !ok {
		return nil, ErrNotFound
	}
	delete(s.items, key)
	return &p, nil
}

// MemorySpeakerStore is an in-memory SpeakerStore.
type MemorySpeakerStore struct {
	mu    sync.RWMutex
	items map[memoryKey]models.Speaker
}

// NewMemorySpeakerStore creates an empty in-memory speaker store.
func NewMemorySpeakerStore() *MemorySpeakerStore {
	return &MemorySpeakerStore{items: make(map[memoryKey]models.Speaker)}
}

func (s *MemorySpeakerStore) Get(ctx context.Context, congregationID, id string) (*models.Speaker, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sp, ok := s.items[memoryKey{congregationID, id}]
	if !ok {
		return nil, ErrNotFound
	}
	return &sp, nil
}

func (s *MemorySpeakerStore) List(ctx context.Context, congregationID string) ([]models.Speaker, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.Speaker
	for key, sp := range s.items {
		if key.congregationID == congregationID {
			out = append(out, sp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *MemorySpeakerStore) Create(ctx context.Context, sp *models.Speaker) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sp.ID == "" {
		sp.ID = uuid.New().String()
	}
	now := time.Now()
	sp.CreatedAt = now
	sp.UpdatedAt = now
	s.items[memoryKey{sp.CongregationID, sp.ID}] = *sp
	return nil
}

func (s *MemorySpeakerStore) Update(ctx context.Context, sp *models.Speaker) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := memoryKey{sp.CongregationID, sp.ID}
	existing, ok := s.items[key]
	if !ok {
		return ErrNotFound
	}
	sp.CreatedAt = existing.CreatedAt
	sp.UpdatedAt = time.Now()
	s.items[key] = *sp
	return nil
}

func (s *MemorySpeakerStore) Delete(ctx context.Context, congregationID, id string) (*models.Speaker, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := memoryKey{congregationID, id}
	sp, ok := s.items[key]
	if !ok {
		return nil, ErrNotFound
	}
	delete(s.items, key)
	return &sp, nil
}

// MemoryMeetingExceptionStore is an in-memory MeetingExceptionStore.
type MemoryMeetingExceptionStore struct {
	mu    sync.RWMutex
	items map[memoryKey]models.MeetingException
}

// NewMemoryMeetingExceptionStore creates an empty in-memory exception store.
func NewMemoryMeetingExceptionStore() *MemoryMeetingExceptionStore {
	return &MemoryMeetingExceptionStore{items: make(map[memoryKey]models.MeetingException)}
}

func (s *MemoryMeetingExceptionStore) Get(ctx context.Context, congregationID, id string) (*models.MeetingException, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.items[memoryKey{congregationID, id}]
	if !ok {
		return nil, ErrNotFound
	}
	return &e, nil
}

func (s *MemoryMeetingExceptionStore) List(ctx context.Context, congregationID string) ([]models.MeetingException, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.MeetingException
	for key, e := range s.items {
		if key.congregationID == congregationID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}

func (s *MemoryMeetingExceptionStore) Create(ctx context.Context, e *models.MeetingException) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	now := time.Now()
	e.CreatedAt = now
	e.UpdatedAt = now
	s.items[memoryKey{e.CongregationID, e.ID}] = *e
	return nil
}

func (s *MemoryMeetingExceptionStore) Update(ctx context.Context, e *models.MeetingException) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := memoryKey{e.CongregationID, e.ID}
	existing, ok := s.items[key]
	if !ok {
		return ErrNotFound
	}
	e.CreatedAt = existing.CreatedAt
	e.UpdatedAt = time.Now()
	s.items[key] = *e
	return nil
}

func (s *MemoryMeetingExceptionStore) Delete(ctx context.Context, congregationID, id string) (*models.MeetingException, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := memoryKey{congregationID, id}
	e, ok := s.items[key]
	if !ok {
		return nil, ErrNotFound
	}
	delete(s.items, key)
	return &e, nil
}
