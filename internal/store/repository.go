package store

import (
	"context"
	"errors"
	"sync"

	"github.com/verte-zerg/signglove/internal/forest"
)

// ModelName identifies the single persisted classifier artifact.
const ModelName = "gesture_model"

// ErrModelNotFound is returned when no model has been trained yet.
var ErrModelNotFound = errors.New("trained model not found")

// Repository persists the classifier artifact. SaveModel overwrites any
// previous artifact wholesale; LoadModel returns ErrModelNotFound when
// nothing has been saved.
type Repository interface {
	SaveModel(ctx context.Context, m *forest.Forest) error
	LoadModel(ctx context.Context) (*forest.Forest, error)
}

// Memory keeps the encoded artifact in process memory.
type Memory struct {
	mu   sync.Mutex
	data []byte
}

// NewMemory returns an empty in-memory repository.
func NewMemory() *Memory {
	return &Memory{}
}

// SaveModel implements Repository.
func (m *Memory) SaveModel(_ context.Context, f *forest.Forest) error {
	data, err := f.MarshalBinary()
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = data
	return nil
}

// LoadModel implements Repository.
func (m *Memory) LoadModel(_ context.Context) (*forest.Forest, error) {
	m.mu.Lock()
	data := m.data
	m.mu.Unlock()
	if data == nil {
		return nil, ErrModelNotFound
	}
	var f forest.Forest
	if err := f.UnmarshalBinary(data); err != nil {
		return nil, err
	}
	return &f, nil
}
