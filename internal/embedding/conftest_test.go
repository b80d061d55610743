package embedding

import (
	"context"
	"time"

	"github.com/palitext/suttasearch/internal/db"
	"github.com/palitext/suttasearch/internal/domain"
)

// mockVectorizer implements Vectorizer for decorator tests.
type mockVectorizer struct {
	result domain.VectorResult
	calls  int
}

func (m *mockVectorizer) Vectorize(_ context.Context, _ string) domain.VectorResult {
	m.calls++
	return m.result
}

// mockStore implements the store consumer interface.
type mockStore struct {
	data   map[string][]byte
	getErr error
	setErr error
}

func newMockStore() *mockStore {
	return &mockStore{data: map[string][]byte{}}
}

func (m *mockStore) Get(_ context.Context, key string) ([]byte, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	if v, ok := m.data[key]; ok {
		return v, nil
	}
	return nil, db.ErrKeyNotFound
}

func (m *mockStore) SetWithTTL(_ context.Context, key string, value []byte, _ time.Duration) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.data[key] = value
	return nil
}
