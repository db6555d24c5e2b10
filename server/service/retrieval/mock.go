package retrieval

import (
	"context"
	"sync"
)

// MockService is a canned Service for testing.
type MockService struct {
	mu       sync.Mutex
	Snippets []Snippet
	Warnings []Snippet
	Err      error

	// Queries records every Search query, in order.
	Queries []string
}

// NewMockService creates a mock returning the given snippets.
func NewMockService(snippets ...Snippet) *MockService {
	return &MockService{Snippets: snippets}
}

func (m *MockService) Search(_ context.Context, query string, _ string, n int) ([]Snippet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Queries = append(m.Queries, query)
	if m.Err != nil {
		return nil, m.Err
	}
	return limit(m.Snippets, n), nil
}

func (m *MockService) SearchWarnings(_ context.Context, query string, _ string, n int) ([]Snippet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Queries = append(m.Queries, query)
	if m.Err != nil {
		return nil, m.Err
	}
	return limit(m.Warnings, n), nil
}

func limit(snippets []Snippet, n int) []Snippet {
	if n <= 0 || n >= len(snippets) {
		return snippets
	}
	return snippets[:n]
}
