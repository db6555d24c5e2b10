package ai

import (
	"context"
	"sync"

	"github.com/pkg/errors"
)

// MockCompletionService is a scripted CompletionService for testing.
// Responses are returned in order; every call is recorded.
type MockCompletionService struct {
	mu         sync.Mutex
	responses  []string
	errs       []error
	Configured bool

	// Calls records the messages of every invocation, in order.
	Calls [][]Message
	// Temperatures records the temperature of every invocation.
	Temperatures []float32
	// Schemas records the schema name of every invocation ("" when none).
	Schemas []string
}

// NewMockCompletionService creates a configured mock with no scripted responses.
func NewMockCompletionService() *MockCompletionService {
	return &MockCompletionService{Configured: true}
}

// Enqueue schedules a successful response.
func (m *MockCompletionService) Enqueue(response string) *MockCompletionService {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, response)
	m.errs = append(m.errs, nil)
	return m
}

// EnqueueError schedules a failing call.
func (m *MockCompletionService) EnqueueError(err error) *MockCompletionService {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, "")
	m.errs = append(m.errs, err)
	return m
}

func (m *MockCompletionService) IsConfigured() bool {
	return m.Configured
}

func (m *MockCompletionService) Complete(_ context.Context, messages []Message, temperature float32, schema *Schema) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, messages)
	m.Temperatures = append(m.Temperatures, temperature)
	schemaName := ""
	if schema != nil {
		schemaName = schema.Name
	}
	m.Schemas = append(m.Schemas, schemaName)

	if len(m.responses) == 0 {
		return "", errors.New("mock completion service: no scripted response")
	}
	response, err := m.responses[0], m.errs[0]
	m.responses = m.responses[1:]
	m.errs = m.errs[1:]
	if err != nil {
		return "", err
	}
	return response, nil
}

// CallCount returns the number of completed invocations.
func (m *MockCompletionService) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// LastPrompt returns the user-role content of the most recent call, or "".
func (m *MockCompletionService) LastPrompt() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Calls) == 0 {
		return ""
	}
	last := m.Calls[len(m.Calls)-1]
	for i := len(last) - 1; i >= 0; i-- {
		if last[i].Role == "user" {
			return last[i].Content
		}
	}
	return ""
}
