package testing

import (
	"context"
	"iter"
	"sync"
)

// SummarizerCall records one request made to MockSummarizer
type SummarizerCall struct {
	Prompt string
	System string
}

// MockSummarizer is a mock implementation of domain.Summarizer for testing
type MockSummarizer struct {
	mu     sync.Mutex
	text   string
	chunks []string
	err    error
	calls  []SummarizerCall
}

// NewMockSummarizer creates a mock that answers with text, streamed as chunks
func NewMockSummarizer(text string, chunks ...string) *MockSummarizer {
	if len(chunks) == 0 && text != "" {
		chunks = []string{text}
	}
	return &MockSummarizer{text: text, chunks: chunks}
}

// SetError makes every subsequent call fail with err
func (m *MockSummarizer) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Calls returns the recorded requests
func (m *MockSummarizer) Calls() []SummarizerCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]SummarizerCall(nil), m.calls...)
}

func (m *MockSummarizer) record(prompt, system string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, SummarizerCall{Prompt: prompt, System: system})
	return m.err
}

// Complete returns the configured text
func (m *MockSummarizer) Complete(ctx context.Context, prompt, system string) (string, error) {
	if err := m.record(prompt, system); err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return m.text, nil
}

// Stream yields the configured chunks
func (m *MockSummarizer) Stream(ctx context.Context, prompt, system string) iter.Seq2[string, error] {
	err := m.record(prompt, system)
	return func(yield func(string, error) bool) {
		if err != nil {
			yield("", err)
			return
		}
		for _, c := range m.chunks {
			if ctxErr := ctx.Err(); ctxErr != nil {
				yield("", ctxErr)
				return
			}
			if !yield(c, nil) {
				return
			}
		}
	}
}
