package usecase

import (
	"sync"

	"github.com/matkgb/mat-assistant/internal/core/domain"
)

const sessionHistoryLimit = 10

// Session holds the rolling chat history for one conversation. It replaces
// process-wide mutable history with an explicit state object passed to each
// query call.
type Session struct {
	mu       sync.Mutex
	id       string
	history  []domain.Exchange
	capacity int
}

func NewSession(id string) *Session {
	return &Session{
		id:       id,
		capacity: sessionHistoryLimit,
	}
}

func (s *Session) ID() string {
	return s.id
}

// Append records one exchange, evicting the oldest beyond the capacity.
func (s *Session) Append(question string, answer *domain.Answer) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.history = append(s.history, domain.Exchange{
		Question: question,
		Response: answer.Response,
		Sources:  answer.Sources,
	})
	if len(s.history) > s.capacity {
		s.history = s.history[len(s.history)-s.capacity:]
	}
}

// History returns a copy of the recorded exchanges, oldest first.
func (s *Session) History() []domain.Exchange {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Exchange(nil), s.history...)
}

func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = nil
}
