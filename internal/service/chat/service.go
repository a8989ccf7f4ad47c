package chat

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/zhouzirui/kairn/backend/internal/model/chat"
)

var (
	ErrSessionIDRequired = errors.New("session id is required")
	ErrSessionExists     = errors.New("session already mounted")
	ErrSessionNotFound   = errors.New("session not found")
)

// Service tracks the chat surfaces currently mounted, one per session id.
type Service struct {
	mu       sync.RWMutex
	sessions map[string]chat.Session
	surfaces map[string]chat.Surface
}

// NewService returns an empty surface registry.
func NewService() *Service {
	return &Service{
		sessions: make(map[string]chat.Session),
		surfaces: make(map[string]chat.Surface),
	}
}

// Mount creates the chat surface for surface.SessionID.
func (s *Service) Mount(_ context.Context, surface chat.Surface) (chat.Session, error) {
	if surface.SessionID == "" {
		return chat.Session{}, ErrSessionIDRequired
	}

	session := chat.Session{
		ID:        surface.SessionID,
		CreatedAt: time.Now().UTC(),
	}
	surface.InitialMessages = append(make([]chat.Message, 0, len(surface.InitialMessages)), surface.InitialMessages...)

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[session.ID]; ok {
		return chat.Session{}, ErrSessionExists
	}
	s.sessions[session.ID] = session
	s.surfaces[session.ID] = surface
	return session, nil
}

// Unmount tears down the surface of sessionID.
func (s *Service) Unmount(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[sessionID]; !ok {
		return ErrSessionNotFound
	}
	delete(s.sessions, sessionID)
	delete(s.surfaces, sessionID)
	return nil
}

// GetSession retrieves a mounted session by identifier.
func (s *Service) GetSession(_ context.Context, sessionID string) (chat.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[sessionID]
	if !ok {
		return chat.Session{}, ErrSessionNotFound
	}
	return session, nil
}

// LoadTranscript returns the messages the surface of sessionID was mounted with.
func (s *Service) LoadTranscript(_ context.Context, sessionID string) ([]chat.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	surface, ok := s.surfaces[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}

	copied := make([]chat.Message, len(surface.InitialMessages))
	copy(copied, surface.InitialMessages)
	return copied, nil
}

// Count returns the number of mounted surfaces.
func (s *Service) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
