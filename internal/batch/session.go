package batch

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrSessionNotFound is returned when a session id is unknown or already
// evicted.
var ErrSessionNotFound = errors.New("session not found")

// ErrUnknownTask is returned when a session names a task type with no
// configured instructions.
var ErrUnknownTask = errors.New("unknown task type")

// Session is the process-wide state of one submitted batch. Input fields
// are written once at creation; result fields are populated exactly once
// when the run completes.
type Session struct {
	ID          string
	TaskType    string
	ArchivePath string
	RosterPath  string
	CreatedAt   time.Time

	// Populated by Complete.
	Results       []Result
	CSVPath       string
	ExcelPath     string
	CSVFilename   string
	ExcelFilename string
	Done          bool
}

// SessionStore is a keyed registry of processing sessions. Sessions are
// evicted after a TTL or released explicitly; the transport layer owns
// the store and injects it into the Runner.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	ttl      time.Duration
	logger   *slog.Logger
}

// NewSessionStore creates a store whose sessions expire after ttl. A ttl
// of zero disables expiry.
func NewSessionStore(ttl time.Duration, logger *slog.Logger) *SessionStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionStore{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		logger:   logger,
	}
}

// Create registers a new session for the given inputs and returns it.
func (s *SessionStore) Create(taskType, archivePath, rosterPath string) *Session {
	sess := &Session{
		ID:          uuid.New().String(),
		TaskType:    taskType,
		ArchivePath: archivePath,
		RosterPath:  rosterPath,
		CreatedAt:   time.Now(),
	}

	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()

	s.logger.Info("session created", "session_id", sess.ID, "task_type", taskType)
	return sess
}

// Get returns the session for id.
func (s *SessionStore) Get(id string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

// Complete records the run's artifacts on the session.
func (s *SessionStore) Complete(id string, results []Result, csvPath, excelPath string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return
	}
	sess.Results = results
	sess.CSVPath = csvPath
	sess.ExcelPath = excelPath
	sess.CSVFilename = filepath.Base(csvPath)
	sess.ExcelFilename = filepath.Base(excelPath)
	sess.Done = true
}

// Artifacts is a consistent snapshot of a session's result fields.
type Artifacts struct {
	CSVPath       string
	CSVFilename   string
	ExcelPath     string
	ExcelFilename string
	Done          bool
}

// Artifacts reads a session's result fields under the store lock, so
// callers never race with the runner completing the session.
func (s *SessionStore) Artifacts(id string) (Artifacts, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	if !ok {
		return Artifacts{}, ErrSessionNotFound
	}
	return Artifacts{
		CSVPath:       sess.CSVPath,
		CSVFilename:   sess.CSVFilename,
		ExcelPath:     sess.ExcelPath,
		ExcelFilename: sess.ExcelFilename,
		Done:          sess.Done,
	}, nil
}

// Release removes a session from the store.
func (s *SessionStore) Release(id string) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
}

// Len returns the number of live sessions.
func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// StartJanitor evicts expired sessions every interval until ctx is done.
// No-op when the store has no TTL.
func (s *SessionStore) StartJanitor(ctx context.Context, interval time.Duration) {
	if s.ttl <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.evictExpired()
			}
		}
	}()
}

func (s *SessionStore) evictExpired() {
	cutoff := time.Now().Add(-s.ttl)

	s.mu.Lock()
	defer s.mu.Unlock()
	for id, sess := range s.sessions {
		if sess.CreatedAt.Before(cutoff) {
			delete(s.sessions, id)
			s.logger.Info("session expired", "session_id", id)
		}
	}
}
