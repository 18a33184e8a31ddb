package storage

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"sync"
	"time"

	"github.com/yourname/habittracker/internal"
)

type FileStorage struct {
	users     map[string]*internal.User    // email -> User
	usersByID map[string]*internal.User    // id -> User
	sessions  map[string]*internal.Session // tokenHash -> Session
	payloads  map[string]*internal.SyncPayload
	mu        sync.RWMutex

	usersFile     string
	sessionsFile  string
	snapshotsFile string

	saveUsersChan     chan struct{}
	saveSessionsChan  chan struct{}
	saveSnapshotsChan chan struct{}
	shutdownChan      chan struct{}
	saveDelay         time.Duration
	logger            internal.Logger
}

func NewFileStorage(usersFile, sessionsFile, snapshotsFile string, logger internal.Logger) (*FileStorage, error) {
	s := &FileStorage{
		users:             make(map[string]*internal.User),
		usersByID:         make(map[string]*internal.User),
		sessions:          make(map[string]*internal.Session),
		payloads:          make(map[string]*internal.SyncPayload),
		usersFile:         usersFile,
		sessionsFile:      sessionsFile,
		snapshotsFile:     snapshotsFile,
		saveUsersChan:     make(chan struct{}, 1),
		saveSessionsChan:  make(chan struct{}, 1),
		saveSnapshotsChan: make(chan struct{}, 1),
		shutdownChan:      make(chan struct{}),
		saveDelay:         500 * time.Millisecond,
		logger:            logger,
	}

	if err := s.loadUsers(); err != nil {
		logger.Errorf("storage: failed to load users: %v", err)
		return nil, err
	}
	if err := s.loadSessions(); err != nil {
		logger.Errorf("storage: failed to load sessions: %v", err)
		return nil, err
	}
	if err := s.loadSnapshots(); err != nil {
		logger.Errorf("storage: failed to load snapshots: %v", err)
		return nil, err
	}

	go s.saveWorker(s.saveUsersChan, s.saveUsers, "users")
	go s.saveWorker(s.saveSessionsChan, s.saveSessions, "sessions")
	go s.saveWorker(s.saveSnapshotsChan, s.saveSnapshots, "snapshots")

	return s, nil
}

func (s *FileStorage) loadUsers() error {
	var users []*internal.User
	if err := readFileJSON(s.usersFile, &users); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range users {
		s.users[u.Email] = u
		s.usersByID[u.ID] = u
	}
	return nil
}

func (s *FileStorage) loadSessions() error {
	var sessions []*internal.Session
	if err := readFileJSON(s.sessionsFile, &sessions); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sess := range sessions {
		s.sessions[sess.TokenHash] = sess
	}
	return nil
}

func (s *FileStorage) loadSnapshots() error {
	payloads := make(map[string]*internal.SyncPayload)
	if err := readFileJSON(s.snapshotsFile, &payloads); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.payloads = payloads
	return nil
}

func readFileJSON(path string, target interface{}) error {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer file.Close()

	if err := json.NewDecoder(file).Decode(target); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return err
	}
	return nil
}

func atomicWriteFileJSON(filePath string, data interface{}) error {
	tempFile := filePath + ".tmp"
	f, err := os.Create(tempFile)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		f.Close()
		os.Remove(tempFile)
		return err
	}

	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tempFile)
		return err
	}

	if err := f.Close(); err != nil {
		os.Remove(tempFile)
		return err
	}

	return os.Rename(tempFile, filePath)
}

func (s *FileStorage) saveUsers() error {
	s.mu.RLock()
	users := make([]*internal.User, 0, len(s.users))
	for _, u := range s.users {
		users = append(users, u)
	}
	s.mu.RUnlock()
	return atomicWriteFileJSON(s.usersFile, users)
}

func (s *FileStorage) saveSessions() error {
	s.mu.RLock()
	sessions := make([]*internal.Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		sessions = append(sessions, sess)
	}
	s.mu.RUnlock()
	return atomicWriteFileJSON(s.sessionsFile, sessions)
}

func (s *FileStorage) saveSnapshots() error {
	s.mu.RLock()
	payloads := make(map[string]*internal.SyncPayload, len(s.payloads))
	for id, p := range s.payloads {
		payloads[id] = p
	}
	s.mu.RUnlock()
	return atomicWriteFileJSON(s.snapshotsFile, payloads)
}

// saveWorker batches save requests to avoid a disk write per mutation.
func (s *FileStorage) saveWorker(kick <-chan struct{}, save func() error, what string) {
	timer := time.NewTimer(s.saveDelay)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-kick:
			timer.Reset(s.saveDelay)
		case <-timer.C:
			if err := save(); err != nil {
				s.logger.Errorf("storage: error saving %s: %v", what, err)
			}
		case <-s.shutdownChan:
			return
		}
	}
}

func (s *FileStorage) Close() error {
	close(s.shutdownChan)

	// Flush pending data synchronously on shutdown
	if err := s.saveUsers(); err != nil {
		return err
	}
	if err := s.saveSessions(); err != nil {
		return err
	}
	return s.saveSnapshots()
}

// --- UserRepository ---

func (s *FileStorage) CreateUser(ctx context.Context, user *internal.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.users[user.Email]; exists {
		return ErrEmailTaken
	}
	s.users[user.Email] = user
	s.usersByID[user.ID] = user
	s.kick(s.saveUsersChan)
	return nil
}

func (s *FileStorage) GetUserByEmail(ctx context.Context, email string) (*internal.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[email]
	if !ok {
		return nil, ErrNotFound
	}
	return u, nil
}

// --- SessionRepository ---

func (s *FileStorage) CreateSession(ctx context.Context, session *internal.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.TokenHash] = session
	s.kick(s.saveSessionsChan)
	return nil
}

func (s *FileStorage) GetUserBySession(ctx context.Context, tokenHash string, now time.Time) (*internal.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[tokenHash]
	if !ok || sess.ExpiresAt.Before(now) {
		return nil, ErrNotFound
	}
	u, ok := s.usersByID[sess.UserID]
	if !ok {
		return nil, ErrNotFound
	}
	return u, nil
}

func (s *FileStorage) DeleteSession(ctx context.Context, tokenHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, tokenHash)
	s.kick(s.saveSessionsChan)
	return nil
}

// --- SnapshotRepository ---

func (s *FileStorage) GetPayload(ctx context.Context, userID string) (*internal.SyncPayload, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.payloads[userID]
	if !ok {
		return emptyPayload(), nil
	}
	return copyPayload(p), nil
}

func (s *FileStorage) ReplacePayload(ctx context.Context, userID string, payload *internal.SyncPayload) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.payloads[userID] = copyPayload(payload)
	s.kick(s.saveSnapshotsChan)
	return nil
}

func (s *FileStorage) kick(ch chan struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}

func emptyPayload() *internal.SyncPayload {
	return &internal.SyncPayload{
		Categories: []internal.HabitCategory{},
		Habits:     []internal.Habit{},
		Entries:    []internal.HabitEntry{},
	}
}

func copyPayload(p *internal.SyncPayload) *internal.SyncPayload {
	return &internal.SyncPayload{
		Categories: append([]internal.HabitCategory{}, p.Categories...),
		Habits:     append([]internal.Habit{}, p.Habits...),
		Entries:    append([]internal.HabitEntry{}, p.Entries...),
	}
}

// --- Compile-time assertions ---
var _ UserRepository = (*FileStorage)(nil)
var _ SessionRepository = (*FileStorage)(nil)
var _ SnapshotRepository = (*FileStorage)(nil)
