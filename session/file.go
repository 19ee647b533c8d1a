package session

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/Bidzuweb/Bidzu-Final/logger"
)

const (
	fileMode = 0o600
	dirMode  = 0o700
)

// FileStore keeps the session in a single file readable only by the owner.
// Writes go through a temporary file and a rename, so a crash never leaves a
// partially written session behind.
type FileStore struct {
	path   string
	logger logger.Logger
	now    func() time.Time
	mu     sync.Mutex
}

func NewFileStore(path string, log logger.Logger) *FileStore {
	return &FileStore{path: path, logger: log, now: time.Now}
}

// Path returns the session file location.
func (s *FileStore) Path() string {
	return s.path
}

// Clear removes the session file. A missing file is not an error.
func (s *FileStore) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove session file: %w", err)
	}
	s.logger.Debug().Str("path", s.path).Msg("Session cleared")
	return nil
}

// Create writes a new session for credential, replacing any existing one.
func (s *FileStore) Create(ctx context.Context, credential string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if credential == "" {
		return ErrEmptyCredential
	}

	data, err := encodeRecord(record{Credential: credential, CreatedAt: s.now().UTC()})
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.writeAtomic(data); err != nil {
		return err
	}
	s.logger.Debug().Str("path", s.path).Msg("Session created")
	return nil
}

func (s *FileStore) writeAtomic(data []byte) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, dirMode); err != nil {
		return fmt.Errorf("create session directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".session-*")
	if err != nil {
		return fmt.Errorf("create temporary session file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		// No-op once the rename succeeded.
		_ = os.Remove(tmpPath)
	}()

	if err := tmp.Chmod(fileMode); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("restrict session file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write session file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync session file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close session file: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("replace session file: %w", err)
	}
	return nil
}

// Load reads the stored session.
func (s *FileStore) Load(ctx context.Context) (Session, error) {
	if err := ctx.Err(); err != nil {
		return Session{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return Session{}, ErrNoSession
	}
	if err != nil {
		return Session{}, fmt.Errorf("read session file: %w", err)
	}

	r, err := decodeRecord(data)
	if err != nil {
		return Session{}, fmt.Errorf("decode session file %s: %w", s.path, err)
	}
	if r.Credential == "" {
		return Session{}, ErrNoSession
	}
	return Session{Credential: r.Credential, CreatedAt: r.CreatedAt}, nil
}
