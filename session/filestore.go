package session

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/tailored-agentic-units/webagent/core/protocol"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const fileExt = ".json"

// FileStore persists each session as one JSON document under a directory.
// Writes go to a temp file that is renamed into place, so a document on
// disk is always complete.
type FileStore struct {
	root   string
	locker Locker
	mu     sync.Mutex
	now    func() time.Time
}

// NewFileStore creates a store rooted at dir. The directory is created on
// first write.
func NewFileStore(dir string) *FileStore {
	return &FileStore{root: dir, now: time.Now}
}

func (s *FileStore) GetOrCreate(id string) (*Session, error) {
	if id == "" {
		return nil, ErrEmptyID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.load(id)
	if err != nil {
		return nil, err
	}
	if sess != nil {
		return sess, nil
	}

	now := s.now()
	sess = &Session{ID: id, CreatedAt: now, UpdatedAt: now}
	if err := s.save(sess); err != nil {
		return nil, err
	}
	return sess, nil
}

func (s *FileStore) Append(id string, msgs ...protocol.Message) error {
	if id == "" {
		return ErrEmptyID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.load(id)
	if err != nil {
		return err
	}
	now := s.now()
	if sess == nil {
		sess = &Session{ID: id, CreatedAt: now}
	}
	sess.Messages = append(sess.Messages, msgs...)
	sess.UpdatedAt = now
	return s.save(sess)
}

func (s *FileStore) Snapshot(id string) ([]protocol.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.load(id)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, &UnknownSessionError{ID: id}
	}
	return sess.Messages, nil
}

// IDs lists sessions found on disk. Unreadable directories yield no ids.
func (s *FileStore) IDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := os.ReadDir(s.root)
	if err != nil {
		return []string{}
	}

	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") || !strings.HasSuffix(name, fileExt) {
			continue
		}
		id, err := url.PathUnescape(strings.TrimSuffix(name, fileExt))
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (s *FileStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path(id)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete session %s: %w", id, err)
	}
	return nil
}

func (s *FileStore) Lock(ctx context.Context, id string) (func(), error) {
	return s.locker.Lock(ctx, id)
}

func (s *FileStore) path(id string) string {
	return filepath.Join(s.root, url.PathEscape(id)+fileExt)
}

// load returns nil, nil when the session does not exist.
func (s *FileStore) load(id string) (*Session, error) {
	data, err := os.ReadFile(s.path(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("load session %s: %w", id, err)
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", id, err)
	}
	return &sess, nil
}

func (s *FileStore) save(sess *Session) error {
	data, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return fmt.Errorf("encode session %s: %w", sess.ID, err)
	}

	if err := os.MkdirAll(s.root, 0o755); err != nil {
		return fmt.Errorf("save session %s: %w", sess.ID, err)
	}

	tmp, err := os.CreateTemp(s.root, ".tmp-*")
	if err != nil {
		return fmt.Errorf("save session %s: %w", sess.ID, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("save session %s: %w", sess.ID, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("save session %s: %w", sess.ID, err)
	}

	if err := os.Rename(tmpName, s.path(sess.ID)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("save session %s: %w", sess.ID, err)
	}
	return nil
}
