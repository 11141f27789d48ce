// Package memory is an in-memory remote.Store for tests and
// credential-less development runs.
package memory

import (
	"context"
	"fmt"
	"sync"
)

type folder struct {
	id     string
	name   string
	parent string
}

type file struct {
	id     string
	name   string
	folder string
	data   []byte
}

type Store struct {
	mu      sync.Mutex
	folders []folder
	files   []file
	nextID  int
}

func New() *Store {
	return &Store{}
}

func (s *Store) EnsureFolder(_ context.Context, name, parentID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, f := range s.folders {
		if f.name == name && f.parent == parentID {
			return f.id, nil
		}
	}
	s.nextID++
	f := folder{id: fmt.Sprintf("folder-%d", s.nextID), name: name, parent: parentID}
	s.folders = append(s.folders, f)
	return f.id, nil
}

func (s *Store) PutFile(_ context.Context, folderID, name string, data []byte) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, f := range s.files {
		if f.folder == folderID && f.name == name {
			s.files[i].data = append([]byte(nil), data...)
			return f.id, nil
		}
	}
	s.nextID++
	f := file{
		id:     fmt.Sprintf("file-%d", s.nextID),
		name:   name,
		folder: folderID,
		data:   append([]byte(nil), data...),
	}
	s.files = append(s.files, f)
	return f.id, nil
}

func (s *Store) FindFile(_ context.Context, name, parentID string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, f := range s.files {
		if f.folder == parentID && f.name == name {
			return f.id, true, nil
		}
	}
	return "", false, nil
}

func (s *Store) Download(_ context.Context, fileID string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, f := range s.files {
		if f.id == fileID {
			return append([]byte(nil), f.data...), nil
		}
	}
	return nil, fmt.Errorf("file %s not found", fileID)
}

// FolderCount reports how many folders exist; used by tests asserting
// idempotent creation.
func (s *Store) FolderCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.folders)
}

// FileCount reports how many file entries exist.
func (s *Store) FileCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.files)
}
