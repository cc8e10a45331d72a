// Package jsonstore persists all collections as one JSON document on disk.
package jsonstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/vms003/vatsal-medical/internal/store"
)

// Store reads the whole document, mutates it in memory and writes it back.
// The mutex serializes those cycles within one process only.
type Store struct {
	path string
	mu   sync.Mutex
}

var _ store.Store = (*Store)(nil)

// Open prepares the document at path, creating or repairing it as needed.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}
	s := &Store{path: path}
	if _, err := s.Load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) Path() string { return s.path }

// Load returns the current document. A missing, unreadable or corrupt file is
// replaced by the empty default document; missing collections are added and
// the file rewritten.
func (s *Store) Load() (*Document, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			slog.Warn("document store unreadable, resetting", "path", s.path, "error", err)
		}
		return s.reset()
	}

	var raw rawDocument
	if err := json.Unmarshal(data, &raw); err != nil {
		slog.Warn("document store corrupt, resetting", "path", s.path, "error", err)
		return s.reset()
	}

	doc, complete := raw.document()
	if !complete {
		if err := s.Save(doc); err != nil {
			return nil, err
		}
	}
	return doc, nil
}

// Save writes doc to a temporary file and renames it over the document.
func (s *Store) Save(doc *Document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode document: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".store-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write document: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to write document: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace document: %w", err)
	}
	return nil
}

// ReadDocument parses the document at path without repairing it. Unlike Load
// it fails on a corrupt file, so the file is never overwritten.
func ReadDocument(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read document: %w", err)
	}
	var raw rawDocument
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode document: %w", err)
	}
	doc, _ := raw.document()
	return doc, nil
}

func (s *Store) reset() (*Document, error) {
	doc := NewDocument()
	if err := s.Save(doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func (s *Store) view(fn func(doc *Document) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.Load()
	if err != nil {
		return err
	}
	return fn(doc)
}

func (s *Store) update(fn func(doc *Document) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.Load()
	if err != nil {
		return err
	}
	if err := fn(doc); err != nil {
		return err
	}
	return s.Save(doc)
}

func (s *Store) Users() store.UserRepository                 { return &userRepo{s: s} }
func (s *Store) Medicines() store.MedicineRepository         { return &medicineRepo{s: s} }
func (s *Store) Doctors() store.DoctorRepository             { return &doctorRepo{s: s} }
func (s *Store) Prescriptions() store.PrescriptionRepository { return &prescriptionRepo{s: s} }

func (s *Store) Ping(_ context.Context) error {
	_, err := os.Stat(s.path)
	return err
}

func (s *Store) Close() error { return nil }
