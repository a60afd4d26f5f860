// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/morganforge/tafakkur/internal/model"
	"github.com/morganforge/tafakkur/internal/util"
)

// SnapshotFileName is the file the snapshot lives in under the app dir.
const SnapshotFileName = "conversations.json"

// Snapshot is the persisted conversation state.
type Snapshot struct {
	Conversations []*model.Conversation `json:"conversations"`
	LastActiveID  string                `json:"last_active_id"`
	SavedAt       time.Time             `json:"saved_at"`
}

// =============================================================================
// SNAPSHOT STORE
// =============================================================================

// Store reads and writes the conversation snapshot.
type Store struct {
	path string

	// mu serializes writes so concurrent saves cannot interleave.
	mu sync.Mutex
}

// NewStore creates a store over an explicit snapshot path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// DefaultStore places the snapshot under ~/.tafakkur/.
func DefaultStore() (*Store, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return NewStore(filepath.Join(homeDir, ".tafakkur", SnapshotFileName)), nil
}

// Path returns the snapshot file path.
func (s *Store) Path() string {
	return s.path
}

// Load reads the snapshot. A missing file yields an empty snapshot, not
// an error.
func (s *Store) Load() (*Snapshot, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Snapshot{Conversations: make([]*model.Conversation, 0)}, nil
		}
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to parse snapshot: %w", err)
	}
	if snap.Conversations == nil {
		snap.Conversations = make([]*model.Conversation, 0)
	}
	return &snap, nil
}

// Save writes the snapshot atomically. The SavedAt stamp is set here.
func (s *Store) Save(snap *Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap.SavedAt = time.Now()

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	if err := util.AtomicWriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	return nil
}
