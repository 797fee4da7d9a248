// Package stats persists statistics shown in the UI between runs
package stats

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Stats holds persistent statistics
type Stats struct {
	FreedLifetime int64     `json:"freed_lifetime"`
	FilesRemoved  int64     `json:"files_removed"`
	LastDirectory string    `json:"last_directory,omitempty"` // Directory scanned most recently
	LastScan      time.Time `json:"last_scan"`
}

// Manager handles loading and saving stats
type Manager struct {
	path         string
	stats        Stats
	mu           sync.RWMutex
	dirty        bool
	saveTimer    *time.Timer
	saveDuration time.Duration
}

// NewManager creates a stats manager using the default stats file
func NewManager() *Manager {
	return NewManagerAt(DefaultPath())
}

// NewManagerAt creates a stats manager backed by path
func NewManagerAt(path string) *Manager {
	return &Manager{
		path:         path,
		saveDuration: 2 * time.Second, // Debounce saves
	}
}

// DefaultPath returns the default stats file path
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".dupedive-stats.json"
	}
	return filepath.Join(home, ".dupedive", "stats.json")
}

// Path returns the backing file path
func (m *Manager) Path() string {
	return m.path
}

// Load loads stats from disk
func (m *Manager) Load() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, err := os.ReadFile(m.path)
	if err != nil {
		if os.IsNotExist(err) {
			// No stats file yet, start fresh
			m.stats = Stats{}
			return nil
		}
		return err
	}

	return json.Unmarshal(data, &m.stats)
}

// Save saves stats to disk immediately
func (m *Manager) Save() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.saveLocked()
}

// saveLocked saves stats without acquiring the lock (caller must hold lock)
func (m *Manager) saveLocked() error {
	if err := os.MkdirAll(filepath.Dir(m.path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(m.stats, "", "  ")
	if err != nil {
		return err
	}

	m.dirty = false
	return os.WriteFile(m.path, data, 0644)
}

// Snapshot returns a copy of the current stats
func (m *Manager) Snapshot() Stats {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.stats
}

// FreedLifetime returns the lifetime freed bytes
func (m *Manager) FreedLifetime() int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.stats.FreedLifetime
}

// LastDirectory returns the most recently scanned directory
func (m *Manager) LastDirectory() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.stats.LastDirectory
}

// SetLastDirectory records dir as the most recently scanned directory
func (m *Manager) SetLastDirectory(dir string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.stats.LastDirectory = dir
	m.stats.LastScan = time.Now()
	m.scheduleSaveLocked()
}

// AddFreed records one removed file of the given size
func (m *Manager) AddFreed(bytes int64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.stats.FreedLifetime += bytes
	m.stats.FilesRemoved++
	m.scheduleSaveLocked()
}

// scheduleSaveLocked marks stats dirty and restarts the debounce timer
func (m *Manager) scheduleSaveLocked() {
	m.dirty = true

	if m.saveTimer != nil {
		m.saveTimer.Stop()
	}

	m.saveTimer = time.AfterFunc(m.saveDuration, func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if m.dirty {
			_ = m.saveLocked() // Ignore errors for background save
		}
	})
}

// Close ensures any pending saves are written
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.saveTimer != nil {
		m.saveTimer.Stop()
		m.saveTimer = nil
	}

	if m.dirty {
		return m.saveLocked()
	}
	return nil
}
