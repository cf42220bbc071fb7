// Package localsync mirrors canvas snapshots to a local-first store on disk.
//
// Writes are debounced and atomic (temp file + rename). A filesystem watcher
// notices writes made by other processes sharing the directory and re-reads
// them; a write id embedded in each file keeps a process from re-ingesting
// its own writes as external changes.
package localsync

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"canvas_backend/canvas"
	"canvas_backend/logging"
)

// DefaultDebounce is the settle delay between a mutation and its write.
const DefaultDebounce = 800 * time.Millisecond

// ChangeFunc receives snapshots written by another process.
type ChangeFunc func(projectID string, snap canvas.Snapshot)

// snapshotFile is the on-disk envelope around a snapshot.
type snapshotFile struct {
	ProjectID string          `json:"projectId"`
	WriteID   string          `json:"writeId"`
	SavedAt   time.Time       `json:"savedAt"`
	Snapshot  canvas.Snapshot `json:"snapshot"`
}

// Mirror is the local persistence sync layer. One Mirror serves all projects
// of a session; files are keyed by project id.
type Mirror struct {
	dir      string
	debounce time.Duration
	logger   *logging.Logger
	onChange ChangeFunc
	watcher  *fsnotify.Watcher
	stopChan chan struct{}

	mu         sync.Mutex
	pending    map[string]canvas.Snapshot
	timers     map[string]*time.Timer
	selfWrites map[string]string // project id -> last write id by this process
	watchDebounce map[string]*time.Timer
}

// Config holds mirror settings.
type Config struct {
	// Dir is the mirror directory, created if missing
	Dir string
	// Debounce is the settle delay before a snapshot write
	Debounce time.Duration
}

// NewMirror creates the mirror and starts watching the directory for
// external changes. onChange may be nil when cross-process awareness is not
// needed.
func NewMirror(cfg Config, logger *logging.Logger, onChange ChangeFunc) (*Mirror, error) {
	if logger == nil {
		return nil, fmt.Errorf("localsync: logger cannot be nil")
	}
	if cfg.Dir == "" {
		return nil, fmt.Errorf("localsync: directory cannot be empty")
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("localsync: failed to create sync directory: %w", err)
	}

	m := &Mirror{
		dir:           cfg.Dir,
		debounce:      cfg.Debounce,
		logger:        logger.Named("localsync"),
		onChange:      onChange,
		stopChan:      make(chan struct{}),
		pending:       make(map[string]canvas.Snapshot),
		timers:        make(map[string]*time.Timer),
		selfWrites:    make(map[string]string),
		watchDebounce: make(map[string]*time.Timer),
	}

	if onChange != nil {
		if err := m.startWatcher(); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Write schedules a debounced snapshot write. Rapid successive writes for
// the same project collapse into one; only the newest snapshot reaches disk.
func (m *Mirror) Write(projectID string, snap canvas.Snapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.pending[projectID] = snap.Clone()
	if timer, ok := m.timers[projectID]; ok {
		timer.Stop()
	}
	m.timers[projectID] = time.AfterFunc(m.debounce, func() {
		if err := m.flush(projectID); err != nil {
			m.logger.Warn("snapshot write failed",
				zap.String("project_id", projectID),
				zap.Error(err),
			)
		}
	})
}

// Flush writes any pending snapshot for the project immediately.
func (m *Mirror) Flush(projectID string) error {
	m.mu.Lock()
	if timer, ok := m.timers[projectID]; ok {
		timer.Stop()
		delete(m.timers, projectID)
	}
	m.mu.Unlock()
	return m.flush(projectID)
}

// FlushAll writes every pending snapshot. Used on shutdown.
func (m *Mirror) FlushAll() error {
	m.mu.Lock()
	ids := make([]string, 0, len(m.pending))
	for id := range m.pending {
		ids = append(ids, id)
	}
	m.mu.Unlock()

	var firstErr error
	for _, id := range ids {
		if err := m.Flush(id); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Read loads the stored snapshot for a project.
func (m *Mirror) Read(projectID string) (canvas.Snapshot, error) {
	data, err := os.ReadFile(m.path(projectID))
	if err != nil {
		return canvas.Snapshot{}, fmt.Errorf("localsync: failed to read snapshot: %w", err)
	}
	var file snapshotFile
	if err := json.Unmarshal(data, &file); err != nil {
		return canvas.Snapshot{}, fmt.Errorf("localsync: failed to parse snapshot: %w", err)
	}
	return file.Snapshot, nil
}

// Close stops the watcher and flushes pending writes.
func (m *Mirror) Close() error {
	close(m.stopChan)
	if m.watcher != nil {
		m.watcher.Close()
	}
	return m.FlushAll()
}

func (m *Mirror) path(projectID string) string {
	return filepath.Join(m.dir, projectID+".json")
}

// flush writes the pending snapshot through a temp file and rename so a
// crash never leaves a truncated mirror behind.
func (m *Mirror) flush(projectID string) error {
	m.mu.Lock()
	snap, ok := m.pending[projectID]
	if !ok {
		m.mu.Unlock()
		return nil
	}
	delete(m.pending, projectID)
	writeID := uuid.NewString()
	m.selfWrites[projectID] = writeID
	m.mu.Unlock()

	data, err := json.MarshalIndent(snapshotFile{
		ProjectID: projectID,
		WriteID:   writeID,
		SavedAt:   time.Now().UTC(),
		Snapshot:  snap,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("localsync: failed to encode snapshot: %w", err)
	}

	path := m.path(projectID)
	tmp, err := os.CreateTemp(m.dir, ".sync-*")
	if err != nil {
		return fmt.Errorf("localsync: failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("localsync: failed to write snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("localsync: failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("localsync: failed to replace snapshot: %w", err)
	}

	m.logger.Debug("wrote snapshot",
		zap.String("project_id", projectID),
		zap.Int("bytes", len(data)),
	)
	return nil
}

// startWatcher watches the mirror directory for writes by other processes.
func (m *Mirror) startWatcher() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("localsync: failed to create watcher: %w", err)
	}
	if err := watcher.Add(m.dir); err != nil {
		watcher.Close()
		return fmt.Errorf("localsync: failed to watch %s: %w", m.dir, err)
	}
	m.watcher = watcher

	go m.watchLoop()
	return nil
}

func (m *Mirror) watchLoop() {
	for {
		select {
		case <-m.stopChan:
			return

		case event, ok := <-m.watcher.Events:
			if !ok {
				return
			}
			if filepath.Ext(event.Name) != ".json" {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			// Debounce rapid changes per file; editors and renames can
			// produce bursts.
			name := event.Name
			m.mu.Lock()
			if timer, exists := m.watchDebounce[name]; exists {
				timer.Stop()
			}
			m.watchDebounce[name] = time.AfterFunc(50*time.Millisecond, func() {
				m.handleFileChange(name)
			})
			m.mu.Unlock()

		case err, ok := <-m.watcher.Errors:
			if !ok {
				return
			}
			m.logger.Warn("watcher error", zap.Error(err))
		}
	}
}

// handleFileChange re-reads a changed file and forwards it when the write
// came from another process. Our own writes carry a write id we remember,
// which breaks the update loop.
func (m *Mirror) handleFileChange(path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		// The file may have been replaced mid-read; the next event retries.
		return
	}
	var file snapshotFile
	if err := json.Unmarshal(data, &file); err != nil {
		m.logger.Debug("ignoring unparseable snapshot file",
			zap.String("path", path),
			zap.Error(err),
		)
		return
	}

	m.mu.Lock()
	self := m.selfWrites[file.ProjectID] == file.WriteID
	m.mu.Unlock()
	if self {
		return
	}

	m.logger.Debug("observed external snapshot change",
		zap.String("project_id", file.ProjectID),
	)
	if m.onChange != nil {
		m.onChange(file.ProjectID, file.Snapshot)
	}
}
