// Package taskmanager implements the task record store: task creation,
// status transitions, and result attachment, keyed by an opaque
// collision-resistant id.
package taskmanager

import (
	"crypto/rand"
	"encoding/hex"
	"sync"
	"time"

	"github.com/agustinabelencapo0/scrapecoord/internal/types"
)

// Status is one of the five lifecycle states a task can be in.
type Status string

const (
	StatusPending    Status = "pending"
	StatusScraping   Status = "scraping"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

func (s Status) terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Record is a snapshot of a task's state. Callers receive copies, never
// pointers into the manager's internal map, so a returned Record is safe
// to read without synchronization.
type Record struct {
	TaskID    string
	URL       string
	Status    Status
	CreatedAt time.Time
	UpdatedAt time.Time
	Result    map[string]any
	Error     string
}

// StatusPayload is the JSON shape returned by GET /status/{task_id}.
type StatusPayload struct {
	TaskID       string `json:"task_id"`
	URL          string `json:"url"`
	Status       Status `json:"status"`
	CreatedAt    string `json:"created_at"`
	UpdatedAt    string `json:"updated_at"`
	Error        string `json:"error,omitempty"`
	ResultStatus string `json:"result_status,omitempty"`
}

// AsStatusPayload renders r in the shape the status endpoint returns.
func (r Record) AsStatusPayload() StatusPayload {
	payload := StatusPayload{
		TaskID:    r.TaskID,
		URL:       r.URL,
		Status:    r.Status,
		CreatedAt: r.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt: r.UpdatedAt.UTC().Format(time.RFC3339),
		Error:     r.Error,
	}
	if r.Result != nil {
		if s, ok := r.Result["status"].(string); ok {
			payload.ResultStatus = s
		}
	}
	return payload
}

// Manager is a thread-safe, in-memory store of task records. Records are
// never deleted or recycled; they live for the process lifetime.
type Manager struct {
	mu    sync.RWMutex
	tasks map[string]*Record
}

// New creates an empty Manager.
func New() *Manager {
	return &Manager{tasks: make(map[string]*Record)}
}

// Create registers a new task for url, starting in StatusPending, and
// returns a copy of its record.
func (m *Manager) Create(url string) Record {
	now := time.Now()
	record := &Record{
		TaskID:    newTaskID(),
		URL:       url,
		Status:    StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	m.mu.Lock()
	m.tasks[record.TaskID] = record
	m.mu.Unlock()

	return *record
}

// Get returns a copy of the record for taskID, or ErrNotFound.
func (m *Manager) Get(taskID string) (Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	record, ok := m.tasks[taskID]
	if !ok {
		return Record{}, types.ErrNotFound
	}
	return *record, nil
}

// SetStatus advances taskID to status, recording err as the failure reason
// when non-empty. Returns ErrNotFound for an unknown id.
func (m *Manager) SetStatus(taskID string, status Status, errMsg string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	record, ok := m.tasks[taskID]
	if !ok {
		return types.ErrNotFound
	}
	if record.Status.terminal() {
		return nil
	}

	record.Status = status
	record.Error = errMsg
	record.UpdatedAt = time.Now()
	return nil
}

// SetResult attaches result to taskID, clears any prior error, and
// advances status to StatusCompleted. A task already in a terminal state
// is left unchanged. Returns ErrNotFound for an unknown id.
func (m *Manager) SetResult(taskID string, result map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	record, ok := m.tasks[taskID]
	if !ok {
		return types.ErrNotFound
	}
	if record.Status.terminal() {
		return nil
	}

	record.Result = result
	record.Status = StatusCompleted
	record.Error = ""
	record.UpdatedAt = time.Now()
	return nil
}

func newTaskID() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		panic(err)
	}
	return hex.EncodeToString(buf)
}
