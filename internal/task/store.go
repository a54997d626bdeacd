// Package task provides task persistence for SAGE.
// This package implements the storage layer for task files, with atomic
// writes and file locking for data integrity.
package task

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/sage-cli/sage/internal/clock"
	"github.com/sage-cli/sage/internal/constants"
	"github.com/sage-cli/sage/internal/ctxutil"
	"github.com/sage-cli/sage/internal/domain"
	sageerrors "github.com/sage-cli/sage/internal/errors"
	"github.com/sage-cli/sage/internal/flock"
)

// LockTimeout is the maximum duration to wait for acquiring the store lock.
const LockTimeout = 5 * time.Second

// maxConcurrentReads bounds parallel task file reads during List.
const maxConcurrentReads = 16

// Directory and file permission constants.
const (
	dirPerm  = 0o750 // Secure directory permissions
	filePerm = 0o600 // Secure file permissions
)

// validTaskIDRegex matches valid task IDs (task-YYYYMMDD-HHMMSS with
// optional millisecond suffix).
var validTaskIDRegex = regexp.MustCompile(`^task-\d{8}-\d{6}(-\d{3})?$`)

// Filter narrows the tasks returned by List.
type Filter struct {
	// Status restricts results to a single status when non-nil.
	Status *constants.TaskStatus

	// Priority restricts results to a single priority when non-nil.
	Priority *constants.Priority

	// Limit caps the number of results. Zero means no limit.
	Limit int
}

// Store defines the interface for task persistence operations.
// The reasoning core consumes this interface read-only; the CLI uses
// the full CRUD surface.
type Store interface {
	// Create persists a new task. Returns ErrTaskExists if the ID is taken.
	Create(ctx context.Context, task *domain.Task) error

	// Get retrieves a task by ID. Returns ErrTaskNotFound if absent.
	Get(ctx context.Context, taskID string) (*domain.Task, error)

	// Update saves the current task state (atomic write). Status changes
	// are validated against the task state machine.
	Update(ctx context.Context, task *domain.Task) error

	// Delete removes a task. Returns ErrTaskNotFound if absent.
	Delete(ctx context.Context, taskID string) error

	// List returns tasks matching the filter, sorted by creation time
	// (oldest first). The creation-time order is the deterministic
	// tie-break basis for urgency ranking.
	List(ctx context.Context, filter Filter) ([]*domain.Task, error)

	// Overdue returns tasks whose due date is strictly before now and
	// whose status is not done or cancelled.
	Overdue(ctx context.Context) ([]*domain.Task, error)
}

// FileStore implements Store using one JSON file per task under the
// SAGE home directory. All operations serialize on a single lock file,
// matching the single-user CLI consistency model.
type FileStore struct {
	sageHome string // Usually ~/.sage
	clk      clock.Clock
}

// NewFileStore creates a new FileStore rooted at the given SAGE home
// directory. If sageHome is empty, uses the default ~/.sage directory.
func NewFileStore(sageHome string, clk clock.Clock) (*FileStore, error) {
	if sageHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get user home directory: %w", err)
		}
		sageHome = filepath.Join(home, constants.SageHome)
	}
	if clk == nil {
		clk = clock.RealClock{}
	}
	return &FileStore{sageHome: sageHome, clk: clk}, nil
}

// Create persists a new task.
func (s *FileStore) Create(ctx context.Context, task *domain.Task) error {
	if err := ctxutil.Canceled(ctx); err != nil {
		return err
	}
	if task == nil {
		return fmt.Errorf("failed to create task: task %w", sageerrors.ErrEmptyValue)
	}
	if task.ID == "" {
		return fmt.Errorf("failed to create task: task ID %w", sageerrors.ErrEmptyValue)
	}
	if err := task.Validate(); err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}

	if err := os.MkdirAll(s.tasksDir(), dirPerm); err != nil {
		return fmt.Errorf("failed to create tasks directory: %w", err)
	}

	lockFile, err := s.acquireLock(ctx)
	if err != nil {
		return fmt.Errorf("failed to create task '%s': %w", task.ID, err)
	}
	defer func() { _ = s.releaseLock(lockFile) }()

	taskFile := s.taskFilePath(task.ID)
	if _, err := os.Stat(taskFile); err == nil {
		return fmt.Errorf("failed to create task '%s': %w", task.ID, sageerrors.ErrTaskExists)
	}

	// Set schema version before saving
	task.SchemaVersion = constants.TaskSchemaVersion

	data, err := json.MarshalIndent(task, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to create task '%s': %w", task.ID, err)
	}

	if err := atomicWrite(taskFile, data); err != nil {
		return fmt.Errorf("failed to create task '%s': %w", task.ID, err)
	}

	return nil
}

// Get retrieves a task by ID.
func (s *FileStore) Get(ctx context.Context, taskID string) (*domain.Task, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return nil, err
	}
	if taskID == "" {
		return nil, fmt.Errorf("failed to get task: task ID %w", sageerrors.ErrEmptyValue)
	}

	return s.readTask(taskID)
}

// Update saves the current task state (atomic write).
// The status change from the persisted task is validated against the
// task state machine before writing.
func (s *FileStore) Update(ctx context.Context, task *domain.Task) error {
	if err := ctxutil.Canceled(ctx); err != nil {
		return err
	}
	if task == nil {
		return fmt.Errorf("failed to update task: task %w", sageerrors.ErrEmptyValue)
	}
	if task.ID == "" {
		return fmt.Errorf("failed to update task: task ID %w", sageerrors.ErrEmptyValue)
	}
	if err := task.Validate(); err != nil {
		return fmt.Errorf("failed to update task '%s': %w", task.ID, err)
	}

	lockFile, err := s.acquireLock(ctx)
	if err != nil {
		return fmt.Errorf("failed to update task '%s': %w", task.ID, err)
	}
	defer func() { _ = s.releaseLock(lockFile) }()

	current, err := s.readTask(task.ID)
	if err != nil {
		return fmt.Errorf("failed to update task '%s': %w", task.ID, err)
	}

	if err := domain.ValidateTransition(current.Status, task.Status); err != nil {
		return fmt.Errorf("failed to update task '%s': %w", task.ID, err)
	}

	// Preserve creation time; refresh modification time.
	task.CreatedAt = current.CreatedAt
	task.UpdatedAt = s.clk.Now().UTC()
	task.SchemaVersion = constants.TaskSchemaVersion

	data, err := json.MarshalIndent(task, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to update task '%s': %w", task.ID, err)
	}

	if err := atomicWrite(s.taskFilePath(task.ID), data); err != nil {
		return fmt.Errorf("failed to update task '%s': %w", task.ID, err)
	}

	return nil
}

// Delete removes a task file.
func (s *FileStore) Delete(ctx context.Context, taskID string) error {
	if err := ctxutil.Canceled(ctx); err != nil {
		return err
	}
	if taskID == "" {
		return fmt.Errorf("failed to delete task: task ID %w", sageerrors.ErrEmptyValue)
	}

	lockFile, err := s.acquireLock(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete task '%s': %w", taskID, err)
	}
	defer func() { _ = s.releaseLock(lockFile) }()

	taskFile := s.taskFilePath(taskID)
	if _, err := os.Stat(taskFile); os.IsNotExist(err) {
		return fmt.Errorf("failed to delete task '%s': %w", taskID, sageerrors.ErrTaskNotFound)
	}

	if err := os.Remove(taskFile); err != nil {
		return fmt.Errorf("failed to delete task '%s': %w", taskID, err)
	}

	return nil
}

// List returns tasks matching the filter, sorted by creation time
// (oldest first).
func (s *FileStore) List(ctx context.Context, filter Filter) ([]*domain.Task, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return nil, err
	}

	tasksDir := s.tasksDir()

	// Return empty slice if tasks directory doesn't exist
	if _, err := os.Stat(tasksDir); os.IsNotExist(err) {
		return []*domain.Task{}, nil
	}

	entries, err := os.ReadDir(tasksDir)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	var (
		mu    sync.Mutex
		tasks = make([]*domain.Task, 0, len(entries))
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentReads)

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		id := trimJSONExt(entry.Name())
		if !validTaskIDRegex.MatchString(id) {
			continue
		}

		g.Go(func() error {
			if err := ctxutil.Canceled(gctx); err != nil {
				return err
			}
			task, err := s.readTask(id)
			if err != nil {
				// Skip corrupted or vanished files
				return nil
			}
			mu.Lock()
			tasks = append(tasks, task)
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	// Sort by creation time (oldest first), ID as a stable secondary key
	sort.Slice(tasks, func(i, j int) bool {
		if tasks[i].CreatedAt.Equal(tasks[j].CreatedAt) {
			return tasks[i].ID < tasks[j].ID
		}
		return tasks[i].CreatedAt.Before(tasks[j].CreatedAt)
	})

	tasks = applyFilter(tasks, filter)

	return tasks, nil
}

// Overdue returns non-terminal tasks with a due date strictly in the past.
func (s *FileStore) Overdue(ctx context.Context) ([]*domain.Task, error) {
	tasks, err := s.List(ctx, Filter{})
	if err != nil {
		return nil, err
	}

	now := s.clk.Now()
	overdue := make([]*domain.Task, 0, len(tasks))
	for _, t := range tasks {
		if t.IsOverdue(now) {
			overdue = append(overdue, t)
		}
	}
	return overdue, nil
}

// applyFilter applies status, priority, and limit filters in order.
func applyFilter(tasks []*domain.Task, filter Filter) []*domain.Task {
	filtered := tasks[:0]
	for _, t := range tasks {
		if filter.Status != nil && t.Status != *filter.Status {
			continue
		}
		if filter.Priority != nil && t.Priority != *filter.Priority {
			continue
		}
		filtered = append(filtered, t)
	}
	if filter.Limit > 0 && len(filtered) > filter.Limit {
		filtered = filtered[:filter.Limit]
	}
	return filtered
}

// readTask loads and parses a single task file.
func (s *FileStore) readTask(taskID string) (*domain.Task, error) {
	data, err := os.ReadFile(s.taskFilePath(taskID)) //#nosec G304 -- path is constructed from validated base
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("task '%s': %w", taskID, sageerrors.ErrTaskNotFound)
		}
		return nil, fmt.Errorf("failed to read task '%s': %w", taskID, err)
	}

	var task domain.Task
	if err := json.Unmarshal(data, &task); err != nil {
		return nil, fmt.Errorf("failed to parse task '%s': corrupted state file: %w", taskID, err)
	}

	return &task, nil
}

// Helper methods for path construction

// tasksDir returns the path to the tasks directory.
func (s *FileStore) tasksDir() string {
	return filepath.Join(s.sageHome, constants.TasksDir)
}

// taskFilePath returns the path to a task's JSON file.
func (s *FileStore) taskFilePath(taskID string) string {
	return filepath.Join(s.tasksDir(), taskID+".json")
}

// lockFilePath returns the path to the store's lock file.
func (s *FileStore) lockFilePath() string {
	return filepath.Join(s.tasksDir(), constants.TaskLockFileName)
}

// trimJSONExt strips a .json extension from a file name.
func trimJSONExt(name string) string {
	const ext = ".json"
	if len(name) > len(ext) && name[len(name)-len(ext):] == ext {
		return name[:len(name)-len(ext)]
	}
	return name
}

// acquireLock acquires the exclusive store lock.
// It respects context cancellation during the lock acquisition retry loop.
func (s *FileStore) acquireLock(ctx context.Context) (*os.File, error) {
	if err := os.MkdirAll(s.tasksDir(), dirPerm); err != nil {
		return nil, fmt.Errorf("failed to create lock directory: %w", err)
	}

	f, err := os.OpenFile(s.lockFilePath(), os.O_CREATE|os.O_RDWR, filePerm) //#nosec G302,G304 -- lock file needs write access, path is constructed internally
	if err != nil {
		return nil, fmt.Errorf("failed to open lock file: %w", err)
	}

	deadline := time.Now().Add(LockTimeout)
	for {
		select {
		case <-ctx.Done():
			_ = f.Close()
			return nil, ctx.Err()
		default:
		}

		if err := flock.Exclusive(f.Fd()); err == nil {
			return f, nil
		}

		if time.Now().After(deadline) {
			_ = f.Close()
			return nil, fmt.Errorf("failed to acquire lock: %w", sageerrors.ErrLockTimeout)
		}

		time.Sleep(50 * time.Millisecond)
	}
}

// releaseLock releases a file lock.
func (s *FileStore) releaseLock(f *os.File) error {
	if f == nil {
		return nil
	}

	if err := flock.Unlock(f.Fd()); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to release lock: %w", err)
	}

	return f.Close()
}

// atomicWrite writes data to a file atomically using write-then-rename.
// Uses filePerm (0o600) for secure file permissions.
func atomicWrite(path string, data []byte) error {
	tmpPath := path + ".tmp"
	f, err := os.OpenFile(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, filePerm) //#nosec G304 -- path is constructed internally
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}

	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to write data: %w", err)
	}

	// Sync to disk (ensure data is persisted before rename)
	if err := f.Sync(); err != nil {
		_ = f.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to sync file: %w", err)
	}

	if err := f.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to close file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to rename file: %w", err)
	}

	return nil
}

// GenerateTaskID generates a task ID with format task-YYYYMMDD-HHMMSS.
// IDs generated within the same second will be identical.
// Use GenerateTaskIDUnique for scenarios requiring uniqueness checks.
func GenerateTaskID() string {
	now := time.Now().UTC()
	return fmt.Sprintf("task-%s-%s",
		now.Format("20060102"),
		now.Format("150405"))
}

// GenerateTaskIDUnique generates a task ID, adding milliseconds if
// needed for uniqueness against the provided set of existing IDs.
//
// This provides best-effort uniqueness based on a snapshot of IDs; the
// Create method handles the actual uniqueness guarantee via filesystem
// checks (retry on ErrTaskExists).
func GenerateTaskIDUnique(existingIDs map[string]bool) string {
	id := GenerateTaskID()
	if !existingIDs[id] {
		return id
	}
	now := time.Now().UTC()
	return fmt.Sprintf("task-%s-%s-%03d",
		now.Format("20060102"),
		now.Format("150405"),
		now.Nanosecond()/1000000)
}
