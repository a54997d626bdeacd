package notify

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/sage-cli/sage/internal/clock"
	"github.com/sage-cli/sage/internal/constants"
	"github.com/sage-cli/sage/internal/ctxutil"
	sageerrors "github.com/sage-cli/sage/internal/errors"
)

const (
	// fileExtension is the file extension for notification files.
	fileExtension = ".yaml"
	// maxConcurrent is the maximum number of concurrent file reads.
	maxConcurrent = 50
	// maxFileSize is the maximum allowed size for a notification file.
	maxFileSize = 64 * 1024
	// filePerm is the permission for notification files.
	filePerm = 0o600
	// dirPerm is the permission for the notifications directory.
	dirPerm = 0o750
)

// Manager handles notification storage operations.
// It provides append, list, mark-read, and prune operations over
// individual YAML files.
type Manager struct {
	dir string
	clk clock.Clock
}

// NewManager creates a Manager rooted at the given SAGE home directory.
// If sageHome is empty, uses the default ~/.sage directory.
func NewManager(sageHome string, clk clock.Clock) (*Manager, error) {
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
	return &Manager{
		dir: filepath.Join(sageHome, constants.NotificationsDir),
		clk: clk,
	}, nil
}

// Dir returns the absolute path to the notifications directory.
func (m *Manager) Dir() string {
	return m.dir
}

// Add logs a new notification and returns it.
func (m *Manager) Add(ctx context.Context, level Level, message, taskID string) (*Notification, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return nil, err
	}

	n := &Notification{
		ID:        "ntf-" + uuid.New().String()[:8],
		Level:     level,
		Message:   message,
		TaskID:    taskID,
		CreatedAt: m.clk.Now().UTC(),
	}
	if err := n.Validate(); err != nil {
		return nil, fmt.Errorf("failed to add notification: %w", err)
	}

	if err := os.MkdirAll(m.dir, dirPerm); err != nil {
		return nil, fmt.Errorf("failed to create notifications directory: %w", err)
	}

	if err := m.write(n); err != nil {
		return nil, err
	}
	return n, nil
}

// Get retrieves a notification by ID.
func (m *Manager) Get(ctx context.Context, id string) (*Notification, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return nil, err
	}
	if id == "" {
		return nil, fmt.Errorf("failed to get notification: ID %w", sageerrors.ErrEmptyValue)
	}
	return m.read(id)
}

// List returns notifications matching the filter, newest first.
func (m *Manager) List(ctx context.Context, filter Filter) ([]*Notification, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return nil, err
	}

	if _, err := os.Stat(m.dir); os.IsNotExist(err) {
		return []*Notification{}, nil
	}

	entries, err := os.ReadDir(m.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}

	var (
		mu            sync.Mutex
		notifications = make([]*Notification, 0, len(entries))
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrent)

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), fileExtension) {
			continue
		}
		id := strings.TrimSuffix(entry.Name(), fileExtension)

		g.Go(func() error {
			if err := ctxutil.Canceled(gctx); err != nil {
				return err
			}
			n, err := m.read(id)
			if err != nil {
				// Skip corrupted or vanished files
				return nil
			}
			mu.Lock()
			notifications = append(notifications, n)
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}

	// Newest first, ID as a stable secondary key
	sort.Slice(notifications, func(i, j int) bool {
		if notifications[i].CreatedAt.Equal(notifications[j].CreatedAt) {
			return notifications[i].ID < notifications[j].ID
		}
		return notifications[i].CreatedAt.After(notifications[j].CreatedAt)
	})

	filtered := notifications[:0]
	for _, n := range notifications {
		if filter.Level != nil && n.Level != *filter.Level {
			continue
		}
		if filter.Unread && n.Read {
			continue
		}
		filtered = append(filtered, n)
	}
	if filter.Limit > 0 && len(filtered) > filter.Limit {
		filtered = filtered[:filter.Limit]
	}

	return filtered, nil
}

// MarkRead marks a notification as read.
func (m *Manager) MarkRead(ctx context.Context, id string) error {
	if err := ctxutil.Canceled(ctx); err != nil {
		return err
	}

	n, err := m.Get(ctx, id)
	if err != nil {
		return err
	}
	if n.Read {
		return nil
	}

	n.Read = true
	return m.write(n)
}

// Prune removes read notifications older than the cutoff.
// Returns the number of notifications removed.
func (m *Manager) Prune(ctx context.Context, olderThan time.Duration) (int, error) {
	notifications, err := m.List(ctx, Filter{})
	if err != nil {
		return 0, err
	}

	cutoff := m.clk.Now().Add(-olderThan)
	removed := 0
	for _, n := range notifications {
		if !n.Read || n.CreatedAt.After(cutoff) {
			continue
		}
		if err := os.Remove(m.path(n.ID)); err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return removed, fmt.Errorf("failed to prune notification '%s': %w", n.ID, err)
		}
		removed++
	}
	return removed, nil
}

// write persists a notification as YAML.
func (m *Manager) write(n *Notification) error {
	data, err := yaml.Marshal(n)
	if err != nil {
		return fmt.Errorf("failed to marshal notification '%s': %w", n.ID, err)
	}
	if err := os.WriteFile(m.path(n.ID), data, filePerm); err != nil {
		return fmt.Errorf("failed to write notification '%s': %w", n.ID, err)
	}
	return nil
}

// read loads and parses one notification file.
func (m *Manager) read(id string) (*Notification, error) {
	// Prevent path traversal through crafted IDs
	if strings.ContainsAny(id, "/\\") || strings.Contains(id, "..") {
		return nil, fmt.Errorf("failed to read notification: %w", sageerrors.ErrPathTraversal)
	}

	info, err := os.Stat(m.path(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("notification '%s': %w", id, sageerrors.ErrNotificationNotFound)
		}
		return nil, fmt.Errorf("failed to stat notification '%s': %w", id, err)
	}
	if info.Size() > maxFileSize {
		return nil, fmt.Errorf("%w: notification '%s' exceeds %d bytes", sageerrors.ErrValueOutOfRange, id, maxFileSize)
	}

	data, err := os.ReadFile(m.path(id)) //#nosec G304 -- path is validated above
	if err != nil {
		return nil, fmt.Errorf("failed to read notification '%s': %w", id, err)
	}

	var n Notification
	if err := yaml.Unmarshal(data, &n); err != nil {
		return nil, fmt.Errorf("failed to parse notification '%s': %w", id, err)
	}
	return &n, nil
}

// path returns the file path for a notification ID.
func (m *Manager) path(id string) string {
	return filepath.Join(m.dir, id+fileExtension)
}
