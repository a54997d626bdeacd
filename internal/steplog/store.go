// Package steplog provides append-only persistence for reasoning steps.
// Each session's steps are written to a JSON-lines file so a completed
// or failed session can be replayed for audit.
package steplog

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/google/uuid"

	"github.com/sage-cli/sage/internal/clock"
	"github.com/sage-cli/sage/internal/constants"
	"github.com/sage-cli/sage/internal/ctxutil"
	"github.com/sage-cli/sage/internal/domain"
	sageerrors "github.com/sage-cli/sage/internal/errors"
)

// Directory and file permission constants.
const (
	dirPerm  = 0o750
	filePerm = 0o600
)

// maxLineBytes bounds a single step record when scanning the log.
const maxLineBytes = 1024 * 1024

// Store defines the interface for reasoning step persistence.
type Store interface {
	// SaveStep appends a step record for the session, generating its ID
	// and timestamp. The returned step is the persisted value.
	SaveStep(ctx context.Context, sessionID string, stepNumber int, phase constants.Phase, input, output string, durationMs int64) (domain.ReasoningStep, error)

	// GetSteps returns the session's steps ordered by step number.
	// Returns ErrSessionNotFound if no steps were ever persisted.
	GetSteps(ctx context.Context, sessionID string) ([]domain.ReasoningStep, error)
}

// FileStore implements Store using one JSON-lines file per session
// under the SAGE home directory.
type FileStore struct {
	sageHome string
	clk      clock.Clock
}

// NewFileStore creates a FileStore rooted at the given SAGE home
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

// SaveStep appends a step record to the session's log file.
func (s *FileStore) SaveStep(ctx context.Context, sessionID string, stepNumber int, phase constants.Phase, input, output string, durationMs int64) (domain.ReasoningStep, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return domain.ReasoningStep{}, err
	}
	if sessionID == "" {
		return domain.ReasoningStep{}, fmt.Errorf("failed to save step: session ID %w", sageerrors.ErrEmptyValue)
	}
	if stepNumber < 1 {
		return domain.ReasoningStep{}, fmt.Errorf("failed to save step: step number %d %w", stepNumber, sageerrors.ErrValueOutOfRange)
	}
	if durationMs < 0 {
		durationMs = 0
	}

	step := domain.ReasoningStep{
		ID:         "stp-" + uuid.New().String()[:8],
		SessionID:  sessionID,
		StepNumber: stepNumber,
		Phase:      phase,
		Input:      input,
		Output:     output,
		DurationMs: durationMs,
		CreatedAt:  s.clk.Now().UTC(),
	}

	sessionDir := s.sessionDir(sessionID)
	if err := os.MkdirAll(sessionDir, dirPerm); err != nil {
		return domain.ReasoningStep{}, fmt.Errorf("failed to create session directory: %w", err)
	}

	entry, err := json.Marshal(step)
	if err != nil {
		return domain.ReasoningStep{}, fmt.Errorf("failed to save step: %w", err)
	}
	entry = append(entry, '\n')

	f, err := os.OpenFile(s.logFilePath(sessionID), os.O_APPEND|os.O_CREATE|os.O_WRONLY, filePerm) //#nosec G304 -- path is constructed internally
	if err != nil {
		return domain.ReasoningStep{}, fmt.Errorf("failed to save step: %w", err)
	}
	defer func() { _ = f.Close() }()

	if _, err := f.Write(entry); err != nil {
		return domain.ReasoningStep{}, fmt.Errorf("failed to save step: %w", err)
	}

	// Sync to disk so audit records survive a crash
	if err := f.Sync(); err != nil {
		return domain.ReasoningStep{}, fmt.Errorf("failed to sync step log: %w", err)
	}

	return step, nil
}

// GetSteps reads back the session's steps ordered by step number.
func (s *FileStore) GetSteps(ctx context.Context, sessionID string) ([]domain.ReasoningStep, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return nil, err
	}
	if sessionID == "" {
		return nil, fmt.Errorf("failed to get steps: session ID %w", sageerrors.ErrEmptyValue)
	}

	f, err := os.Open(s.logFilePath(sessionID)) //#nosec G304 -- path is constructed internally
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("session '%s': %w", sessionID, sageerrors.ErrSessionNotFound)
		}
		return nil, fmt.Errorf("failed to read step log: %w", err)
	}
	defer func() { _ = f.Close() }()

	var steps []domain.ReasoningStep
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var step domain.ReasoningStep
		if err := json.Unmarshal(line, &step); err != nil {
			// Skip corrupted lines rather than failing the whole replay
			continue
		}
		steps = append(steps, step)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan step log: %w", err)
	}

	sort.Slice(steps, func(i, j int) bool {
		return steps[i].StepNumber < steps[j].StepNumber
	})

	return steps, nil
}

// sessionDir returns the path to a session's directory.
func (s *FileStore) sessionDir(sessionID string) string {
	return filepath.Join(s.sageHome, constants.SessionsDir, sessionID)
}

// logFilePath returns the path to a session's step log file.
func (s *FileStore) logFilePath(sessionID string) string {
	return filepath.Join(s.sessionDir(sessionID), constants.StepLogFileName)
}

// Ensure FileStore implements Store.
var _ Store = (*FileStore)(nil)
