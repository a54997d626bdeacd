// Package validation provides input validation for SAGE.
// Validation failures are reported before any reasoning session is
// created; no steps are logged for rejected input.
package validation

import (
	"fmt"
	"strings"

	"github.com/sage-cli/sage/internal/constants"
	sageerrors "github.com/sage-cli/sage/internal/errors"
)

// Goal validates a reasoning goal string: it must be nonempty after
// trimming whitespace and at most 1000 characters.
func Goal(goal string) error {
	if strings.TrimSpace(goal) == "" {
		return sageerrors.ErrGoalRequired
	}
	if len(goal) > constants.MaxGoalLength {
		return fmt.Errorf("%w: %d characters exceeds maximum of %d",
			sageerrors.ErrGoalTooLong, len(goal), constants.MaxGoalLength)
	}
	return nil
}
