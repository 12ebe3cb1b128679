package analyzer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"time"
)

// ExecRunner runs one task in a child OS process by re-executing this
// binary in single-task mode. The process boundary contains extractor
// crashes: a worker dying on a malformed image cannot take down the
// dispatcher or sibling workers, and its connections die with it. The
// timeout bounds hung extractor calls so one stuck worker cannot block the
// batch barrier forever.
type ExecRunner struct {
	ConfigPath string
	Timeout    time.Duration
}

func (r *ExecRunner) Run(ctx context.Context, taskID int64) error {
	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("locate executable: %w", err)
	}

	runCtx := ctx
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(runCtx, exe, "-config", r.ConfigPath, "-task", strconv.FormatInt(taskID, 10))
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
			return fmt.Errorf("worker timed out after %s", r.Timeout)
		}
		return fmt.Errorf("worker exited: %w", err)
	}
	return nil
}
