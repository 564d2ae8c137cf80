package scanner

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	domain "github.com/affordableaudits/audit-api/internal/domain/audit"
)

// emptyReport is what blank analyzer output parses as on a clean exit.
const emptyReport = "{}"

// Adapter invokes one external analyzer as a subprocess with a hard
// wall-clock timeout and classifies its exit status. Exit-code meaning is
// tool-specific: a non-zero code can mean "findings present" rather than
// "execution error".
type Adapter struct {
	tool       domain.Tool
	binary     string
	buildArgs  func(artifactPath string) []string
	exitStatus map[int]domain.ScanStatus
	timeout    time.Duration
}

func (a *Adapter) Tool() domain.Tool { return a.tool }

func (a *Adapter) Scan(ctx context.Context, artifactPath string) (domain.ScanResult, error) {
	res := domain.ScanResult{Tool: a.tool, Status: domain.ScanFailed}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, a.binary, a.buildArgs(artifactPath)...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	res.DurationMS = time.Since(start).Milliseconds()

	if ctx.Err() == context.DeadlineExceeded {
		return res, fmt.Errorf("%s: %w after %s", a.tool, domain.ErrScanTimeout, a.timeout)
	}

	exitCode := 0
	if err != nil {
		var ee *exec.ExitError
		if errors.As(err, &ee) {
			exitCode = ee.ExitCode()
		} else {
			// Binary missing or not startable.
			return res, fmt.Errorf("%s: %w: %v", a.tool, domain.ErrToolUnavailable, err)
		}
	}
	res.ExitCode = exitCode

	status, ok := a.exitStatus[exitCode]
	if !ok {
		return res, fmt.Errorf("%s: %w (code %d): %s",
			a.tool, domain.ErrScanExecution, exitCode, strings.TrimSpace(stderr.String()))
	}

	out := strings.TrimSpace(stdout.String())
	if out == "" {
		out = emptyReport
	}
	var report map[string]any
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		return res, fmt.Errorf("%s: %w: %v", a.tool, domain.ErrScanOutput, err)
	}

	res.Status = status
	res.Report = report
	return res, nil
}
