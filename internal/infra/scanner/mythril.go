package scanner

import (
	"time"

	domain "github.com/affordableaudits/audit-api/internal/domain/audit"
)

// mythrilExecTimeout bounds symbolic execution inside the tool itself; the
// adapter's wall-clock timeout sits above it.
const mythrilExecTimeout = "90"

// NewMythril builds the symbolic analyzer adapter. Mythril exits 0 on a
// clean run and 1 when it found vulnerabilities; anything else is an
// execution error. Symbolic execution is expensive, so callers give this
// adapter a longer timeout than the structural one.
func NewMythril(binary string, timeout time.Duration) *Adapter {
	if binary == "" {
		binary = "myth"
	}
	return &Adapter{
		tool:   domain.ToolMythril,
		binary: binary,
		buildArgs: func(artifactPath string) []string {
			return []string{"analyze", artifactPath, "--execution-timeout", mythrilExecTimeout, "--json"}
		},
		exitStatus: map[int]domain.ScanStatus{
			0: domain.ScanClean,
			1: domain.ScanFindings,
		},
		timeout: timeout,
	}
}
