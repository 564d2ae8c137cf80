package scanner

import (
	"time"

	domain "github.com/affordableaudits/audit-api/internal/domain/audit"
)

// slitherDetectors keeps the scan focused on the high-signal checks.
const slitherDetectors = "arbitrary-send,tx-origin,controlled-delegatecall,unchecked-transfer"

// NewSlither builds the structural analyzer adapter. Slither exits 0 when the
// contract is clean and 255 when it ran fine but reported findings; anything
// else is an execution error.
func NewSlither(binary string, timeout time.Duration) *Adapter {
	if binary == "" {
		binary = "slither"
	}
	return &Adapter{
		tool:   domain.ToolSlither,
		binary: binary,
		buildArgs: func(artifactPath string) []string {
			return []string{artifactPath, "--json", "-", "--detect", slitherDetectors}
		},
		exitStatus: map[int]domain.ScanStatus{
			0:   domain.ScanClean,
			255: domain.ScanFindings,
		},
		timeout: timeout,
	}
}
