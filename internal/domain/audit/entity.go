package audit

import (
	"strings"
	"time"

	"github.com/affordableaudits/audit-api/internal/domain/payment"
)

// Tool enum
type Tool string

const (
	ToolSlither Tool = "slither"
	ToolMythril Tool = "mythril"
)

// ScanStatus enum
type ScanStatus string

const (
	ScanClean    ScanStatus = "clean"
	ScanFindings ScanStatus = "findings"
	ScanFailed   ScanStatus = "failed"
)

// ArtifactSuffix is the only file type the pipeline accepts.
const ArtifactSuffix = ".sol"

// CanonicalArtifactName is the fixed name the artifact gets inside a workspace.
const CanonicalArtifactName = "contract" + ArtifactSuffix

// ScanResult holds one analyzer's structured findings.
type ScanResult struct {
	Tool       Tool           `json:"tool"`
	Status     ScanStatus     `json:"status"`
	Report     map[string]any `json:"report"`
	ExitCode   int            `json:"exit_code"`
	DurationMS int64          `json:"duration_ms"`
}

// SynthesizedReport combines the narrative summary with both raw results.
// Immutable once produced; the renderer and the mailer only read it.
type SynthesizedReport struct {
	Summary     string
	Structural  ScanResult
	Symbolic    ScanResult
	GeneratedAt time.Time
}

// Session identifies one customer attempt. Lives in process memory only.
type Session struct {
	ID        string
	Email     string
	Gate      *payment.Gate
	CreatedAt time.Time
}

// Workspace is an ephemeral directory holding one artifact and one report.
type Workspace struct {
	Dir string
}

// ValidateArtifactName rejects anything that is not a Solidity file.
// Runs before any workspace side effect.
func ValidateArtifactName(name string) error {
	if name == "" || !strings.HasSuffix(strings.ToLower(name), ArtifactSuffix) {
		return ErrFileValidation
	}
	return nil
}
