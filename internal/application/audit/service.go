package audit

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/affordableaudits/audit-api/internal/application"
	domain "github.com/affordableaudits/audit-api/internal/domain/audit"
	"github.com/affordableaudits/audit-api/internal/domain/payment"
)

// ReportFileName is the fixed name of the rendered document inside a workspace.
const ReportFileName = "audit-report.pdf"

// Service implements the audit pipeline use-case: gate check, workspace
// acquisition, both scans, synthesis, rendering, delivery, cleanup.
// Safe for concurrent use; each run owns its workspace exclusively.
type Service struct {
	Workspaces  domain.Workspaces
	Structural  domain.Scanner
	Symbolic    domain.Scanner
	Synthesizer domain.Summarizer
	Renderer    domain.Renderer
	Mailer      domain.Deliverer
	Archive     domain.ReportArchive // optional; nil disables archiving
	Clock       application.Clock
}

// RunResult is what the caller gets back on success.
type RunResult struct {
	Summary    string            `json:"summary"`
	Structural domain.ScanResult `json:"structural"`
	Symbolic   domain.ScanResult `json:"symbolic"`
	ArchiveURL string            `json:"archive_url,omitempty"`
}

// Run executes one paid audit end to end. Callable only while the session's
// gate is Verified. The workspace is released on every exit path; on success
// the gate moves to Consumed, on any pipeline failure it resets to Unpaid.
//
// A bad filename is rejected before any workspace exists and leaves the gate
// Verified: the customer fixes the upload and tries again without paying
// twice. Everything after workspace acquisition is a real attempt, and a
// failed attempt neither refunds nor re-arms the purchase.
func (s *Service) Run(ctx context.Context, sess *domain.Session, filename string, content io.Reader) (res RunResult, err error) {
	if st := sess.Gate.State(); st != payment.StateVerified {
		return res, fmt.Errorf("%w (state %s)", domain.ErrNotAuthorized, st)
	}
	if err := domain.ValidateArtifactName(filename); err != nil {
		return res, err
	}

	ws, err := s.Workspaces.Acquire()
	if err != nil {
		sess.Gate.Reset()
		return res, err
	}
	defer func() {
		if rerr := s.Workspaces.Release(ws); rerr != nil {
			log.Printf("workspace release error: %v", rerr)
		}
		if err != nil {
			sess.Gate.Reset()
			return
		}
		if cerr := sess.Gate.Consume(); cerr != nil {
			log.Printf("payment gate consume error: %v", cerr)
		}
	}()

	artifactPath := filepath.Join(ws.Dir, domain.CanonicalArtifactName)
	if err = persistArtifact(artifactPath, content); err != nil {
		return res, err
	}

	structural, symbolic, err := s.runScans(ctx, artifactPath)
	if err != nil {
		// Abort here: synthesis and rendering are skipped entirely.
		return res, err
	}

	summary, err := s.Synthesizer.Summarize(ctx, structural, symbolic)
	if err != nil {
		return res, err
	}

	rep := &domain.SynthesizedReport{
		Summary:     summary,
		Structural:  structural,
		Symbolic:    symbolic,
		GeneratedAt: s.Clock.Now().UTC(),
	}
	reportPath := filepath.Join(ws.Dir, ReportFileName)
	if err = s.Renderer.Render(rep, reportPath); err != nil {
		return res, fmt.Errorf("render report: %w", err)
	}

	if err = s.Mailer.Deliver(ctx, sess.Email, mailSummary(summary), reportPath); err != nil {
		return res, fmt.Errorf("deliver report: %w", err)
	}

	res = RunResult{Summary: summary, Structural: structural, Symbolic: symbolic}

	if s.Archive != nil {
		key := fmt.Sprintf("%s/%s", sess.ID, ReportFileName)
		url, aerr := s.Archive.UploadAndCleanup(ctx, reportPath, key)
		if aerr != nil {
			// The report already reached the customer by mail; a dead archive
			// only loses the re-download link.
			log.Printf("report archive error for session %s: %v", sess.ID, aerr)
		} else {
			res.ArchiveURL = url
		}
	}

	return res, nil
}

// runScans fans out both analyzers concurrently and joins before synthesis.
// Neither result depends on the other, and a failure in one does not cancel
// the other early: both finish (or time out) on their own, then the
// structural error wins for deterministic reporting.
func (s *Service) runScans(ctx context.Context, artifactPath string) (domain.ScanResult, domain.ScanResult, error) {
	type outcome struct {
		res domain.ScanResult
		err error
	}
	var structural, symbolic outcome

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		structural.res, structural.err = s.Structural.Scan(ctx, artifactPath)
	}()
	go func() {
		defer wg.Done()
		symbolic.res, symbolic.err = s.Symbolic.Scan(ctx, artifactPath)
	}()
	wg.Wait()

	if structural.err != nil {
		return structural.res, symbolic.res, structural.err
	}
	if symbolic.err != nil {
		return structural.res, symbolic.res, symbolic.err
	}
	return structural.res, symbolic.res, nil
}

func persistArtifact(path string, content io.Reader) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return fmt.Errorf("persist artifact: %w", err)
	}
	if _, err := io.Copy(f, content); err != nil {
		f.Close()
		return fmt.Errorf("persist artifact: %w", err)
	}
	return f.Close()
}

// mailSummary flattens the narrative to a single line for the mail body;
// the full layout lives in the attached document.
func mailSummary(summary string) string {
	return strings.ReplaceAll(summary, "\n", " ")
}
