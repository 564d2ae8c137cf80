package audit

import "context"

// Scanner port (interface untuk satu analyzer eksternal)
type Scanner interface {
	Tool() Tool
	Scan(ctx context.Context, artifactPath string) (ScanResult, error)
}

// Summarizer port (interface untuk reasoning service)
type Summarizer interface {
	Summarize(ctx context.Context, structural, symbolic ScanResult) (string, error)
}

// Renderer port (interface untuk layout dokumen)
type Renderer interface {
	Render(report *SynthesizedReport, outputPath string) error
}

// Workspaces port (interface untuk isolasi filesystem per run)
type Workspaces interface {
	Acquire() (*Workspace, error)
	// Release is idempotent and must run exactly once per Acquire,
	// on every exit path.
	Release(ws *Workspace) error
}

// Deliverer port (interface untuk pengiriman laporan)
type Deliverer interface {
	Deliver(ctx context.Context, recipient, summary, reportPath string) error
}

// ReportArchive port (interface untuk arsip dokumen jadi)
type ReportArchive interface {
	UploadAndCleanup(ctx context.Context, localPath, key string) (string, error)
}
