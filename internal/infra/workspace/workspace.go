package workspace

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	domain "github.com/affordableaudits/audit-api/internal/domain/audit"
)

// nameBytes gives 96 bits of entropy per workspace name.
const nameBytes = 12

// Manager creates and destroys isolated per-run directories under a fixed
// root. Names come from a cryptographically strong source so concurrent
// sessions cannot collide or guess each other's paths.
type Manager struct {
	root string
}

func NewManager(root string) *Manager {
	return &Manager{root: root}
}

func randomName() (string, error) {
	buf := make([]byte, nameBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// Acquire creates a fresh workspace directory. A name collision is fatal and
// not retried: with 96 random bits a collision means the entropy source is
// broken, and retrying would only mask that.
func (m *Manager) Acquire() (*domain.Workspace, error) {
	if err := os.MkdirAll(m.root, 0o755); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrWorkspaceCreation, err)
	}
	name, err := randomName()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrWorkspaceCreation, err)
	}
	dir := filepath.Join(m.root, name)
	if err := os.Mkdir(dir, 0o700); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrWorkspaceCreation, err)
	}
	return &domain.Workspace{Dir: dir}, nil
}

// Release scrubs and removes a workspace. Idempotent: releasing a workspace
// that is already gone is a no-op. Individual file errors are suppressed so
// partial failures still converge on "directory no longer exists".
func (m *Manager) Release(ws *domain.Workspace) error {
	if ws == nil || ws.Dir == "" {
		return nil
	}
	if _, err := os.Stat(ws.Dir); os.IsNotExist(err) {
		return nil
	}

	// Overwrite file contents before unlinking where feasible.
	_ = filepath.WalkDir(ws.Dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		scrubFile(path)
		return nil
	})

	if err := os.RemoveAll(ws.Dir); err != nil {
		return fmt.Errorf("remove workspace %s: %w", ws.Dir, err)
	}
	return nil
}

func scrubFile(path string) {
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return
	}
	f, err := os.OpenFile(path, os.O_WRONLY, 0)
	if err != nil {
		return
	}
	defer f.Close()
	zeros := make([]byte, 32*1024)
	remaining := info.Size()
	for remaining > 0 {
		n := int64(len(zeros))
		if remaining < n {
			n = remaining
		}
		if _, err := f.Write(zeros[:n]); err != nil {
			return
		}
		remaining -= n
	}
	_ = f.Sync()
}
