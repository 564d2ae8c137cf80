package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appaudit "github.com/affordableaudits/audit-api/internal/application/audit"
	domain "github.com/affordableaudits/audit-api/internal/domain/audit"
	"github.com/affordableaudits/audit-api/internal/domain/payment"
	"github.com/affordableaudits/audit-api/internal/middleware"
)

type fakeGateway struct {
	status    string
	createErr error
}

func (f *fakeGateway) CreateCheckout(ctx context.Context, email string) (payment.Checkout, error) {
	if f.createErr != nil {
		return payment.Checkout{}, f.createErr
	}
	return payment.Checkout{SessionID: "cs_test_1", URL: "https://pay.example/cs_test_1"}, nil
}

func (f *fakeGateway) RetrieveStatus(ctx context.Context, id string) (string, error) {
	return f.status, nil
}

type fakeWorkspaces struct{ root string }

func (f *fakeWorkspaces) Acquire() (*domain.Workspace, error) {
	dir, err := os.MkdirTemp(f.root, "ws-")
	if err != nil {
		return nil, err
	}
	return &domain.Workspace{Dir: dir}, nil
}

func (f *fakeWorkspaces) Release(ws *domain.Workspace) error {
	return os.RemoveAll(ws.Dir)
}

type fakeScanner struct {
	tool domain.Tool
	err  error
}

func (f *fakeScanner) Tool() domain.Tool { return f.tool }

func (f *fakeScanner) Scan(ctx context.Context, path string) (domain.ScanResult, error) {
	if f.err != nil {
		return domain.ScanResult{Tool: f.tool, Status: domain.ScanFailed}, f.err
	}
	return domain.ScanResult{Tool: f.tool, Status: domain.ScanClean, Report: map[string]any{}}, nil
}

type fakeSummarizer struct{}

func (fakeSummarizer) Summarize(ctx context.Context, structural, symbolic domain.ScanResult) (string, error) {
	return "## Summary\nNothing alarming.", nil
}

type fakeRenderer struct{}

func (fakeRenderer) Render(rep *domain.SynthesizedReport, outputPath string) error {
	return os.WriteFile(outputPath, []byte("%PDF-1.4 fake"), 0o600)
}

type fakeMailer struct{ delivered int }

func (f *fakeMailer) Deliver(ctx context.Context, recipient, summary, reportPath string) error {
	f.delivered++
	return nil
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

type testServer struct {
	srv      *httptest.Server
	mailer   *fakeMailer
	gateway  *fakeGateway
	symbolic *fakeScanner
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gw := &fakeGateway{status: payment.PaidStatus}
	mailer := &fakeMailer{}
	symbolic := &fakeScanner{tool: domain.ToolMythril}
	svc := &appaudit.Service{
		Workspaces:  &fakeWorkspaces{root: t.TempDir()},
		Structural:  &fakeScanner{tool: domain.ToolSlither},
		Symbolic:    symbolic,
		Synthesizer: fakeSummarizer{},
		Renderer:    fakeRenderer{},
		Mailer:      mailer,
		Clock:       systemClock{},
	}
	sessions := appaudit.NewRegistry(gw)
	handler := NewRouter(svc, sessions, map[string]middleware.HealthChecker{})
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return &testServer{srv: srv, mailer: mailer, gateway: gw, symbolic: symbolic}
}

func (ts *testServer) postJSON(t *testing.T, path string, body any) (*http.Response, map[string]any) {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(ts.srv.URL+path, "application/json", bytes.NewReader(b))
	require.NoError(t, err)
	var decoded map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&decoded)
	resp.Body.Close()
	return resp, decoded
}

func (ts *testServer) uploadContract(t *testing.T, session, filename, content string) (*http.Response, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("contract", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	resp, err := http.Post(
		fmt.Sprintf("%s/v1/audits/%s", ts.srv.URL, session),
		mw.FormDataContentType(),
		&buf,
	)
	require.NoError(t, err)
	var decoded map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&decoded)
	resp.Body.Close()
	return resp, decoded
}

// startVerified walks a session through checkout and verification.
func (ts *testServer) startVerified(t *testing.T) string {
	t.Helper()
	resp, body := ts.postJSON(t, "/v1/checkout", map[string]string{"email": "dev@company.com"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	session := body["audit_session"].(string)
	checkout := body["checkout_session"].(string)

	resp, body = ts.postJSON(t, "/v1/checkout/"+session+"/verify",
		map[string]string{"checkout_session_id": checkout})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "verified", body["status"])
	return session
}

func TestFullAuditFlow(t *testing.T) {
	ts := newTestServer(t)
	session := ts.startVerified(t)

	resp, body := ts.uploadContract(t, session, "Token.sol", "pragma solidity ^0.8.0;")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body["summary"], "Nothing alarming")
	assert.Equal(t, 1, ts.mailer.delivered)

	// The session is spent; a replay 404s.
	resp, _ = ts.uploadContract(t, session, "Token.sol", "pragma solidity ^0.8.0;")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAuditWithoutVerificationIsPaymentRequired(t *testing.T) {
	ts := newTestServer(t)
	resp, body := ts.postJSON(t, "/v1/checkout", map[string]string{"email": "dev@company.com"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	session := body["audit_session"].(string)

	resp, _ = ts.uploadContract(t, session, "Token.sol", "pragma solidity ^0.8.0;")
	assert.Equal(t, http.StatusPaymentRequired, resp.StatusCode)
}

func TestVerifyWithUnpaidStatus(t *testing.T) {
	ts := newTestServer(t)
	ts.gateway.status = "unpaid"

	resp, body := ts.postJSON(t, "/v1/checkout", map[string]string{"email": "dev@company.com"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	session := body["audit_session"].(string)

	resp, _ = ts.postJSON(t, "/v1/checkout/"+session+"/verify",
		map[string]string{"checkout_session_id": "cs_test_1"})
	assert.Equal(t, http.StatusPaymentRequired, resp.StatusCode)
}

func TestCheckoutRejectsBadEmail(t *testing.T) {
	ts := newTestServer(t)
	resp, _ := ts.postJSON(t, "/v1/checkout", map[string]string{"email": "not-an-email"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAuditRejectsWrongSuffix(t *testing.T) {
	ts := newTestServer(t)
	session := ts.startVerified(t)

	resp, _ := ts.uploadContract(t, session, "token.vy", "def transfer(): pass")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAuditScanFailureMapsToServerError(t *testing.T) {
	ts := newTestServer(t)
	ts.symbolic.err = fmt.Errorf("myth: %w", domain.ErrScanExecution)
	session := ts.startVerified(t)

	resp, _ := ts.uploadContract(t, session, "Token.sol", "pragma solidity ^0.8.0;")
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Zero(t, ts.mailer.delivered)
}

func TestAuditToolUnavailableMapsToServiceUnavailable(t *testing.T) {
	ts := newTestServer(t)
	ts.symbolic.err = fmt.Errorf("myth: %w", domain.ErrToolUnavailable)
	session := ts.startVerified(t)

	resp, _ := ts.uploadContract(t, session, "Token.sol", "pragma solidity ^0.8.0;")
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestUnknownSessionIs404(t *testing.T) {
	ts := newTestServer(t)
	resp, _ := ts.uploadContract(t, "3b6cfc87-0000-4000-8000-123456789abc", "Token.sol", "x")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = ts.uploadContract(t, "not-a-uuid", "Token.sol", "x")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHealthEndpoint(t *testing.T) {
	ts := newTestServer(t)
	resp, err := http.Get(ts.srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestSanitizedFilenameStillValidates(t *testing.T) {
	ts := newTestServer(t)
	session := ts.startVerified(t)

	// Path components are stripped before validation; the upload still runs.
	resp, _ := ts.uploadContract(t, session, filepath.Join("..", "..", "Token.sol"), "pragma solidity ^0.8.0;")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestServer(t)
	resp, err := http.Get(ts.srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var m map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&m))
	assert.Contains(t, m, "audits_total")
}
