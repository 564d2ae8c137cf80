package audit

import "errors"

// Every error here is fatal to the current audit attempt; nothing is
// retried inside the pipeline.
var (
	// ErrWorkspaceCreation indicates the isolated directory could not be
	// created. A name collision also lands here: collisions are treated as
	// an entropy-source defect, not something to retry around.
	ErrWorkspaceCreation = errors.New("workspace creation failed")

	// ErrFileValidation indicates the uploaded filename has the wrong suffix.
	ErrFileValidation = errors.New("only Solidity (.sol) files are supported")

	// ErrToolUnavailable indicates the analyzer binary could not be started.
	ErrToolUnavailable = errors.New("analysis tool is not installed")

	// ErrScanExecution indicates the analyzer exited with a code outside its
	// non-error set.
	ErrScanExecution = errors.New("scan execution failed")

	// ErrScanOutput indicates a non-error exit still produced unparsable output.
	ErrScanOutput = errors.New("scan output is not valid JSON")

	// ErrScanTimeout indicates the analyzer hit its wall-clock limit.
	ErrScanTimeout = errors.New("scan timed out")

	// ErrSynthesisResponse indicates the reasoning service response did not
	// contain the expected text. Never conflated with "no findings".
	ErrSynthesisResponse = errors.New("unexpected response structure from reasoning service")

	// ErrSynthesisTimeout indicates the reasoning service call hit its deadline.
	ErrSynthesisTimeout = errors.New("summary generation timed out")

	// ErrNotAuthorized indicates the payment gate is not in the Verified
	// state. Fails closed.
	ErrNotAuthorized = errors.New("audit has not been paid for")
)
