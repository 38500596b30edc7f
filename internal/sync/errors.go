package sync

import "errors"

// Sentinel errors of the sync engine. ErrClientStateNotFound and
// ErrDifferenceLimitExceeded are recoverable: pull and push translate them
// into protocol responses or a restarted attempt instead of failing the
// request.
var (
	// ErrClientStateNotFound is returned when a request references
	// bookkeeping state the server does not hold, typically because the
	// retention worker removed it. The client is told to reset.
	ErrClientStateNotFound = errors.New("client state not found")

	// ErrDifferenceLimitExceeded is returned when the mandatory part of a
	// difference (updates and deletes) alone would exceed the row
	// modification limit. The pull restarts from scratch, where the whole
	// budget is available for a fresh snapshot.
	ErrDifferenceLimitExceeded = errors.New("difference exceeds the row modification limit")

	// ErrOwnershipViolation is returned when a principal references a
	// client group or client belonging to a different user.
	ErrOwnershipViolation = errors.New("client group does not belong to the requesting user")

	// ErrFutureMutation is returned when a pushed mutation id is ahead of
	// the next expected id, meaning mutations were lost in transit.
	ErrFutureMutation = errors.New("mutation id is ahead of the next expected id")
)

// errPastMutation marks a mutation that was already applied in an earlier
// push. It never leaves the package: past mutations are skipped, not failed.
var errPastMutation = errors.New("mutation already processed")
