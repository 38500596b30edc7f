package models

import "encoding/json"

// Protocol versions this server understands. Requests carrying any other
// version receive a VersionNotSupported response instead of an error.
const (
	PullVersion = 1
	PushVersion = 1
)

// Patch operation names as they appear on the wire.
const (
	OpPut   = "put"
	OpDel   = "del"
	OpClear = "clear"
)

// SyncStateKey is the reserved client-view key under which the server
// reports whether the snapshot delivered so far is complete.
const SyncStateKey = "_meta/syncState"

// Values stored under SyncStateKey.
const (
	SyncStateComplete = "COMPLETE"
	SyncStatePartial  = "PARTIAL"
)

// Error codes understood by the Replicache client. They are delivered in
// the body of an HTTP 200 response, not as transport-level failures.
const (
	ErrorClientStateNotFound = "ClientStateNotFound"
	ErrorVersionNotSupported = "VersionNotSupported"
)

// Cookie is the opaque (to the client) pull cursor. Order is the client
// view version the client last received; a nil *Cookie means the client has
// never synced.
type Cookie struct {
	Order int64 `json:"order"`
}

// PatchOperation is one entry of the pull response patch.
type PatchOperation struct {
	Op    string `json:"op"`
	Key   string `json:"key,omitempty"`
	Value any    `json:"value,omitempty"`
}

// PutEntity returns a patch operation storing value under "<entity>/<id>".
func PutEntity(entity, id string, value any) PatchOperation {
	return PatchOperation{Op: OpPut, Key: entity + "/" + id, Value: value}
}

// DeleteEntity returns a patch operation removing the key "<entity>/<id>".
func DeleteEntity(entity, id string) PatchOperation {
	return PatchOperation{Op: OpDel, Key: entity + "/" + id}
}

// Clear returns the patch operation that wipes the whole client view.
func Clear() PatchOperation {
	return PatchOperation{Op: OpClear}
}

// PutSyncState returns the patch operation publishing the snapshot
// completeness marker.
func PutSyncState(state string) PatchOperation {
	return PatchOperation{Op: OpPut, Key: SyncStateKey, Value: state}
}

// PullRequest is the body of POST /api/replicache/pull.
type PullRequest struct {
	PullVersion   int     `json:"pullVersion"`
	ClientGroupID string  `json:"clientGroupId"`
	Cookie        *Cookie `json:"cookie"`
	ProfileID     string  `json:"profileID"`
	SchemaVersion string  `json:"schemaVersion"`
}

// PullResponse is the success body of a pull. All three fields are always
// serialized, including an empty patch, so the client can distinguish "no
// changes" from a malformed response.
type PullResponse struct {
	Cookie                *Cookie          `json:"cookie"`
	LastMutationIDChanges map[string]int64 `json:"lastMutationIDChanges"`
	Patch                 []PatchOperation `json:"patch"`
}

// SyncError is the recoverable-error body shared by pull and push. It is
// sent with HTTP 200; the Replicache client reacts to the Error code
// (typically by resetting its local state).
type SyncError struct {
	Error       string `json:"error"`
	VersionType string `json:"versionType,omitempty"`
}

// ClientStateNotFound returns the error body instructing the client to
// discard its local state and start over.
func ClientStateNotFound() *SyncError {
	return &SyncError{Error: ErrorClientStateNotFound}
}

// VersionNotSupported returns the error body for an unknown protocol
// version. versionType is "pull" or "push".
func VersionNotSupported(versionType string) *SyncError {
	return &SyncError{Error: ErrorVersionNotSupported, VersionType: versionType}
}

// Mutation is a single client-side write replayed on the server during
// push. IDs are per-client and strictly sequential.
type Mutation struct {
	ID        int64           `json:"id"`
	ClientID  string          `json:"clientID"`
	Name      string          `json:"name"`
	Args      json.RawMessage `json:"args"`
	Timestamp int64           `json:"timestamp"`
}

// PushRequest is the body of POST /api/replicache/push.
type PushRequest struct {
	PushVersion   int        `json:"pushVersion"`
	ClientGroupID string     `json:"clientGroupId"`
	Mutations     []Mutation `json:"mutations"`
	ProfileID     string     `json:"profileID"`
	SchemaVersion string     `json:"schemaVersion"`
}
