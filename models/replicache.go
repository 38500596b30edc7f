// Package models defines the domain types shared by the sync engine, the
// persistence layer, and the HTTP transport: the Replicache bookkeeping
// records (client groups, clients, client views and their entries), the
// wire-level pull/push protocol types, and the synced business entities.
package models

import "time"

// ClientGroup represents one Replicache client group: the set of clients
// (usually browser tabs) that share a single local cache for one user.
//
// ClientVersion is a monotonic counter bumped once per applied mutation;
// each client records the ClientVersion at which its last mutation was
// applied so pulls can report lastMutationIDChanges incrementally.
//
// ClientViewVersion is the version of the most recent client view produced
// for this group. It is nil until the first pull completes.
type ClientGroup struct {
	ID                string
	TenantID          string
	UserID            string
	ClientVersion     int64
	ClientViewVersion *int64
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// NewClientGroup returns a ClientGroup in its initial state, used when a
// pull or push references a group id that has not been persisted yet.
func NewClientGroup(id, tenantID, userID string) ClientGroup {
	return ClientGroup{
		ID:       id,
		TenantID: tenantID,
		UserID:   userID,
	}
}

// Client is one Replicache client (one tab) inside a client group.
// LastMutationID is the id of the last mutation applied for this client;
// Version is the group ClientVersion at which that happened.
type Client struct {
	ID             string
	TenantID       string
	ClientGroupID  string
	LastMutationID int64
	Version        int64
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// NewClient returns a Client in its initial state (no mutations applied).
func NewClient(id, tenantID, clientGroupID string) Client {
	return Client{
		ID:            id,
		TenantID:      tenantID,
		ClientGroupID: clientGroupID,
	}
}

// ClientView is a snapshot marker: "client view Version of group
// ClientGroupID was produced when the group ClientVersion was
// ClientVersion". The view version is what travels to the client inside the
// pull cookie.
type ClientView struct {
	ClientGroupID string
	Version       int64
	ClientVersion int64
	TenantID      string
}

// NewClientView returns the zero-valued view used for a group's very first
// pull, before any view rows exist.
func NewClientView(clientGroupID, tenantID string) ClientView {
	return ClientView{
		ClientGroupID: clientGroupID,
		TenantID:      tenantID,
	}
}

// ClientViewEntry records that a particular entity row was last sent to a
// client group at ClientViewVersion with version EntityVersion.
//
// EntityVersion nil means the row was reported deleted (or never created)
// as of that view; the entry itself is kept so later views can fast-forward
// or resurrect the row.
type ClientViewEntry struct {
	ClientGroupID     string
	ClientViewVersion int64
	Entity            string
	EntityID          string
	EntityVersion     *int64
	TenantID          string
}
