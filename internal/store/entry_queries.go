package store

import (
	sq "github.com/Masterminds/squirrel"
	"github.com/declanlscott/printdesk-sub002/models"
)

const clientViewEntriesTable = "replicache_client_view_entries"

// entryBase selects from the ledger restricted to one entity of one client
// group. Every difference query starts here.
func entryBase(entity string, view models.ClientView) sq.SelectBuilder {
	return sq.Select("entity_id").
		From(clientViewEntriesTable).
		Where(sq.Eq{
			"entity":          entity,
			"client_group_id": view.ClientGroupID,
			"tenant_id":       view.TenantID,
		})
}

// trackedEntryIDs returns the ids already known to the client view. Rows
// whose id appears here are never creates, whatever their entity version.
func trackedEntryIDs(entity string, view models.ClientView) sq.SelectBuilder {
	return entryBase(entity, view).
		Where(sq.LtOrEq{"client_view_version": view.Version})
}

// deleteCandidateEntryIDs returns the ids that may need a del operation:
// rows the view holds a live version of, plus rows tracked past the view
// (the client may never have received the later put, so a del is the only
// safe answer when the row is not visible anymore).
func deleteCandidateEntryIDs(entity string, view models.ClientView) sq.SelectBuilder {
	return entryBase(entity, view).
		Where(sq.Or{
			sq.And{
				sq.LtOrEq{"client_view_version": view.Version},
				sq.NotEq{"entity_version": nil},
			},
			sq.Gt{"client_view_version": view.Version},
		})
}
