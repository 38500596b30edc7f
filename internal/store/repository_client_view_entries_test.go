package store

import (
	"context"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/declanlscott/printdesk-sub002/internal/logger"
	"github.com/declanlscott/printdesk-sub002/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_buildUpsertClientViewEntriesQuery_SQLContainsParts(t *testing.T) {
	version := int64(5)
	entries := []models.ClientViewEntry{
		{ClientGroupID: "cg-1", ClientViewVersion: 2, Entity: "order", EntityID: "o1", EntityVersion: &version, TenantID: "tenant-1"},
		{ClientGroupID: "cg-1", ClientViewVersion: 2, Entity: "order", EntityID: "o2", EntityVersion: nil, TenantID: "tenant-1"},
	}

	query, args, err := buildUpsertClientViewEntriesQuery(entries)
	require.NoError(t, err)

	// six columns per entry, deleted rows carry a nil entity version
	require.Len(t, args, 12)
	assert.Equal(t, "o1", args[3])
	assert.Equal(t, &version, args[4])
	assert.Nil(t, args[10])

	q := strings.ToLower(query)
	require.Contains(t, q, "insert into replicache_client_view_entries")
	require.Contains(t, q, "on conflict (client_group_id, entity, entity_id, tenant_id) do update set")
	require.Contains(t, q, "entity_version = excluded.entity_version")
	require.Contains(t, q, "client_view_version = excluded.client_view_version")

	// placeholder format should be $N (Postgres)
	require.Contains(t, query, "$1")
	require.Contains(t, query, "$12")
}

func TestClientViewEntryUpsertMany(t *testing.T) {
	q, mock, db := newTestQuerier(t)
	defer db.Close()

	version := int64(5)
	entries := []models.ClientViewEntry{
		{ClientGroupID: "cg-1", ClientViewVersion: 2, Entity: "order", EntityID: "o1", EntityVersion: &version, TenantID: "tenant-1"},
	}

	mock.ExpectExec("INSERT INTO replicache_client_view_entries").
		WithArgs("cg-1", int64(2), "order", "o1", &version, "tenant-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := NewClientViewEntryRepository(logger.Nop())
	err := repo.UpsertMany(context.Background(), q, entries)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestClientViewEntryDeleteByGroupID(t *testing.T) {
	q, mock, db := newTestQuerier(t)
	defer db.Close()

	mock.ExpectExec("DELETE FROM replicache_client_view_entries").
		WithArgs("cg-1", "tenant-1").
		WillReturnResult(sqlmock.NewResult(0, 4))

	repo := NewClientViewEntryRepository(logger.Nop())
	err := repo.DeleteByGroupID(context.Background(), q, "cg-1", "tenant-1")
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestClientViewEntryUpsertMany_EmptyIsNoOp(t *testing.T) {
	q, mock, db := newTestQuerier(t)
	defer db.Close()

	repo := NewClientViewEntryRepository(logger.Nop())
	err := repo.UpsertMany(context.Background(), q, nil)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}
