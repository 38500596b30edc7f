package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/declanlscott/printdesk-sub002/internal/logger"
	"github.com/declanlscott/printdesk-sub002/models"
)

var clientColumns = []string{"id", "tenant_id", "client_group_id", "last_mutation_id", "version", "created_at", "updated_at"}

func TestClientFindByIDForUpdate_Success(t *testing.T) {
	q, mock, db := newTestQuerier(t)
	defer db.Close()

	now := time.Now()
	rows := sqlmock.NewRows(clientColumns).
		AddRow("c1", "tenant-1", "cg-1", int64(7), int64(4), now, now)

	mock.ExpectQuery("SELECT id, tenant_id, client_group_id").
		WithArgs("c1", "tenant-1").
		WillReturnRows(rows)

	repo := NewClientRepository(logger.Nop())
	client, err := repo.FindByIDForUpdate(context.Background(), q, "c1", "tenant-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if client.LastMutationID != 7 || client.Version != 4 {
		t.Errorf("unexpected client: %+v", client)
	}
}

func TestClientFindByIDForUpdate_NotFound(t *testing.T) {
	q, mock, db := newTestQuerier(t)
	defer db.Close()

	mock.ExpectQuery("SELECT id, tenant_id, client_group_id").
		WithArgs("missing", "tenant-1").
		WillReturnRows(sqlmock.NewRows(clientColumns))

	repo := NewClientRepository(logger.Nop())
	_, err := repo.FindByIDForUpdate(context.Background(), q, "missing", "tenant-1")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestClientFindSinceVersionByGroupID(t *testing.T) {
	q, mock, db := newTestQuerier(t)
	defer db.Close()

	now := time.Now()
	rows := sqlmock.NewRows(clientColumns).
		AddRow("c1", "tenant-1", "cg-1", int64(7), int64(4), now, now).
		AddRow("c2", "tenant-1", "cg-1", int64(2), int64(5), now, now)

	mock.ExpectQuery("SELECT id, tenant_id, client_group_id").
		WithArgs(int64(3), "cg-1", "tenant-1").
		WillReturnRows(rows)

	repo := NewClientRepository(logger.Nop())
	clients, err := repo.FindSinceVersionByGroupID(context.Background(), q, 3, "cg-1", "tenant-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(clients) != 2 {
		t.Fatalf("expected 2 clients, got %d", len(clients))
	}
	if clients[0].ID != "c1" || clients[1].ID != "c2" {
		t.Errorf("unexpected clients: %+v", clients)
	}
}

func TestClientFindSinceVersionByGroupID_Empty(t *testing.T) {
	q, mock, db := newTestQuerier(t)
	defer db.Close()

	mock.ExpectQuery("SELECT id, tenant_id, client_group_id").
		WillReturnRows(sqlmock.NewRows(clientColumns))

	repo := NewClientRepository(logger.Nop())
	clients, err := repo.FindSinceVersionByGroupID(context.Background(), q, 0, "cg-1", "tenant-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(clients) != 0 {
		t.Errorf("expected no clients, got %d", len(clients))
	}
}

func TestClientUpsert_Success(t *testing.T) {
	q, mock, db := newTestQuerier(t)
	defer db.Close()

	now := time.Now()
	rows := sqlmock.NewRows(clientColumns).
		AddRow("c1", "tenant-1", "cg-1", int64(8), int64(5), now, now)

	mock.ExpectQuery("INSERT INTO replicache_clients").
		WithArgs("c1", "tenant-1", "cg-1", int64(8), int64(5)).
		WillReturnRows(rows)

	repo := NewClientRepository(logger.Nop())
	saved, err := repo.Upsert(context.Background(), q, models.Client{
		ID: "c1", TenantID: "tenant-1", ClientGroupID: "cg-1", LastMutationID: 8, Version: 5,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if saved.LastMutationID != 8 {
		t.Errorf("expected last_mutation_id=8, got %d", saved.LastMutationID)
	}
}
