package store

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/declanlscott/printdesk-sub002/internal/logger"
	"github.com/declanlscott/printdesk-sub002/models"
)

var clientViewColumns = []string{"client_group_id", "version", "client_version", "tenant_id"}

func TestClientViewFindByID_Success(t *testing.T) {
	q, mock, db := newTestQuerier(t)
	defer db.Close()

	rows := sqlmock.NewRows(clientViewColumns).
		AddRow("cg-1", int64(3), int64(9), "tenant-1")

	mock.ExpectQuery("SELECT client_group_id, version, client_version").
		WithArgs("cg-1", int64(3), "tenant-1").
		WillReturnRows(rows)

	repo := NewClientViewRepository(logger.Nop())
	view, err := repo.FindByID(context.Background(), q, "cg-1", 3, "tenant-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if view.Version != 3 || view.ClientVersion != 9 {
		t.Errorf("unexpected view: %+v", view)
	}
}

func TestClientViewFindByID_NotFound(t *testing.T) {
	q, mock, db := newTestQuerier(t)
	defer db.Close()

	mock.ExpectQuery("SELECT client_group_id, version, client_version").
		WithArgs("cg-1", int64(9), "tenant-1").
		WillReturnRows(sqlmock.NewRows(clientViewColumns))

	repo := NewClientViewRepository(logger.Nop())
	_, err := repo.FindByID(context.Background(), q, "cg-1", 9, "tenant-1")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestClientViewFindMaxVersionByGroupID(t *testing.T) {
	q, mock, db := newTestQuerier(t)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"coalesce"}).AddRow(int64(4))

	mock.ExpectQuery("SELECT COALESCE").
		WithArgs("cg-1", "tenant-1").
		WillReturnRows(rows)

	repo := NewClientViewRepository(logger.Nop())
	version, err := repo.FindMaxVersionByGroupID(context.Background(), q, "cg-1", "tenant-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if version != 4 {
		t.Errorf("expected version=4, got %d", version)
	}
}

func TestClientViewFindMaxVersionByGroupID_NoViews(t *testing.T) {
	q, mock, db := newTestQuerier(t)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"coalesce"}).AddRow(int64(0))

	mock.ExpectQuery("SELECT COALESCE").
		WithArgs("unknown", "tenant-1").
		WillReturnRows(rows)

	repo := NewClientViewRepository(logger.Nop())
	version, err := repo.FindMaxVersionByGroupID(context.Background(), q, "unknown", "tenant-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if version != 0 {
		t.Errorf("expected version=0, got %d", version)
	}
}

func TestClientViewUpsert_Success(t *testing.T) {
	q, mock, db := newTestQuerier(t)
	defer db.Close()

	rows := sqlmock.NewRows(clientViewColumns).
		AddRow("cg-1", int64(4), int64(10), "tenant-1")

	mock.ExpectQuery("INSERT INTO replicache_client_views").
		WithArgs("cg-1", int64(4), int64(10), "tenant-1").
		WillReturnRows(rows)

	repo := NewClientViewRepository(logger.Nop())
	saved, err := repo.Upsert(context.Background(), q, models.ClientView{
		ClientGroupID: "cg-1", Version: 4, ClientVersion: 10, TenantID: "tenant-1",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if saved.Version != 4 {
		t.Errorf("expected version=4, got %d", saved.Version)
	}
}
