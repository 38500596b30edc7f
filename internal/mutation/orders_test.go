package mutation

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/declanlscott/printdesk-sub002/internal/logger"
	"github.com/declanlscott/printdesk-sub002/internal/store"
	"github.com/declanlscott/printdesk-sub002/models"
)

func newTestQuerier(t *testing.T) (store.Querier, sqlmock.Sqlmock, *sql.DB) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	return store.NewQuerier(db), mock, db
}

var principal = models.Principal{UserID: "u1", TenantID: "tenant-1", Role: models.RoleCustomer}

func TestCreateOrder(t *testing.T) {
	q, mock, db := newTestQuerier(t)
	defer db.Close()

	mock.ExpectExec("INSERT INTO orders").
		WithArgs("o1", "tenant-1", "u1", "business cards", models.OrderStatusDraft, 1).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := createOrder(context.Background(), q, principal, json.RawMessage(`{"id":"o1","title":"business cards"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestCreateOrder_BadArgs(t *testing.T) {
	q, _, db := newTestQuerier(t)
	defer db.Close()

	err := createOrder(context.Background(), q, principal, json.RawMessage(`{`))
	if err == nil {
		t.Fatal("expected decode error, got nil")
	}
}

func TestUpdateOrder_SetsOnlyProvidedFields(t *testing.T) {
	q, mock, db := newTestQuerier(t)
	defer db.Close()

	// only status is set, the version bump and timestamps are unconditional
	mock.ExpectExec(`UPDATE orders SET version = version \+ 1, updated_at = NOW\(\), status = \$1 WHERE id = \$2 AND tenant_id = \$3`).
		WithArgs(models.OrderStatusSubmitted, "o1", "tenant-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := updateOrder(context.Background(), q, principal, json.RawMessage(`{"id":"o1","status":"submitted"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestUpdateOrder_NotFound(t *testing.T) {
	q, mock, db := newTestQuerier(t)
	defer db.Close()

	mock.ExpectExec("UPDATE orders").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := updateOrder(context.Background(), q, principal, json.RawMessage(`{"id":"missing","title":"x"}`))
	if !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound, got %v", err)
	}
}

func TestArchiveOrder(t *testing.T) {
	q, mock, db := newTestQuerier(t)
	defer db.Close()

	mock.ExpectExec(`UPDATE orders SET deleted_at = NOW\(\)`).
		WithArgs("o1", "tenant-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := archiveOrder(context.Background(), q, principal, json.RawMessage(`{"id":"o1"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestArchiveOrder_AlreadyArchived(t *testing.T) {
	q, mock, db := newTestQuerier(t)
	defer db.Close()

	// archiving only matches live rows, an archived order reports not found
	mock.ExpectExec(`UPDATE orders SET deleted_at = NOW\(\)`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := archiveOrder(context.Background(), q, principal, json.RawMessage(`{"id":"o1"}`))
	if !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound, got %v", err)
	}
}

func TestCreateAnnouncement_RequiresAdministrator(t *testing.T) {
	q, _, db := newTestQuerier(t)
	defer db.Close()

	err := createAnnouncement(context.Background(), q, principal, json.RawMessage(`{"id":"a1","content":"closed friday"}`))
	if err == nil {
		t.Fatal("expected role error, got nil")
	}
}

func TestCreateAnnouncement(t *testing.T) {
	q, mock, db := newTestQuerier(t)
	defer db.Close()

	admin := models.Principal{UserID: "u2", TenantID: "tenant-1", Role: models.RoleAdministrator}

	mock.ExpectExec("INSERT INTO announcements").
		WithArgs("a1", "tenant-1", "closed friday", 1).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := createAnnouncement(context.Background(), q, admin, json.RawMessage(`{"id":"a1","content":"closed friday"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRegisterOrderMutations(t *testing.T) {
	registry := RegisterOrderMutations(NewRegistry(logger.Nop()))

	for _, name := range []string{MutationCreateOrder, MutationUpdateOrder, MutationArchiveOrder} {
		if _, ok := registry.funcs[name]; !ok {
			t.Errorf("expected %s to be registered", name)
		}
	}
}
