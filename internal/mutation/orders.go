package mutation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/declanlscott/printdesk-sub002/internal/store"
	"github.com/declanlscott/printdesk-sub002/models"
)

// Mutation names as sent by the client.
const (
	MutationCreateOrder  = "createOrder"
	MutationUpdateOrder  = "updateOrder"
	MutationArchiveOrder = "archiveOrder"
)

// ErrOrderNotFound is returned when an update or archive targets an order
// that does not exist in the principal's tenant.
var ErrOrderNotFound = errors.New("order not found")

// RegisterOrderMutations wires the order mutators into the registry.
func RegisterOrderMutations(registry *Registry) *Registry {
	return registry.
		Register(MutationCreateOrder, createOrder).
		Register(MutationUpdateOrder, updateOrder).
		Register(MutationArchiveOrder, archiveOrder)
}

type createOrderArgs struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

func createOrder(ctx context.Context, q store.Querier, principal models.Principal, args []byte) error {
	var payload createOrderArgs
	if err := json.Unmarshal(args, &payload); err != nil {
		return fmt.Errorf("decoding createOrder args: %w", err)
	}

	query, queryArgs, err := sq.Insert("orders").
		Columns("id", "tenant_id", "customer_id", "title", "status", "version").
		Values(payload.ID, principal.TenantID, principal.UserID, payload.Title, models.OrderStatusDraft, 1).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: %w", store.ErrBuildingSQLQuery, err)
	}

	_, err = q.Exec(ctx, query, queryArgs...)
	return err
}

type updateOrderArgs struct {
	ID        string  `json:"id"`
	Title     *string `json:"title"`
	Status    *string `json:"status"`
	ManagerID *string `json:"managerId"`
}

func updateOrder(ctx context.Context, q store.Querier, principal models.Principal, args []byte) error {
	var payload updateOrderArgs
	if err := json.Unmarshal(args, &payload); err != nil {
		return fmt.Errorf("decoding updateOrder args: %w", err)
	}

	builder := sq.Update("orders").
		Set("version", sq.Expr("version + 1")).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": payload.ID, "tenant_id": principal.TenantID})
	if payload.Title != nil {
		builder = builder.Set("title", *payload.Title)
	}
	if payload.Status != nil {
		builder = builder.Set("status", *payload.Status)
	}
	if payload.ManagerID != nil {
		builder = builder.Set("manager_id", *payload.ManagerID)
	}

	query, queryArgs, err := builder.PlaceholderFormat(sq.Dollar).ToSql()
	if err != nil {
		return fmt.Errorf("%w: %w", store.ErrBuildingSQLQuery, err)
	}

	result, err := q.Exec(ctx, query, queryArgs...)
	if err != nil {
		return err
	}

	return requireAffected(result, ErrOrderNotFound)
}

type archiveOrderArgs struct {
	ID string `json:"id"`
}

func archiveOrder(ctx context.Context, q store.Querier, principal models.Principal, args []byte) error {
	var payload archiveOrderArgs
	if err := json.Unmarshal(args, &payload); err != nil {
		return fmt.Errorf("decoding archiveOrder args: %w", err)
	}

	query, queryArgs, err := sq.Update("orders").
		Set("deleted_at", sq.Expr("NOW()")).
		Set("version", sq.Expr("version + 1")).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": payload.ID, "tenant_id": principal.TenantID, "deleted_at": nil}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: %w", store.ErrBuildingSQLQuery, err)
	}

	result, err := q.Exec(ctx, query, queryArgs...)
	if err != nil {
		return err
	}

	return requireAffected(result, ErrOrderNotFound)
}
