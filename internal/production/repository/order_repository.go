package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/google/uuid"

	"production-manager/internal/domain"
	apperrors "production-manager/internal/errors"
)

// MySQL error 1062: duplicate entry for a unique index.
const mysqlErrDuplicateEntry = 1062

type MySQLOrderRepository struct {
	db *sql.DB
}

func NewMySQLOrderRepository(db *sql.DB) *MySQLOrderRepository {
	return &MySQLOrderRepository{db: db}
}

// Insert persists a new order in RECEIVED status with a generated id.
// A duplicate externalOrderId is reported as a ConflictError so callers can
// treat the lost race as "already exists" instead of a failure.
func (r *MySQLOrderRepository) Insert(ctx context.Context, externalOrderID string, items json.RawMessage) (*domain.ProductionOrder, error) {
	now := time.Now().UTC().Truncate(time.Millisecond)
	order := &domain.ProductionOrder{
		ID:              uuid.New().String(),
		ExternalOrderID: externalOrderID,
		Items:           items,
		Status:          domain.StatusReceived,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	query := `
		INSERT INTO production_orders (id, externalOrderId, items, status, createdAt, updatedAt)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		order.ID, order.ExternalOrderID, []byte(order.Items), string(order.Status),
		order.CreatedAt, order.UpdatedAt,
	)
	if err != nil {
		var mysqlErr *mysql.MySQLError
		if errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlErrDuplicateEntry {
			return nil, apperrors.NewConflictError(
				fmt.Sprintf("order with externalOrderId %s already exists", externalOrderID))
		}
		return nil, fmt.Errorf("inserting order: %w", err)
	}

	return order, nil
}

func (r *MySQLOrderRepository) FindByID(ctx context.Context, id string) (*domain.ProductionOrder, error) {
	query := `
		SELECT id, externalOrderId, items, status, createdAt, updatedAt
		FROM production_orders
		WHERE id = ?
	`

	order, err := scanOrder(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("order with id %s not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("querying order by id: %w", err)
	}

	return order, nil
}

func (r *MySQLOrderRepository) FindByExternalID(ctx context.Context, externalOrderID string) (*domain.ProductionOrder, error) {
	query := `
		SELECT id, externalOrderId, items, status, createdAt, updatedAt
		FROM production_orders
		WHERE externalOrderId = ?
	`

	order, err := scanOrder(r.db.QueryRowContext(ctx, query, externalOrderID))
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(
			fmt.Sprintf("order with externalOrderId %s not found", externalOrderID))
	}
	if err != nil {
		return nil, fmt.Errorf("querying order by externalOrderId: %w", err)
	}

	return order, nil
}

func (r *MySQLOrderRepository) UpdateStatus(ctx context.Context, id string, status domain.Status, updatedAt time.Time) error {
	query := `UPDATE production_orders SET status = ?, updatedAt = ? WHERE id = ?`

	result, err := r.db.ExecContext(ctx, query, string(status), updatedAt, id)
	if err != nil {
		return fmt.Errorf("updating order status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("order with id %s not found", id))
	}

	return nil
}

// ListByStatuses returns all orders in any of the given statuses, oldest
// created first. The result order is the production queue order.
func (r *MySQLOrderRepository) ListByStatuses(ctx context.Context, statuses []domain.Status) ([]domain.ProductionOrder, error) {
	if len(statuses) == 0 {
		return []domain.ProductionOrder{}, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(statuses)), ", ")
	query := fmt.Sprintf(`
		SELECT id, externalOrderId, items, status, createdAt, updatedAt
		FROM production_orders
		WHERE status IN (%s)
		ORDER BY createdAt ASC
	`, placeholders)

	args := make([]any, len(statuses))
	for i, s := range statuses {
		args[i] = string(s)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying orders by status: %w", err)
	}
	defer rows.Close()

	orders := []domain.ProductionOrder{}
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning order row: %w", err)
		}
		orders = append(orders, *order)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating order rows: %w", err)
	}

	return orders, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*domain.ProductionOrder, error) {
	var order domain.ProductionOrder
	var items []byte
	var status string

	err := row.Scan(
		&order.ID, &order.ExternalOrderID, &items, &status,
		&order.CreatedAt, &order.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	order.Items = json.RawMessage(items)
	order.Status = domain.Status(status)
	return &order, nil
}
