package service

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"go.uber.org/zap"

	"production-manager/internal/domain"
	"production-manager/internal/dto"
	apperrors "production-manager/internal/errors"
)

// Mock implementations

type mockOrderRepository struct {
	InsertFunc           func(ctx context.Context, externalOrderID string, items json.RawMessage) (*domain.ProductionOrder, error)
	FindByIDFunc         func(ctx context.Context, id string) (*domain.ProductionOrder, error)
	FindByExternalIDFunc func(ctx context.Context, externalOrderID string) (*domain.ProductionOrder, error)
	UpdateStatusFunc     func(ctx context.Context, id string, status domain.Status, updatedAt time.Time) error
	ListByStatusesFunc   func(ctx context.Context, statuses []domain.Status) ([]domain.ProductionOrder, error)

	insertCalls       int
	updateStatusCalls int
}

func (m *mockOrderRepository) Insert(ctx context.Context, externalOrderID string, items json.RawMessage) (*domain.ProductionOrder, error) {
	m.insertCalls++
	return m.InsertFunc(ctx, externalOrderID, items)
}

func (m *mockOrderRepository) FindByID(ctx context.Context, id string) (*domain.ProductionOrder, error) {
	return m.FindByIDFunc(ctx, id)
}

func (m *mockOrderRepository) FindByExternalID(ctx context.Context, externalOrderID string) (*domain.ProductionOrder, error) {
	return m.FindByExternalIDFunc(ctx, externalOrderID)
}

func (m *mockOrderRepository) UpdateStatus(ctx context.Context, id string, status domain.Status, updatedAt time.Time) error {
	m.updateStatusCalls++
	return m.UpdateStatusFunc(ctx, id, status, updatedAt)
}

func (m *mockOrderRepository) ListByStatuses(ctx context.Context, statuses []domain.Status) ([]domain.ProductionOrder, error) {
	return m.ListByStatusesFunc(ctx, statuses)
}

func newTestService(repo *mockOrderRepository) *ProductionService {
	return NewProductionService(repo, zap.NewNop())
}

func validRequest() *dto.CreateProductionOrderRequest {
	return &dto.CreateProductionOrderRequest{
		ExternalOrderID: "EXT-1",
		Items:           json.RawMessage(`[{"name": "Burger", "quantity": 1}]`),
	}
}

// Tests

func TestReceiveOrder_CreatesNewOrder(t *testing.T) {
	ctx := context.Background()

	repo := &mockOrderRepository{
		FindByExternalIDFunc: func(ctx context.Context, externalOrderID string) (*domain.ProductionOrder, error) {
			return nil, apperrors.NewNotFoundError("not found")
		},
		InsertFunc: func(ctx context.Context, externalOrderID string, items json.RawMessage) (*domain.ProductionOrder, error) {
			return &domain.ProductionOrder{
				ID:              "id-1",
				ExternalOrderID: externalOrderID,
				Items:           items,
				Status:          domain.StatusReceived,
			}, nil
		},
	}

	svc := newTestService(repo)

	order, err := svc.ReceiveOrder(ctx, validRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if order.ExternalOrderID != "EXT-1" {
		t.Errorf("expected externalOrderId EXT-1, got %s", order.ExternalOrderID)
	}
	if order.Status != domain.StatusReceived {
		t.Errorf("expected status RECEIVED, got %s", order.Status)
	}
	if repo.insertCalls != 1 {
		t.Errorf("expected 1 insert, got %d", repo.insertCalls)
	}
}

func TestReceiveOrder_IdempotentOnDuplicate(t *testing.T) {
	ctx := context.Background()

	existing := &domain.ProductionOrder{
		ID:              "id-1",
		ExternalOrderID: "EXT-1",
		Items:           json.RawMessage(`[{"name": "Burger", "quantity": 1}]`),
		Status:          domain.StatusPreparing,
	}

	repo := &mockOrderRepository{
		FindByExternalIDFunc: func(ctx context.Context, externalOrderID string) (*domain.ProductionOrder, error) {
			return existing, nil
		},
	}

	svc := newTestService(repo)

	// Duplicate delivery carries different items; the original row wins.
	req := &dto.CreateProductionOrderRequest{
		ExternalOrderID: "EXT-1",
		Items:           json.RawMessage(`[{"name": "Pizza", "quantity": 3}]`),
	}

	order, err := svc.ReceiveOrder(ctx, req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if order != existing {
		t.Errorf("expected the existing order to be returned unchanged")
	}
	if string(order.Items) != `[{"name": "Burger", "quantity": 1}]` {
		t.Errorf("expected original items to be preserved, got %s", order.Items)
	}
	if repo.insertCalls != 0 {
		t.Errorf("expected no insert for a duplicate, got %d", repo.insertCalls)
	}
}

func TestReceiveOrder_AbsorbsLostInsertRace(t *testing.T) {
	ctx := context.Background()

	winner := &domain.ProductionOrder{
		ID:              "id-winner",
		ExternalOrderID: "EXT-1",
		Status:          domain.StatusReceived,
	}

	findCalls := 0
	repo := &mockOrderRepository{
		FindByExternalIDFunc: func(ctx context.Context, externalOrderID string) (*domain.ProductionOrder, error) {
			findCalls++
			if findCalls == 1 {
				// Parallel worker inserts between our check and our insert.
				return nil, apperrors.NewNotFoundError("not found")
			}
			return winner, nil
		},
		InsertFunc: func(ctx context.Context, externalOrderID string, items json.RawMessage) (*domain.ProductionOrder, error) {
			return nil, apperrors.NewConflictError("order with externalOrderId EXT-1 already exists")
		},
	}

	svc := newTestService(repo)

	order, err := svc.ReceiveOrder(ctx, validRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if order != winner {
		t.Errorf("expected the winning row to be returned")
	}
}

func TestReceiveOrder_ValidationFailure(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(&mockOrderRepository{})

	cases := []struct {
		name string
		req  *dto.CreateProductionOrderRequest
	}{
		{"missing externalOrderId", &dto.CreateProductionOrderRequest{
			Items: json.RawMessage(`[{"name": "Burger", "quantity": 1}]`),
		}},
		{"empty items", &dto.CreateProductionOrderRequest{
			ExternalOrderID: "EXT-1",
			Items:           json.RawMessage(`[]`),
		}},
		{"items not an array", &dto.CreateProductionOrderRequest{
			ExternalOrderID: "EXT-1",
			Items:           json.RawMessage(`{"name": "Burger"}`),
		}},
		{"no items", &dto.CreateProductionOrderRequest{
			ExternalOrderID: "EXT-1",
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.ReceiveOrder(ctx, tc.req)
			if err == nil {
				t.Fatalf("expected error, got nil")
			}
			if _, ok := apperrors.IsValidationError(err); !ok {
				t.Errorf("expected ValidationError, got %T", err)
			}
		})
	}
}

func TestUpdateStatus_AdvancesToSuccessor(t *testing.T) {
	ctx := context.Background()

	repo := &mockOrderRepository{
		FindByIDFunc: func(ctx context.Context, id string) (*domain.ProductionOrder, error) {
			return &domain.ProductionOrder{ID: id, Status: domain.StatusReceived}, nil
		},
		UpdateStatusFunc: func(ctx context.Context, id string, status domain.Status, updatedAt time.Time) error {
			if status != domain.StatusPreparing {
				t.Errorf("expected persisted status PREPARING, got %s", status)
			}
			return nil
		},
	}

	svc := newTestService(repo)

	order, err := svc.UpdateStatus(ctx, "id-1", domain.StatusPreparing)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if order.Status != domain.StatusPreparing {
		t.Errorf("expected status PREPARING, got %s", order.Status)
	}
	if repo.updateStatusCalls != 1 {
		t.Errorf("expected 1 status update, got %d", repo.updateStatusCalls)
	}
}

func TestUpdateStatus_TransitionGrid(t *testing.T) {
	ctx := context.Background()

	statuses := []domain.Status{
		domain.StatusReceived, domain.StatusPreparing, domain.StatusDone, domain.StatusDelivered,
	}
	successor := map[domain.Status]domain.Status{
		domain.StatusReceived:  domain.StatusPreparing,
		domain.StatusPreparing: domain.StatusDone,
		domain.StatusDone:      domain.StatusDelivered,
	}

	for _, current := range statuses {
		for _, target := range statuses {
			t.Run(fmt.Sprintf("%s_to_%s", current, target), func(t *testing.T) {
				repo := &mockOrderRepository{
					FindByIDFunc: func(ctx context.Context, id string) (*domain.ProductionOrder, error) {
						return &domain.ProductionOrder{ID: id, Status: current}, nil
					},
					UpdateStatusFunc: func(ctx context.Context, id string, status domain.Status, updatedAt time.Time) error {
						return nil
					},
				}
				svc := newTestService(repo)

				_, err := svc.UpdateStatus(ctx, "id-1", target)

				if successor[current] == target {
					if err != nil {
						t.Fatalf("expected success, got %v", err)
					}
					return
				}

				if err == nil {
					t.Fatalf("expected InvalidTransitionError, got nil")
				}
				ite, ok := apperrors.IsInvalidTransitionError(err)
				if !ok {
					t.Fatalf("expected InvalidTransitionError, got %T", err)
				}
				if ite.Current != current || ite.Target != target {
					t.Errorf("error reports %s -> %s, want %s -> %s",
						ite.Current, ite.Target, current, target)
				}
				if repo.updateStatusCalls != 0 {
					t.Errorf("rejected transition must not persist, got %d updates", repo.updateStatusCalls)
				}
			})
		}
	}
}

func TestUpdateStatus_SkipRejectedWithAllowedTarget(t *testing.T) {
	ctx := context.Background()

	repo := &mockOrderRepository{
		FindByIDFunc: func(ctx context.Context, id string) (*domain.ProductionOrder, error) {
			return &domain.ProductionOrder{ID: id, Status: domain.StatusReceived}, nil
		},
	}
	svc := newTestService(repo)

	_, err := svc.UpdateStatus(ctx, "id-1", domain.StatusDone)
	if err == nil {
		t.Fatalf("expected error, got nil")
	}

	ite, ok := apperrors.IsInvalidTransitionError(err)
	if !ok {
		t.Fatalf("expected InvalidTransitionError, got %T", err)
	}
	if len(ite.Allowed) != 1 || ite.Allowed[0] != domain.StatusPreparing {
		t.Errorf("expected allowed target PREPARING, got %v", ite.Allowed)
	}
}

func TestUpdateStatus_OrderNotFound(t *testing.T) {
	ctx := context.Background()

	repo := &mockOrderRepository{
		FindByIDFunc: func(ctx context.Context, id string) (*domain.ProductionOrder, error) {
			return nil, apperrors.NewNotFoundError("order with id id-1 not found")
		},
	}
	svc := newTestService(repo)

	_, err := svc.UpdateStatus(ctx, "id-1", domain.StatusPreparing)
	if err == nil {
		t.Fatalf("expected error, got nil")
	}
	if _, ok := apperrors.IsNotFoundError(err); !ok {
		t.Errorf("expected NotFoundError, got %T", err)
	}
}

func TestListQueue_RequestsActiveStatuses(t *testing.T) {
	ctx := context.Background()

	var requested []domain.Status
	repo := &mockOrderRepository{
		ListByStatusesFunc: func(ctx context.Context, statuses []domain.Status) ([]domain.ProductionOrder, error) {
			requested = statuses
			return []domain.ProductionOrder{}, nil
		},
	}
	svc := newTestService(repo)

	_, err := svc.ListQueue(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []domain.Status{domain.StatusReceived, domain.StatusPreparing, domain.StatusDone}
	if len(requested) != len(want) {
		t.Fatalf("expected %d statuses, got %d", len(want), len(requested))
	}
	for i, s := range want {
		if requested[i] != s {
			t.Errorf("expected status %s at %d, got %s", s, i, requested[i])
		}
	}
}
