package service

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"production-manager/internal/domain"
	"production-manager/internal/dto"
	apperrors "production-manager/internal/errors"
)

type OrderRepository interface {
	Insert(ctx context.Context, externalOrderID string, items json.RawMessage) (*domain.ProductionOrder, error)
	FindByID(ctx context.Context, id string) (*domain.ProductionOrder, error)
	FindByExternalID(ctx context.Context, externalOrderID string) (*domain.ProductionOrder, error)
	UpdateStatus(ctx context.Context, id string, status domain.Status, updatedAt time.Time) error
	ListByStatuses(ctx context.Context, statuses []domain.Status) ([]domain.ProductionOrder, error)
}

type ProductionService struct {
	orderRepo OrderRepository
	logger    *zap.Logger
}

func NewProductionService(orderRepo OrderRepository, logger *zap.Logger) *ProductionService {
	return &ProductionService{
		orderRepo: orderRepo,
		logger:    logger,
	}
}

// ReceiveOrder creates the order for req.ExternalOrderID or returns the one
// already stored. The queue delivers at least once, so replays must resolve
// to the same single row: an existing order is returned unchanged, and a
// concurrent insert that loses the unique-index race is absorbed by
// re-fetching the winner.
func (s *ProductionService) ReceiveOrder(ctx context.Context, req *dto.CreateProductionOrderRequest) (*domain.ProductionOrder, error) {
	if err := validateCreateRequest(req); err != nil {
		return nil, err
	}

	existing, err := s.orderRepo.FindByExternalID(ctx, req.ExternalOrderID)
	if err == nil {
		s.logger.Debug("order already exists, returning existing",
			zap.String("externalOrderId", req.ExternalOrderID),
			zap.String("orderId", existing.ID))
		return existing, nil
	}
	if _, ok := apperrors.IsNotFoundError(err); !ok {
		return nil, err
	}

	order, err := s.orderRepo.Insert(ctx, req.ExternalOrderID, req.Items)
	if err != nil {
		if _, ok := apperrors.IsConflictError(err); ok {
			// Lost the insert race to a parallel worker; the winner's row
			// is the order.
			return s.orderRepo.FindByExternalID(ctx, req.ExternalOrderID)
		}
		return nil, err
	}

	s.logger.Info("order received",
		zap.String("externalOrderId", order.ExternalOrderID),
		zap.String("orderId", order.ID))
	return order, nil
}

// UpdateStatus advances the order to target if target is the permitted
// successor of its current status.
func (s *ProductionService) UpdateStatus(ctx context.Context, id string, target domain.Status) (*domain.ProductionOrder, error) {
	order, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !order.Status.CanTransitionTo(target) {
		return nil, apperrors.NewInvalidTransitionError(order.Status, target)
	}

	updatedAt := time.Now().UTC().Truncate(time.Millisecond)
	if err := s.orderRepo.UpdateStatus(ctx, order.ID, target, updatedAt); err != nil {
		return nil, err
	}

	s.logger.Info("order status updated",
		zap.String("orderId", order.ID),
		zap.String("from", order.Status.String()),
		zap.String("to", target.String()))

	order.Status = target
	order.UpdatedAt = updatedAt
	return order, nil
}

// ListQueue returns the orders still in production, oldest first.
func (s *ProductionService) ListQueue(ctx context.Context) ([]domain.ProductionOrder, error) {
	return s.orderRepo.ListByStatuses(ctx, domain.ActiveStatuses())
}

func validateCreateRequest(req *dto.CreateProductionOrderRequest) error {
	var details []apperrors.ValidationDetail

	if req.ExternalOrderID == "" {
		details = append(details, apperrors.ValidationDetail{
			Field:   "externalOrderId",
			Message: "externalOrderId is required",
		})
	}

	var items []json.RawMessage
	if err := json.Unmarshal(req.Items, &items); err != nil || len(items) == 0 {
		details = append(details, apperrors.ValidationDetail{
			Field:   "items",
			Message: "items must be a non-empty array",
		})
	}

	if len(details) > 0 {
		return apperrors.NewValidationError("validation failed", details...)
	}

	return nil
}
