package controller

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"production-manager/internal/domain"
	"production-manager/internal/dto"
	apperrors "production-manager/internal/errors"
)

type ProductionService interface {
	ReceiveOrder(ctx context.Context, req *dto.CreateProductionOrderRequest) (*domain.ProductionOrder, error)
	UpdateStatus(ctx context.Context, id string, target domain.Status) (*domain.ProductionOrder, error)
	ListQueue(ctx context.Context) ([]domain.ProductionOrder, error)
}

type ProductionController struct {
	service ProductionService
	logger  *zap.Logger
}

func NewProductionController(service ProductionService, logger *zap.Logger) *ProductionController {
	return &ProductionController{
		service: service,
		logger:  logger,
	}
}

// CreateOrder is the direct-submission counterpart of the queue intake.
// Replays of an already ingested externalOrderId return the original order.
func (c *ProductionController) CreateOrder(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	var req dto.CreateProductionOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid JSON body", zap.Error(err))
		c.writeValidationError(w, "invalid JSON body", apperrors.ValidationDetail{
			Field:   "body",
			Message: "request body must be valid JSON",
		})
		return
	}

	order, err := c.service.ReceiveOrder(r.Context(), &req)
	if err != nil {
		c.handleServiceError(w, err, logger)
		return
	}

	c.writeJSON(w, http.StatusCreated, order)
}

func (c *ProductionController) ListQueue(w http.ResponseWriter, r *http.Request) {
	orders, err := c.service.ListQueue(r.Context())
	if err != nil {
		c.handleServiceError(w, err, c.logger)
		return
	}

	c.writeJSON(w, http.StatusOK, orders)
}

func (c *ProductionController) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	id := chi.URLParam(r, "id")

	var req dto.UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid JSON body", zap.Error(err))
		c.writeValidationError(w, "invalid JSON body", apperrors.ValidationDetail{
			Field:   "body",
			Message: "request body must be valid JSON",
		})
		return
	}

	target, err := domain.ParseStatus(req.Status)
	if err != nil {
		logger.Warn("invalid status value", zap.String("status", req.Status))
		c.writeValidationError(w, "invalid status value", apperrors.ValidationDetail{
			Field:   "status",
			Message: "status must be one of: RECEIVED, PREPARING, DONE, DELIVERED",
		})
		return
	}

	order, err := c.service.UpdateStatus(r.Context(), id, target)
	if err != nil {
		c.handleServiceError(w, err, logger)
		return
	}

	c.writeJSON(w, http.StatusOK, order)
}

func (c *ProductionController) handleServiceError(w http.ResponseWriter, err error, logger *zap.Logger) {
	if ve, ok := apperrors.IsValidationError(err); ok {
		c.writeValidationError(w, ve.Message, ve.Details...)
		return
	}

	if _, ok := apperrors.IsNotFoundError(err); ok {
		c.writeError(w, http.StatusNotFound, "NOT_FOUND", err.Error())
		return
	}

	if _, ok := apperrors.IsInvalidTransitionError(err); ok {
		c.writeError(w, http.StatusBadRequest, "INVALID_TRANSITION", err.Error())
		return
	}

	logger.Error("unexpected error", zap.Error(err))
	c.writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "an unexpected error occurred")
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

type validationErrorResponse struct {
	Error   string                       `json:"error"`
	Message string                       `json:"message"`
	Details []apperrors.ValidationDetail `json:"details"`
}

func (c *ProductionController) writeError(w http.ResponseWriter, status int, code string, message string) {
	c.writeJSON(w, status, errorResponse{
		Error:   code,
		Message: message,
	})
}

func (c *ProductionController) writeValidationError(w http.ResponseWriter, message string, details ...apperrors.ValidationDetail) {
	c.writeJSON(w, http.StatusBadRequest, validationErrorResponse{
		Error:   "VALIDATION_ERROR",
		Message: message,
		Details: details,
	})
}

func (c *ProductionController) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		c.logger.Error("failed to encode response", zap.Error(err))
	}
}
