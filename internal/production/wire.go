package production

import (
	"database/sql"

	"go.uber.org/zap"

	"production-manager/internal/production/controller"
	"production-manager/internal/production/repository"
	"production-manager/internal/production/service"
)

func NewService(db *sql.DB, logger *zap.Logger) *service.ProductionService {
	orderRepo := repository.NewMySQLOrderRepository(db)
	return service.NewProductionService(orderRepo, logger)
}

func NewController(svc *service.ProductionService, logger *zap.Logger) *controller.ProductionController {
	return controller.NewProductionController(svc, logger)
}
