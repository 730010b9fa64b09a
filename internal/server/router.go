package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"production-manager/internal/production/controller"
)

func NewRouter(productionCtrl *controller.ProductionController, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("ok")); err != nil {
			logger.Error("writing health response", zap.Error(err))
		}
	})

	r.Route("/production", func(r chi.Router) {
		r.Post("/orders", productionCtrl.CreateOrder)
		r.Get("/queue", productionCtrl.ListQueue)
		r.Patch("/{id}/status", productionCtrl.UpdateStatus)
	})

	return r
}
