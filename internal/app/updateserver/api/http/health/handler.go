package health

import (
	"context"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/exp/slog"
)

// Counter источник числа выпусков в каталоге
type Counter interface {
	Count() int
}

type Handler struct {
	catalog    Counter
	log        *slog.Logger
	middleware huma.Middlewares
}

func NewHandler(catalog Counter, log *slog.Logger, middleware huma.Middlewares) *Handler {
	return &Handler{
		catalog:    catalog,
		log:        log,
		middleware: middleware,
	}
}

func (h *Handler) SetupRoutes(api huma.API) {
	huma.Register(api, h.healthCheckOp(), h.healthCheck)
}

func (h *Handler) healthCheck(_ context.Context, _ *Input) (*Output, error) {
	h.log.Debug("health check request received")

	return &Output{
		Body: Response{
			Status:   "OK",
			Releases: h.catalog.Count(),
		},
	}, nil
}
