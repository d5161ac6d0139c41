// Сервер обновлений для разработки и тестов:
//
//GET /api/v1/health                                                          # Состояние сервера
//GET /v1.1/{channel}/{version}/{platform}/{platform_version}/{test}/{uid}    # Проверка обновления
//GET /files/{name}                                                           # Файл выпуска (Range)

package api

import (
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"golang.org/x/exp/slog"

	"alchemy/internal/app/updateserver/api/http/files"
	healthAPI "alchemy/internal/app/updateserver/api/http/health"
	"alchemy/internal/app/updateserver/api/http/middleware"
	"alchemy/internal/app/updateserver/api/http/middleware/logger"
	releaseAPI "alchemy/internal/app/updateserver/api/http/release"
	"alchemy/internal/app/updateserver/catalog"
)

type Handlers struct {
	Health  *healthAPI.Handler
	Release *releaseAPI.Handler
	Files   *files.Handler
}

// New создает *chi.Mux с операциями huma и раздачей файлов.
// publicURL внешний адрес сервера для ссылок на файлы выпусков.
func New(cat *catalog.Catalog, publicURL string, log *slog.Logger) *chi.Mux {
	mux := chi.NewMux()

	config := huma.DefaultConfig("Alchemy Update API", "1.1.0")
	API := humachi.New(mux, config)

	loggerMW := logger.New(log)
	h := handlers(cat, publicURL, loggerMW, log)
	h.Health.SetupRoutes(API)
	h.Release.SetupRoutes(API)
	h.Files.SetupRoutes(mux, loggerMW.Handler)

	return mux
}

func handlers(cat *catalog.Catalog, publicURL string, loggerMW *logger.Logger, log *slog.Logger) *Handlers {
	middlewares := middleware.NewContainer()

	middlewares.Add(loggerMW.Middleware())
	healthHandler := healthAPI.NewHandler(cat, log, middlewares.GetAllAndClear())

	middlewares.Add(loggerMW.Middleware())
	releaseHandler := releaseAPI.NewHandler(cat, strings.TrimRight(publicURL, "/")+"/files", log, middlewares.GetAllAndClear())

	return &Handlers{
		Health:  healthHandler,
		Release: releaseHandler,
		Files:   files.NewHandler(cat, log),
	}
}
