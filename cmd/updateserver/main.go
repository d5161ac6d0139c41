package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"alchemy/internal/app/config"
	"alchemy/internal/app/updateserver/api"
	"alchemy/internal/app/updateserver/catalog"
	"alchemy/internal/utils/logger"
)

const shutdownTimeout = 5 * time.Second

func main() {
	cfg := config.MustLoad()
	log := logger.NewWithLevel(cfg.Env, cfg.LogLevel)

	cat, err := catalog.Load(cfg.UpdateServer.CatalogPath)
	if err != nil {
		log.Error("Ошибка загрузки каталога выпусков", "path", cfg.UpdateServer.CatalogPath, "error", err)
		os.Exit(1)
	}
	log.Info("Каталог выпусков загружен", "releases", cat.Count(), "files_dir", cat.FilesDir)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server := &http.Server{
		Addr:              cfg.UpdateServer.Address,
		Handler:           api.New(cat, "http://"+cfg.UpdateServer.Address, log),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("Сервер обновлений запущен", "address", cfg.UpdateServer.Address)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Ошибка сервера", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("Остановка сервера")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Ошибка остановки сервера", "error", err)
	}
}
