// Package client собирает компоненты клиента: защищенное хранилище,
// проверку и загрузку обновлений, журнал загрузок.
package client

import (
	"errors"
	"fmt"

	"golang.org/x/exp/slog"

	"alchemy/internal/app/config"
	"alchemy/internal/events"
	"alchemy/internal/machineid"
	"alchemy/internal/secapi"
	"alchemy/internal/secapi/basic"
	"alchemy/internal/updater"
	"alchemy/internal/updater/history"
)

type App struct {
	config  *config.Config
	log     *slog.Logger
	machine machineid.Provider
	secrets *secapi.Registry
	pumps   *events.Pumps
	history *history.Repository

	storeErr error
}

func New(cfg *config.Config, log *slog.Logger) (*App, error) {
	return NewWithMachine(cfg, machineid.NewHost(), log)
}

// NewWithMachine позволяет задать идентификатор машины явно
func NewWithMachine(cfg *config.Config, machine machineid.Provider, log *slog.Logger) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("неверная конфигурация: %w", err)
	}

	app := &App{
		config:  cfg,
		log:     log,
		machine: machine,
		secrets: basic.NewDefaultRegistry(cfg.ProtectedDataPath, cfg.LegacyPasswordPath, machine, log),
		pumps:   events.NewPumps(),
	}

	// Поврежденное хранилище не мешает командам обновления
	if err := app.secrets.InitAll(); err != nil {
		app.storeErr = err
		log.Warn("Защищенное хранилище недоступно", "error", err)
	}

	return app, nil
}

func (a *App) Config() *config.Config {
	return a.config
}

// Store базовое хранилище; ошибка инициализации возвращается здесь
func (a *App) Store() (*basic.Handler, error) {
	if a.storeErr != nil {
		return nil, a.storeErr
	}

	h, ok := a.secrets.Get(secapi.BasicHandlerName)
	if !ok {
		return nil, fmt.Errorf("хранилище %s не зарегистрировано", secapi.BasicHandlerName)
	}
	store, ok := h.(*basic.Handler)
	if !ok {
		return nil, fmt.Errorf("хранилище %s неожиданного типа", secapi.BasicHandlerName)
	}
	return store, nil
}

// IsStoreCorrupted хранилище не удалось расшифровать
func (a *App) IsStoreCorrupted() bool {
	return errors.Is(a.storeErr, secapi.ErrProtectedData)
}

// Progress канал событий прогресса загрузки
func (a *App) Progress() *events.Pump {
	return a.pumps.Obtain(updater.ProgressPumpName)
}

func (a *App) transportOptions() updater.TransportOptions {
	return updater.TransportOptions{
		CACertPath: a.config.CACertPath,
		UserAgent:  "Alchemy/" + a.config.Update.ViewerVersion,
	}
}

func (a *App) NewChecker() (*updater.Checker, error) {
	return updater.NewChecker(a.transportOptions(), a.log)
}

// CheckParams параметры проверки обновлений из конфигурации
func (a *App) CheckParams() updater.CheckParams {
	u := a.config.Update
	return updater.CheckParams{
		BaseURL:         u.ServiceURL,
		Channel:         u.Channel,
		Version:         u.ViewerVersion,
		Platform:        u.Platform,
		PlatformVersion: u.PlatformVer,
		UniqueID:        updater.UniqueIDFromMachine(a.machine.UniqueID()),
		WillingToTest:   u.WillingToTest,
	}
}

// NewDownloader загрузчик, результаты которого пишутся в журнал
// и передаются client
func (a *App) NewDownloader(client updater.Client) (*updater.Downloader, *history.Recorder, error) {
	repo, err := a.History()
	if err != nil {
		return nil, nil, err
	}

	recorder := history.NewRecorder(client, repo, a.log)
	d, err := updater.NewDownloader(recorder, updater.Options{
		TempDir:        a.config.TempDir,
		LogsDir:        a.config.LogsDir,
		CurrentVersion: a.config.Update.ViewerVersion,
		BandwidthLimit: a.config.Update.BandwidthLimit,
		Transport:      a.transportOptions(),
		Progress:       a.Progress(),
	}, a.log)
	if err != nil {
		return nil, nil, err
	}

	return d, recorder, nil
}

// History журнал загрузок, открывается при первом обращении
func (a *App) History() (*history.Repository, error) {
	if a.history != nil {
		return a.history, nil
	}

	repo, err := history.Open(a.config.Update.HistoryPath)
	if err != nil {
		return nil, err
	}
	a.history = repo
	return repo, nil
}

// Close сохраняет хранилище и закрывает журнал
func (a *App) Close() error {
	var errs []error
	if err := a.secrets.CloseAll(); err != nil {
		errs = append(errs, err)
	}
	if a.history != nil {
		if err := a.history.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
