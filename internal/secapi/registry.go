package secapi

import (
	"errors"
	"fmt"
	"sort"

	"golang.org/x/exp/slog"
)

// Registry именованные хранилища и хранилище по умолчанию
type Registry struct {
	handlers    map[string]Handler
	defaultName string
	log         *slog.Logger
}

func NewRegistry(log *slog.Logger) *Registry {
	return &Registry{
		handlers: make(map[string]Handler),
		log:      log.With(slog.String("component", "secapi")),
	}
}

// Register добавляет или заменяет хранилище; первое зарегистрированное становится хранилищем по умолчанию
func (r *Registry) Register(name string, h Handler) {
	r.handlers[name] = h
	if r.defaultName == "" {
		r.defaultName = name
	}
}

func (r *Registry) Get(name string) (Handler, bool) {
	h, ok := r.handlers[name]
	return h, ok
}

func (r *Registry) SetDefault(name string) error {
	if _, ok := r.handlers[name]; !ok {
		return fmt.Errorf("хранилище %q не зарегистрировано", name)
	}
	r.defaultName = name
	return nil
}

// Default хранилище по умолчанию или nil
func (r *Registry) Default() Handler {
	return r.handlers[r.defaultName]
}

// InitAll инициализирует все хранилища. Ошибка одного не мешает остальным,
// но возвращается вызывающему.
func (r *Registry) InitAll() error {
	var errs []error
	for _, name := range r.names() {
		if err := r.handlers[name].Init(); err != nil {
			r.log.Warn("Ошибка инициализации хранилища", "handler", name, "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}
	return errors.Join(errs...)
}

func (r *Registry) CloseAll() error {
	var errs []error
	for _, name := range r.names() {
		if err := r.handlers[name].Close(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}
	return errors.Join(errs...)
}

func (r *Registry) names() []string {
	names := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
