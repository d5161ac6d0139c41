package logger

import (
	"os"

	"golang.org/x/exp/slog"

	"alchemy/internal/app/config"
)

// New создает логгер в зависимости от окружения
func New(env string) *slog.Logger {
	return NewWithLevel(env, "")
}

// NewWithLevel как New, но level (debug, info, warn, error) заменяет
// уровень окружения. Пустой или неизвестный level игнорируется.
func NewWithLevel(env, level string) *slog.Logger {
	var log *slog.Logger

	switch env {
	case config.EnvLocal:
		log = setupPrettySlog(levelOr(level, slog.LevelDebug))
	case config.EnvDev:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: levelOr(level, slog.LevelDebug)}),
		)
	case config.EnvProd:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: levelOr(level, slog.LevelInfo)}),
		)
	default:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: levelOr(level, slog.LevelInfo)}),
		)
	}

	return log
}

func levelOr(level string, def slog.Level) slog.Level {
	if level == "" {
		return def
	}

	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return def
	}
	return l
}

// Discard возвращает логгер, который ничего не пишет
func Discard() *slog.Logger {
	return slog.New(discardHandler{})
}

func setupPrettySlog(level slog.Level) *slog.Logger {
	opts := PrettyHandlerOptions{
		SlogOpts: &slog.HandlerOptions{
			Level: level,
		},
	}

	handler := opts.NewPrettyHandler(os.Stderr)

	return slog.New(handler)
}
