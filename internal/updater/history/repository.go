// Package history журнал завершенных загрузок обновлений в SQLite
package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const (
	OutcomeCompleted = "completed"
	OutcomeFailed    = "failed"
)

// Entry запись журнала
type Entry struct {
	ID        int64
	URL       string
	Channel   string
	Version   string
	Path      string
	Outcome   string
	Reason    string
	Required  bool
	CreatedAt time.Time
}

// Journal хранилище записей журнала
type Journal interface {
	Add(ctx context.Context, e Entry) (int64, error)
	List(ctx context.Context, limit int) ([]Entry, error)
}

type Repository struct {
	db *sql.DB
}

var _ Journal = (*Repository)(nil)

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Open применяет миграции и открывает журнал по пути к файлу базы
func Open(path string) (*Repository, error) {
	if err := NewMigration(path, nil).Up(); err != nil {
		return nil, fmt.Errorf("ошибка миграции журнала: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("ошибка открытия базы данных: %w", err)
	}

	return NewRepository(db), nil
}

func (r *Repository) Add(ctx context.Context, e Entry) (int64, error) {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO downloads (url, channel, version, path, outcome, reason, required, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, e.URL, e.Channel, e.Version, e.Path, e.Outcome, e.Reason, e.Required, e.CreatedAt)
	if err != nil {
		return 0, fmt.Errorf("ошибка добавления записи журнала: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("ошибка получения id записи: %w", err)
	}
	return id, nil
}

// List последние записи, новые первыми
func (r *Repository) List(ctx context.Context, limit int) ([]Entry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, url, channel, version, path, outcome, reason, required, created_at
		FROM downloads
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения журнала: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.URL, &e.Channel, &e.Version, &e.Path, &e.Outcome, &e.Reason, &e.Required, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("ошибка разбора записи журнала: %w", err)
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка чтения журнала: %w", err)
	}
	return entries, nil
}

func (r *Repository) Close() error {
	return r.db.Close()
}
