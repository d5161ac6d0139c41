package history

import (
	"context"
	"sync"
	"time"

	"golang.org/x/exp/slog"

	"alchemy/internal/updater"
)

const recordTimeout = 5 * time.Second

// Recorder пишет исход каждой загрузки в журнал и передает
// результат дальше исходному получателю
type Recorder struct {
	next    updater.Client
	journal Journal
	log     *slog.Logger

	mu      sync.Mutex
	pending Entry
}

var _ updater.Client = (*Recorder)(nil)

func NewRecorder(next updater.Client, journal Journal, log *slog.Logger) *Recorder {
	return &Recorder{
		next:    next,
		journal: journal,
		log:     log.With(slog.String("component", "updater.history")),
	}
}

// Expect запоминает описание загрузки для записей об ошибках,
// в которых самой записи загрузки нет
func (r *Recorder) Expect(url, channel, version string, required bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pending = Entry{URL: url, Channel: channel, Version: version, Required: required}
}

// ExpectRecord то же, что Expect, по записи из маркера возобновляемой загрузки
func (r *Recorder) ExpectRecord(rec updater.DownloadRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pending = Entry{
		URL:      rec.URL,
		Channel:  rec.UpdateChannel,
		Version:  rec.UpdateVersion,
		Path:     rec.Path,
		Required: rec.Required,
	}
}

func (r *Recorder) DownloadComplete(rec updater.DownloadRecord) {
	r.add(Entry{
		URL:      rec.URL,
		Channel:  rec.UpdateChannel,
		Version:  rec.UpdateVersion,
		Path:     rec.Path,
		Outcome:  OutcomeCompleted,
		Required: rec.Required,
	})
	r.next.DownloadComplete(rec)
}

func (r *Recorder) DownloadError(reason string) {
	r.mu.Lock()
	e := r.pending
	r.mu.Unlock()

	e.Outcome = OutcomeFailed
	e.Reason = reason
	r.add(e)
	r.next.DownloadError(reason)
}

func (r *Recorder) add(e Entry) {
	ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
	defer cancel()

	if _, err := r.journal.Add(ctx, e); err != nil {
		r.log.Warn("Ошибка записи журнала загрузок", "error", err)
	}
}
