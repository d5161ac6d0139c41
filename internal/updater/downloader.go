// Package updater загружает обновления клиента: проверка версии у сервиса
// обновлений и возобновляемая загрузка пакета с проверкой MD5.
package updater

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"golang.org/x/exp/slog"
	"golang.org/x/time/rate"

	"alchemy/internal/events"
)

// ProgressPumpName канал событий прогресса загрузки
const ProgressPumpName = "updater"

// chunkSize размер одного чтения тела ответа и емкость ограничителя
const chunkSize = 32 * 1024

// ErrDownloadInProgress загрузка уже идет
var ErrDownloadInProgress = errors.New(ReasonInProgress)

// Client получатель результатов загрузки. Методы вызываются из горутины
// загрузки; вызывать из них Wait или Close нельзя.
type Client interface {
	DownloadComplete(rec DownloadRecord)
	DownloadError(reason string)
}

type State int32

const (
	StateIdle State = iota
	StateDownloading
	StateCompleted
	StateFailed
	StateCancelled
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateDownloading:
		return "downloading"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	case StateCancelled:
		return "cancelled"
	}
	return "unknown"
}

// ProgressEvent событие прогресса загрузки
type ProgressEvent struct {
	DownloadSize    int64 `json:"download_size"`
	BytesDownloaded int64 `json:"bytes_downloaded"`
}

type Options struct {
	// TempDir каталог, куда сохраняется пакет обновления
	TempDir string
	// LogsDir каталог маркера, если MarkerPath не задан
	LogsDir        string
	MarkerPath     string
	CurrentVersion string
	// BandwidthLimit ограничение скорости в байтах в секунду, 0 - без ограничения
	BandwidthLimit int64
	Transport      TransportOptions
	Progress       *events.Pump
}

// Downloader загружает одно обновление за раз в фоновой горутине
type Downloader struct {
	client         Client
	transport      *transport
	tempDir        string
	markerPath     string
	currentVersion string
	progress       *events.Pump
	log            *slog.Logger

	// mu сериализует запуск и остановку загрузки
	mu        sync.Mutex
	state     atomic.Int32
	cancelled atomic.Bool
	stop      context.CancelFunc
	wg        sync.WaitGroup

	limitMu   sync.Mutex
	bandwidth int64
	required  bool
	limiter   *rate.Limiter

	errMu   sync.Mutex
	lastErr error
}

func NewDownloader(client Client, opts Options, log *slog.Logger) (*Downloader, error) {
	t, err := newTransport(opts.Transport)
	if err != nil {
		return nil, err
	}

	tempDir := opts.TempDir
	if tempDir == "" {
		tempDir = os.TempDir()
	}

	markerPath := opts.MarkerPath
	if markerPath == "" {
		markerPath = filepath.Join(opts.LogsDir, MarkerFileName)
	}

	return &Downloader{
		client:         client,
		transport:      t,
		tempDir:        tempDir,
		markerPath:     markerPath,
		currentVersion: opts.CurrentVersion,
		progress:       opts.Progress,
		log:            log.With(slog.String("component", "updater")),
		bandwidth:      opts.BandwidthLimit,
		limiter:        rate.NewLimiter(limitFor(opts.BandwidthLimit), chunkSize),
	}, nil
}

func (d *Downloader) MarkerPath() string {
	return d.markerPath
}

// Pending запись прерванной загрузки из маркера, если она есть
func (d *Downloader) Pending() (*DownloadRecord, bool) {
	rec, err := readMarker(d.markerPath)
	if err != nil || rec.Empty() {
		return nil, false
	}
	return rec, true
}

func (d *Downloader) State() State {
	return State(d.state.Load())
}

func (d *Downloader) IsDownloading() bool {
	return d.State() == StateDownloading
}

// LastError подробная причина последней ошибки загрузки
func (d *Downloader) LastError() error {
	d.errMu.Lock()
	defer d.errMu.Unlock()
	return d.lastErr
}

// Download начинает загрузку с нуля. Результат приходит через Client.
func (d *Downloader) Download(uri, hash, channel, version, infoURL string, required bool) {
	d.mu.Lock()
	notify := d.downloadLocked(uri, hash, channel, version, infoURL, required)
	d.mu.Unlock()

	if notify != nil {
		notify()
	}
}

// Resume продолжает загрузку по маркеру: докачивает недостающий хвост,
// проверяет уже загруженный файл или начинает заново.
func (d *Downloader) Resume() {
	d.mu.Lock()
	notify := d.resumeLocked()
	d.mu.Unlock()

	if notify != nil {
		notify()
	}
}

// Cancel останавливает загрузку без вызова DownloadError; маркер остается
func (d *Downloader) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.cancelled.Store(true)
	if d.stop != nil {
		d.stop()
	}
}

// Wait ждет завершения фоновой горутины
func (d *Downloader) Wait() {
	d.wg.Wait()
}

func (d *Downloader) Close() {
	d.Cancel()
	d.Wait()
}

// SetBandwidthLimit задает ограничение скорости. Для идущей загрузки оно
// применяется сразу, кроме обязательных обновлений.
func (d *Downloader) SetBandwidthLimit(bytesPerSecond int64) {
	d.limitMu.Lock()
	defer d.limitMu.Unlock()

	d.bandwidth = bytesPerSecond
	if d.IsDownloading() && !d.required {
		d.limiter.SetLimit(limitFor(bytesPerSecond))
	}
}

// Limit текущее ограничение скорости загрузки
func (d *Downloader) Limit() rate.Limit {
	d.limitMu.Lock()
	defer d.limitMu.Unlock()
	return d.limiter.Limit()
}

// Discard удаляет маркер и частично загруженный файл
func (d *Downloader) Discard() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.IsDownloading() {
		return ErrDownloadInProgress
	}

	rec, err := readMarker(d.markerPath)
	if errors.Is(err, errNoMarker) {
		return nil
	}
	if err == nil && rec.Path != "" {
		if err := removeFile(rec.Path); err != nil {
			return fmt.Errorf("ошибка удаления %s: %w", rec.Path, err)
		}
	}

	if err := removeFile(d.markerPath); err != nil {
		return fmt.Errorf("ошибка удаления маркера: %w", err)
	}
	return nil
}

func (d *Downloader) downloadLocked(uri, hash, channel, version, infoURL string, required bool) func() {
	if d.IsDownloading() {
		return d.reportError(ReasonInProgress, nil)
	}

	rec := &DownloadRecord{
		URL:            uri,
		Hash:           hash,
		UpdateChannel:  channel,
		UpdateVersion:  version,
		InfoURL:        infoURL,
		Required:       required,
		CurrentVersion: d.currentVersion,
	}

	u, err := url.Parse(uri)
	if err != nil {
		return d.reportError(ReasonTransport, fmt.Errorf("неверный адрес загрузки: %w", err))
	}

	fileName := lastPathSegment(u.Path)
	if fileName == "" {
		return d.reportError(ReasonNoFilePath, nil)
	}
	rec.Path = filepath.Join(d.tempDir, fileName)

	d.log.Info("Загрузка обновления", "path", rec.Path, "url", uri, "hash", hash)

	if err := writeMarker(d.markerPath, rec); err != nil {
		d.log.Warn("Ошибка записи маркера загрузки", "path", d.markerPath, "error", err)
	}

	f, err := os.OpenFile(rec.Path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return d.reportError(ReasonTransport, fmt.Errorf("ошибка открытия файла загрузки: %w", err))
	}

	d.startLocked(f, rec, 0)
	return nil
}

func (d *Downloader) resumeLocked() func() {
	if d.IsDownloading() {
		return d.reportError(ReasonInProgress, nil)
	}
	d.cancelled.Store(false)

	rec, err := readMarker(d.markerPath)
	if errors.Is(err, errNoMarker) {
		return d.reportError(ReasonNoMarker, nil)
	}
	if err != nil {
		return d.reportError(ReasonNoInfo, err)
	}
	if rec.Empty() {
		return d.reportError(ReasonNoInfo, nil)
	}

	// Маркер записан до ответа сервера: сколько должно быть на диске, неизвестно
	if rec.Size <= 0 {
		d.log.Info("Размер загрузки неизвестен, загрузка начинается заново", "path", rec.Path)
		return d.downloadLocked(rec.URL, rec.Hash, rec.UpdateChannel, rec.UpdateVersion, rec.InfoURL, rec.Required)
	}

	info, err := os.Stat(rec.Path)
	if err == nil && info.Mode().IsRegular() {
		if info.Size() != rec.Size {
			return d.resumeDownloadingLocked(rec, info.Size())
		}

		if d.validateOrRemove(rec) {
			if err := removeFile(d.markerPath); err != nil {
				d.log.Warn("Ошибка удаления маркера", "error", err)
			}
			d.state.Store(int32(StateCompleted))
			completed := *rec
			return func() { d.client.DownloadComplete(completed) }
		}
	}

	return d.downloadLocked(rec.URL, rec.Hash, rec.UpdateChannel, rec.UpdateVersion, rec.InfoURL, rec.Required)
}

func (d *Downloader) resumeDownloadingLocked(rec *DownloadRecord, offset int64) func() {
	d.log.Info("Возобновление загрузки", "path", rec.Path, "url", rec.URL, "offset", offset)

	f, err := os.OpenFile(rec.Path, os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return d.reportError(ReasonTransport, fmt.Errorf("ошибка открытия файла загрузки: %w", err))
	}

	d.startLocked(f, rec, offset)
	return nil
}

func (d *Downloader) startLocked(f *os.File, rec *DownloadRecord, offset int64) {
	ctx, cancel := context.WithCancel(context.Background())
	d.stop = cancel
	d.cancelled.Store(false)

	// Состояние и ограничитель меняются вместе под limitMu
	d.limitMu.Lock()
	d.state.Store(int32(StateDownloading))
	d.resetLimiterLocked(rec.Required)
	d.limitMu.Unlock()

	d.wg.Add(1)
	go d.run(ctx, f, rec, offset)
}

func (d *Downloader) run(ctx context.Context, f *os.File, rec *DownloadRecord, offset int64) {
	defer d.wg.Done()

	err := d.transfer(ctx, f, rec, offset)
	if cerr := f.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("ошибка закрытия файла загрузки: %w", cerr)
	}

	d.finish(rec, err)
}

func (d *Downloader) transfer(ctx context.Context, f *os.File, rec *DownloadRecord, offset int64) error {
	resp, err := d.transport.get(ctx, rec.URL, offset)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if offset > 0 && resp.StatusCode != http.StatusPartialContent {
		d.log.Info("Сервер не поддерживает диапазоны, загрузка с начала", "status", resp.StatusCode)
		if err := f.Truncate(0); err != nil {
			return fmt.Errorf("ошибка очистки файла загрузки: %w", err)
		}
		offset = 0
	}

	if offset == 0 && resp.ContentLength >= 0 {
		d.log.Info("Размер загрузки", "size", resp.ContentLength)
		rec.Size = resp.ContentLength
		if err := writeMarker(d.markerPath, rec); err != nil {
			d.log.Warn("Ошибка записи маркера загрузки", "path", d.markerPath, "error", err)
		}
	}

	limiter := d.currentLimiter()
	total := resp.ContentLength
	buf := make([]byte, chunkSize)
	var received int64
	percent := 0

	for {
		if d.cancelled.Load() {
			return context.Canceled
		}

		n, rerr := resp.Body.Read(buf)
		if n > 0 {
			if err := limiter.WaitN(ctx, n); err != nil {
				return err
			}
			if _, err := f.Write(buf[:n]); err != nil {
				return fmt.Errorf("ошибка записи файла загрузки: %w", err)
			}
			received += int64(n)
			percent = d.reportProgress(total, received, percent)
		}

		if errors.Is(rerr, io.EOF) {
			return nil
		}
		if rerr != nil {
			return fmt.Errorf("ошибка чтения ответа: %w", rerr)
		}
	}
}

func (d *Downloader) finish(rec *DownloadRecord, err error) {
	switch {
	case err == nil:
		if err := removeFile(d.markerPath); err != nil {
			d.log.Warn("Ошибка удаления маркера", "error", err)
		}
		if d.validateOrRemove(rec) {
			d.log.Info("Загрузка завершена", "path", rec.Path)
			d.state.Store(int32(StateCompleted))
			d.client.DownloadComplete(*rec)
			return
		}
		d.setLastError(fmt.Errorf("хэш %s не совпал для %s", rec.Hash, rec.Path))
		d.state.Store(int32(StateFailed))
		d.client.DownloadError(ReasonHashCheck)

	case d.cancelled.Load():
		d.log.Info("Загрузка отменена пользователем", "path", rec.Path)
		d.state.Store(int32(StateCancelled))

	default:
		d.log.Warn("Ошибка загрузки", "url", rec.URL, "error", err)
		d.setLastError(err)
		if err := removeFile(d.markerPath); err != nil {
			d.log.Warn("Ошибка удаления маркера", "error", err)
		}
		if rec.Path != "" {
			d.log.Info("Удаление файла загрузки", "path", rec.Path)
			if err := removeFile(rec.Path); err != nil {
				d.log.Warn("Ошибка удаления файла загрузки", "path", rec.Path, "error", err)
			}
		}
		d.state.Store(int32(StateFailed))
		d.client.DownloadError(ReasonTransport)
	}
}

// reportProgress публикует событие, только если процент вырос
func (d *Downloader) reportProgress(total, received int64, last int) int {
	if total <= 0 {
		return last
	}

	percent := int(100 * received / total)
	if percent <= last {
		return last
	}

	if d.progress != nil {
		d.progress.Post(ProgressEvent{DownloadSize: total, BytesDownloaded: received})
	}
	d.log.Debug("Прогресс загрузки", "download_size", total, "bytes_downloaded", received)
	return percent
}

func (d *Downloader) reportError(reason string, err error) func() {
	if err != nil {
		d.log.Warn("Ошибка загрузки", "reason", reason, "error", err)
		d.setLastError(err)
	}
	return func() { d.client.DownloadError(reason) }
}

func (d *Downloader) setLastError(err error) {
	d.errMu.Lock()
	defer d.errMu.Unlock()
	d.lastErr = err
}

// resetLimiterLocked новый ограничитель для очередной загрузки;
// обязательные обновления не ограничиваются
func (d *Downloader) resetLimiterLocked(required bool) {
	d.required = required
	limit := limitFor(d.bandwidth)
	if required {
		limit = rate.Inf
	}
	d.limiter = rate.NewLimiter(limit, chunkSize)
}

func (d *Downloader) currentLimiter() *rate.Limiter {
	d.limitMu.Lock()
	defer d.limitMu.Unlock()
	return d.limiter
}

func limitFor(bytesPerSecond int64) rate.Limit {
	if bytesPerSecond <= 0 {
		return rate.Inf
	}
	return rate.Limit(bytesPerSecond)
}

func lastPathSegment(p string) string {
	p = strings.TrimRight(p, "/")
	if p == "" {
		return ""
	}
	return p[strings.LastIndex(p, "/")+1:]
}
