package update

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"alchemy/cmd/alchemy/cmd/types"
	"alchemy/internal/updater"
	"alchemy/internal/updater/history"
)

const progressListener = "cli"

var bandwidthLimit int64

// UpdateCmd - родительская команда для операций с обновлениями
var UpdateCmd = &cobra.Command{
	Use:   "update",
	Short: "Проверка и загрузка обновлений",
	Long: `Проверка новой версии, загрузка пакета с докачкой
и журнал прошлых загрузок.`,
}

// outcome результат загрузки, приходящий из загрузчика
type outcome struct {
	mu     sync.Mutex
	rec    *updater.DownloadRecord
	reason string
}

func (o *outcome) DownloadComplete(rec updater.DownloadRecord) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.rec = &rec
}

func (o *outcome) DownloadError(reason string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.reason = reason
}

// runDownload запускает загрузку через start, показывает прогресс и ждет
// завершения. Ctrl-C отменяет загрузку, маркер остается для resume.
func runDownload(cmd *cobra.Command, start func(d *updater.Downloader, r *history.Recorder)) error {
	app, err := types.App(cmd)
	if err != nil {
		return err
	}

	out := &outcome{}
	d, recorder, err := app.NewDownloader(out)
	if err != nil {
		return fmt.Errorf("ошибка создания загрузчика: %w", err)
	}
	if bandwidthLimit > 0 {
		d.SetBandwidthLimit(bandwidthLimit)
	}

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.Suffix = " Подключение..."

	progress := app.Progress()
	if err := progress.Listen(progressListener, func(payload any) {
		ev, ok := payload.(updater.ProgressEvent)
		if !ok || ev.DownloadSize <= 0 {
			return
		}
		s.Lock()
		s.Suffix = fmt.Sprintf(" Загрузка %d%% (%s из %s)",
			100*ev.BytesDownloaded/ev.DownloadSize,
			formatBytes(ev.BytesDownloaded), formatBytes(ev.DownloadSize))
		s.Unlock()
	}); err != nil {
		return err
	}
	defer progress.StopListening(progressListener)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s.Start()
	start(d, recorder)

	done := make(chan struct{})
	go func() {
		d.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		d.Cancel()
		<-done
	}

	out.mu.Lock()
	rec, reason := out.rec, out.reason
	out.mu.Unlock()

	switch {
	case rec != nil:
		s.FinalMSG = color.GreenString("✓") + " Обновление загружено: " + color.CyanString(rec.Path) + "\n"
		s.Stop()
		return nil
	case reason != "":
		s.Stop()
		if detail := d.LastError(); detail != nil {
			return fmt.Errorf("загрузка не удалась (%s): %w", reason, detail)
		}
		return errors.New("загрузка не удалась: " + reason)
	case d.State() == updater.StateCancelled:
		s.FinalMSG = color.YellowString("!") + " Загрузка прервана. Продолжить: " +
			color.CyanString("alchemy update resume") + "\n"
		s.Stop()
		return nil
	}

	s.Stop()
	return nil
}

func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
