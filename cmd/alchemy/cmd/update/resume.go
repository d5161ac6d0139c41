package update

import (
	"github.com/spf13/cobra"

	"alchemy/internal/updater"
	"alchemy/internal/updater/history"
)

var ResumeCmd = &cobra.Command{
	Use:   "resume",
	Short: "Продолжить прерванную загрузку",
	Long: `Продолжает загрузку по маркеру из директории логов.
	
Полностью загруженный файл проверяется без повторной загрузки.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runDownload(cmd, func(d *updater.Downloader, r *history.Recorder) {
			if rec, ok := d.Pending(); ok {
				r.ExpectRecord(*rec)
			}
			d.Resume()
		})
	},
}

func init() {
	ResumeCmd.Flags().Int64Var(&bandwidthLimit, "limit", 0, "ограничение скорости, байт/с")
}
