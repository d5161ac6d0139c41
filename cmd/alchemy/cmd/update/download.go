package update

import (
	"github.com/spf13/cobra"

	"alchemy/cmd/alchemy/cmd/types"
	"alchemy/internal/updater"
	"alchemy/internal/updater/history"
)

var (
	hash     string
	channel  string
	version  string
	infoURL  string
	required bool
)

var DownloadCmd = &cobra.Command{
	Use:   "download URL",
	Short: "Загрузить пакет обновления",
	Long: `Загружает пакет во временную директорию. Прерванную загрузку
можно продолжить командой resume.
	
Если указан --hash, загруженный файл проверяется по MD5.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if channel == "" {
			if app, err := types.App(cmd); err == nil {
				channel = app.Config().Update.Channel
			}
		}

		return runDownload(cmd, func(d *updater.Downloader, r *history.Recorder) {
			r.Expect(args[0], channel, version, required)
			d.Download(args[0], hash, channel, version, infoURL, required)
		})
	},
}

func init() {
	DownloadCmd.Flags().StringVar(&hash, "hash", "", "ожидаемый MD5 файла")
	DownloadCmd.Flags().StringVar(&channel, "channel", "", "канал обновления (по умолчанию из конфигурации)")
	DownloadCmd.Flags().StringVar(&version, "version", "", "версия обновления")
	DownloadCmd.Flags().StringVar(&infoURL, "info-url", "", "страница с описанием обновления")
	DownloadCmd.Flags().BoolVar(&required, "required", false, "обязательное обновление (без ограничения скорости)")
	DownloadCmd.Flags().Int64Var(&bandwidthLimit, "limit", 0, "ограничение скорости, байт/с")
}
