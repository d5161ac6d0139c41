package update

import (
	"context"
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"alchemy/cmd/alchemy/cmd/types"
)

const checkTimeout = 30 * time.Second

var CheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Проверить наличие обновления",
	Long: `Запрашивает у сервиса обновлений сведения о версии
для текущего канала и платформы.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}

		checker, err := app.NewChecker()
		if err != nil {
			return err
		}

		params := app.CheckParams()
		if params.BaseURL == "" {
			return fmt.Errorf("не задан URL сервиса обновлений (UPDATE_SERVICE_URL или --service)")
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), checkTimeout)
		defer cancel()

		info, err := checker.CheckVersion(ctx, params)
		if err != nil {
			return err
		}

		if !info.Available() {
			fmt.Printf("%s Установлена актуальная версия %s\n", color.GreenString("✓"), params.Version)
			return nil
		}

		fmt.Printf("%s Доступна версия %s\n", color.CyanString("→"), color.CyanString(info.Version))
		if info.Required {
			fmt.Println(color.YellowString("  Обновление обязательно"))
		}
		fmt.Printf("  URL:  %s\n", info.URL)
		if info.Hash != "" {
			fmt.Printf("  MD5:  %s\n", info.Hash)
		}
		if info.MoreInfo != "" {
			fmt.Printf("  Подробнее: %s\n", info.MoreInfo)
		}

		channel := info.Channel
		if channel == "" {
			channel = params.Channel
		}
		required := ""
		if info.Required {
			required = " --required"
		}
		fmt.Println()
		fmt.Printf("Загрузить: alchemy update download %s --hash %s --channel %s --version %s%s\n",
			info.URL, info.Hash, channel, info.Version, required)
		return nil
	},
}
