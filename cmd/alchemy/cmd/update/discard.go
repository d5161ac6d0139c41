package update

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"alchemy/cmd/alchemy/cmd/types"
)

var DiscardCmd = &cobra.Command{
	Use:   "discard",
	Short: "Удалить прерванную загрузку",
	Long:  `Удаляет маркер загрузки и частично загруженный файл.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}

		d, _, err := app.NewDownloader(&outcome{})
		if err != nil {
			return err
		}
		if err := d.Discard(); err != nil {
			return err
		}

		fmt.Printf("%s Прерванная загрузка удалена\n", color.GreenString("✓"))
		return nil
	},
}
