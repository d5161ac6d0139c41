package update

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"alchemy/cmd/alchemy/cmd/types"
	"alchemy/internal/updater/history"
)

var historyLimit int

var HistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "Журнал загрузок",
	Long:  `Выводит последние загрузки обновлений и их исход.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}

		repo, err := app.History()
		if err != nil {
			return err
		}

		entries, err := repo.List(cmd.Context(), historyLimit)
		if err != nil {
			return fmt.Errorf("ошибка чтения журнала: %w", err)
		}
		if len(entries) == 0 {
			fmt.Println("Загрузок не было")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintf(w, "Дата\tКанал\tВерсия\tИсход\tПричина\t\n")
		for _, e := range entries {
			status := color.GreenString(e.Outcome)
			if e.Outcome == history.OutcomeFailed {
				status = color.RedString(e.Outcome)
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t\n",
				e.CreatedAt.Format("2006-01-02 15:04"), e.Channel, e.Version, status, e.Reason)
		}
		return w.Flush()
	},
}

func init() {
	HistoryCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "количество записей")
}
