package creds

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"alchemy/cmd/alchemy/cmd/types"
	"alchemy/internal/secapi"
)

var ListCmd = &cobra.Command{
	Use:   "list",
	Short: "Список сохраненных идентификаторов",
	Long: `Выводит идентификаторы, сохраненные для грида.
	
Без --grid выводит список гридов.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}
		store, err := app.Store()
		if err != nil {
			return err
		}

		if grid == "" {
			grids := store.Grids()
			if len(grids) == 0 {
				fmt.Println("Сохраненных гридов нет")
				return nil
			}
			for _, g := range grids {
				fmt.Println(g)
			}
			return nil
		}

		ids := store.CredentialIdentifiers(grid)
		if len(ids) == 0 {
			fmt.Printf("Для грида %s учетных данных нет\n", grid)
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintf(w, "USER ID\tИмя\tТип\t\n")
		for _, id := range ids {
			fmt.Fprintf(w, "%s\t%s\t%s\t\n",
				secapi.UserIDFromIdentifier(id),
				secapi.UsernameFromIdentifier(id),
				id.Type)
		}
		return w.Flush()
	},
}

func init() {
	ListCmd.Flags().StringVarP(&grid, "grid", "g", "", "грид")
}
