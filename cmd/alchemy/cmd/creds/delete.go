package creds

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"alchemy/cmd/alchemy/cmd/types"
)

var DeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Удалить учетные данные",
	Long: `Удаляет идентификатор из грида.
	
Если в гриде больше ничего не осталось, удаляется и сам грид.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}
		store, err := app.Store()
		if err != nil {
			return err
		}

		id, err := identifierFromFlags()
		if err != nil {
			return err
		}

		cred := store.LoadCredentialByIdentifier(grid, id)
		if !cred.HasIdentifier() {
			fmt.Println("Учетные данные не найдены")
			return nil
		}

		store.DeleteCredential(cred)
		if err := store.Flush(); err != nil {
			return fmt.Errorf("ошибка сохранения хранилища: %w", err)
		}

		fmt.Printf("%s Учетные данные удалены\n", color.GreenString("✓"))
		return nil
	},
}

func init() {
	addGridFlag(DeleteCmd)
	addIdentifierFlags(DeleteCmd)
}
