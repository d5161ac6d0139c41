package creds

import (
	"fmt"

	"github.com/spf13/cobra"

	"alchemy/cmd/alchemy/cmd/types"
)

var userID string

var ShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Показать учетные данные",
	Long: `Показывает учетные данные пользователя грида.
	
Без --user берется первая сохраненная запись. Секрет не выводится.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}
		store, err := app.Store()
		if err != nil {
			return err
		}

		cred := store.LoadCredential(grid, userID)
		if !cred.HasIdentifier() {
			fmt.Println("Учетные данные не найдены")
			return nil
		}

		fmt.Printf("Грид:      %s\n", cred.Grid())
		fmt.Printf("User ID:   %s\n", cred.UserID())
		fmt.Printf("Имя:       %s\n", cred.Username())
		fmt.Printf("Тип:       %s\n", cred.IdentifierType())
		if cred.HasAuthenticator() {
			fmt.Printf("Пароль:    сохранен (%s)\n", cred.AuthenticatorType())
		} else {
			fmt.Println("Пароль:    не сохранен")
		}
		return nil
	},
}

func init() {
	addGridFlag(ShowCmd)
	ShowCmd.Flags().StringVarP(&userID, "user", "u", "", "идентификатор пользователя")
}
