package creds

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"alchemy/cmd/alchemy/cmd/types"
	"alchemy/internal/secapi"
)

var MigrateLegacyCmd = &cobra.Command{
	Use:   "migrate-legacy",
	Short: "Перенести пароль из старого password.dat",
	Long: `Читает пароль, сохраненный старыми версиями клиента в password.dat,
и сохраняет его в хранилище для указанного агента.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}
		store, err := app.Store()
		if err != nil {
			return err
		}

		if firstName == "" || lastName == "" {
			return fmt.Errorf("нужно указать --first и --last")
		}

		password := store.LegacyPassword()
		if password == "" {
			fmt.Println("Старый пароль не найден")
			return nil
		}

		// В password.dat лежит MD5 пароля
		cred := store.CreateCredential(grid,
			secapi.NewAgentIdentifier(firstName, lastName),
			secapi.NewHashAuthenticator(hashMD5, password))
		store.SaveCredential(cred, true)
		if err := store.Flush(); err != nil {
			return fmt.Errorf("ошибка сохранения хранилища: %w", err)
		}

		fmt.Printf("%s Пароль перенесен для %s\n", color.GreenString("✓"), color.CyanString(cred.Username()))
		return nil
	},
}

func init() {
	addGridFlag(MigrateLegacyCmd)
	MigrateLegacyCmd.Flags().StringVar(&firstName, "first", "", "имя агента")
	MigrateLegacyCmd.Flags().StringVar(&lastName, "last", "", "фамилия агента")
}
