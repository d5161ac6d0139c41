package creds

import (
	"fmt"

	"github.com/spf13/cobra"

	"alchemy/internal/secapi"
)

var (
	grid        string
	accountName string
	firstName   string
	lastName    string
)

// CredsCmd - родительская команда для операций с учетными данными
var CredsCmd = &cobra.Command{
	Use:   "creds",
	Short: "Учетные данные гридов",
	Long: `Просмотр, сохранение и удаление учетных данных.
	
Данные хранятся в файле, зашифрованном ключом этой машины.`,
}

// identifierFromFlags идентификатор из --account или --first/--last
func identifierFromFlags() (*secapi.Identifier, error) {
	switch {
	case accountName != "" && (firstName != "" || lastName != ""):
		return nil, fmt.Errorf("укажите либо --account, либо --first и --last")
	case accountName != "":
		return secapi.NewAccountIdentifier(accountName), nil
	case firstName != "" && lastName != "":
		return secapi.NewAgentIdentifier(firstName, lastName), nil
	}
	return nil, fmt.Errorf("не указан идентификатор: --account или --first и --last")
}

func addIdentifierFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&accountName, "account", "", "имя аккаунта")
	cmd.Flags().StringVar(&firstName, "first", "", "имя агента")
	cmd.Flags().StringVar(&lastName, "last", "", "фамилия агента")
}

func addGridFlag(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&grid, "grid", "g", "", "грид")
	_ = cmd.MarkFlagRequired("grid")
}
