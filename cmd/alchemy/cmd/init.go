package cmd

import (
	"alchemy/cmd/alchemy/cmd/creds"
	"alchemy/cmd/alchemy/cmd/update"
)

func init() {
	// Учетные данные
	rootCmd.AddCommand(creds.CredsCmd)
	creds.CredsCmd.AddCommand(creds.ListCmd)
	creds.CredsCmd.AddCommand(creds.ShowCmd)
	creds.CredsCmd.AddCommand(creds.SaveCmd)
	creds.CredsCmd.AddCommand(creds.DeleteCmd)
	creds.CredsCmd.AddCommand(creds.MigrateLegacyCmd)

	// Обновления
	rootCmd.AddCommand(update.UpdateCmd)
	update.UpdateCmd.AddCommand(update.CheckCmd)
	update.UpdateCmd.AddCommand(update.DownloadCmd)
	update.UpdateCmd.AddCommand(update.ResumeCmd)
	update.UpdateCmd.AddCommand(update.DiscardCmd)
	update.UpdateCmd.AddCommand(update.HistoryCmd)
}
