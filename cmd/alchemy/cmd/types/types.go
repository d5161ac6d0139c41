package types

import (
	"fmt"

	"github.com/spf13/cobra"

	"alchemy/internal/app/client"
)

type contextKey string

// AppKey ключ, под которым приложение лежит в контексте команды
const AppKey contextKey = "alchemy_app"

// App приложение из контекста команды
func App(cmd *cobra.Command) (*client.App, error) {
	app, ok := cmd.Context().Value(AppKey).(*client.App)
	if !ok || app == nil {
		return nil, fmt.Errorf("приложение не инициализировано")
	}
	return app, nil
}
