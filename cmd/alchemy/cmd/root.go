package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"alchemy/cmd/alchemy/cmd/types"
	"alchemy/internal/app/client"
	"alchemy/internal/app/config"
	"alchemy/internal/secapi"
	"alchemy/internal/utils/logger"
)

var (
	cfgFile    string
	serviceURL string
)

var rootCmd = &cobra.Command{
	Use:   "alchemy",
	Short: "Alchemy - учетные данные и обновления клиента",
	Long: `Alchemy хранит учетные данные гридов в зашифрованном файле,
привязанном к машине, и загружает обновления клиента с возможностью
докачки после перезапуска.`,
	PersistentPreRunE:  setupApp,
	PersistentPostRunE: closeApp,
	SilenceUsage:       true,
	SilenceErrors:      true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if errors.Is(err, secapi.ErrProtectedData) {
			fmt.Fprintf(os.Stderr, "%s Хранилище учетных данных повреждено или создано на другой машине: %v\n",
				color.RedString("✗"), err)
			os.Exit(2)
		}
		fmt.Fprintf(os.Stderr, "Ошибка: %v\n", err)
		os.Exit(1)
	}
}

func setupApp(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("ошибка загрузки конфигурации: %w", err)
	}

	// Флаги командной строки важнее конфигурации
	if serviceURL != "" {
		cfg.Update.ServiceURL = serviceURL
	}

	log := logger.NewWithLevel(cfg.Env, cfg.LogLevel)

	app, err := client.New(cfg, log)
	if err != nil {
		return fmt.Errorf("ошибка инициализации приложения: %w", err)
	}

	cmd.SetContext(context.WithValue(cmd.Context(), types.AppKey, app))
	return nil
}

func closeApp(cmd *cobra.Command, _ []string) error {
	app, ok := cmd.Context().Value(types.AppKey).(*client.App)
	if !ok {
		return nil
	}
	return app.Close()
}

func loadConfig() (*config.Config, error) {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}

		viper.AddConfigPath(filepath.Join(home, ".alchemy"))
		viper.AddConfigPath(".")
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	return config.Load()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "конфигурационный файл")
	rootCmd.PersistentFlags().StringVar(&serviceURL, "service", "", "URL сервиса обновлений")
}
