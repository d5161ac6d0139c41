package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvLocal = "local"
	EnvDev   = "dev"
	EnvProd  = "prod"
)

const (
	defaultEnv                = EnvLocal
	defaultConfigDir          = ".alchemy"
	defaultProtectedDataFile  = "bin_conf.dat"
	defaultLegacyPasswordFile = "password.dat"
	defaultLogsDir            = "logs"
	defaultHistoryFile        = "updates.db"
	defaultUpdateChannel      = "Release"
	defaultViewerVersion      = "0.0.0"
	defaultServerAddress      = "localhost:8090"
	defaultServerCatalog      = "releases.yaml"
)

type Config struct {
	Env                string `mapstructure:"app_env"`
	// LogLevel заменяет уровень логирования окружения, если задан
	LogLevel           string `mapstructure:"log_level"`
	ConfigDir          string `mapstructure:"config_dir"`
	ProtectedDataPath  string `mapstructure:"protected_data_file"`
	LegacyPasswordPath string `mapstructure:"legacy_password_file"`
	LogsDir            string `mapstructure:"logs_dir"`
	TempDir            string `mapstructure:"temp_dir"`
	CACertPath         string `mapstructure:"ca_cert_path"`
	Update             Update
	UpdateServer       UpdateServer
}

// Update настройки проверки и загрузки обновлений
type Update struct {
	ServiceURL     string `mapstructure:"update_service_url"`
	Channel        string `mapstructure:"update_channel"`
	ViewerVersion  string `mapstructure:"viewer_version"`
	Platform       string `mapstructure:"platform"`
	PlatformVer    string `mapstructure:"platform_version"`
	WillingToTest  bool   `mapstructure:"willing_to_test"`
	BandwidthLimit int64  `mapstructure:"bandwidth_limit"`
	HistoryPath    string `mapstructure:"update_history_path"`
}

// UpdateServer настройки сервера обновлений для разработки
type UpdateServer struct {
	Address     string `mapstructure:"update_server_address"`
	CatalogPath string `mapstructure:"update_server_catalog"`
}

// MustLoad загружает конфигурацию и паникует при ошибке
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(fmt.Sprintf("Ошибка конфигурации: %v", err))
	}
	return cfg
}

// Load загружает конфигурацию из .env, переменных окружения и значений по умолчанию
func Load() (*Config, error) {
	envPath := ".env"
	if _, err := os.Stat(envPath); os.IsNotExist(err) {
		envPath = "../.env"
	}

	if _, err := os.Stat(envPath); err == nil {
		if err := godotenv.Load(envPath); err != nil {
			fmt.Printf("Ошибка загрузки .env файла: %v\n", err)
		}
	}

	viper.AutomaticEnv()

	viper.SetDefault("APP_ENV", defaultEnv)
	viper.SetDefault("CONFIG_DIR", defaultConfigDir)
	viper.SetDefault("UPDATE_CHANNEL", defaultUpdateChannel)
	viper.SetDefault("VIEWER_VERSION", defaultViewerVersion)
	viper.SetDefault("PLATFORM", runtime.GOOS)
	viper.SetDefault("BANDWIDTH_LIMIT", 0)
	viper.SetDefault("UPDATE_SERVER_ADDRESS", defaultServerAddress)
	viper.SetDefault("UPDATE_SERVER_CATALOG", defaultServerCatalog)

	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}

	configDir := viper.GetString("CONFIG_DIR")
	if configDir == defaultConfigDir {
		configDir = filepath.Join(homeDir, configDir)
	}

	logsDir := inDir(configDir, viper.GetString("LOGS_DIR"), defaultLogsDir)

	for _, dir := range []string{configDir, logsDir} {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return nil, fmt.Errorf("ошибка создания директории %s: %w", dir, err)
		}
	}

	tempDir := viper.GetString("TEMP_DIR")
	if tempDir == "" {
		tempDir = os.TempDir()
	}

	cfg := &Config{
		Env:                viper.GetString("APP_ENV"),
		LogLevel:           viper.GetString("LOG_LEVEL"),
		ConfigDir:          configDir,
		ProtectedDataPath:  inDir(configDir, viper.GetString("PROTECTED_DATA_FILE"), defaultProtectedDataFile),
		LegacyPasswordPath: inDir(configDir, viper.GetString("LEGACY_PASSWORD_FILE"), defaultLegacyPasswordFile),
		LogsDir:            logsDir,
		TempDir:            tempDir,
		CACertPath:         viper.GetString("CA_CERT_PATH"),
		Update: Update{
			ServiceURL:     viper.GetString("UPDATE_SERVICE_URL"),
			Channel:        viper.GetString("UPDATE_CHANNEL"),
			ViewerVersion:  viper.GetString("VIEWER_VERSION"),
			Platform:       viper.GetString("PLATFORM"),
			PlatformVer:    viper.GetString("PLATFORM_VERSION"),
			WillingToTest:  viper.GetBool("WILLING_TO_TEST"),
			BandwidthLimit: viper.GetInt64("BANDWIDTH_LIMIT"),
			HistoryPath:    inDir(configDir, viper.GetString("UPDATE_HISTORY_PATH"), defaultHistoryFile),
		},
		UpdateServer: UpdateServer{
			Address:     viper.GetString("UPDATE_SERVER_ADDRESS"),
			CatalogPath: viper.GetString("UPDATE_SERVER_CATALOG"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// inDir возвращает value, если он задан, иначе имя по умолчанию внутри dir
func inDir(dir, value, def string) string {
	if value != "" {
		return value
	}
	return filepath.Join(dir, def)
}

// Validate проверяет обязательные параметры
func (c *Config) Validate() error {
	if c.ProtectedDataPath == "" {
		return fmt.Errorf("protected_data_file не может быть пустым")
	}
	if c.LogsDir == "" {
		return fmt.Errorf("logs_dir не может быть пустым")
	}
	if c.TempDir == "" {
		return fmt.Errorf("temp_dir не может быть пустым")
	}
	if c.Update.BandwidthLimit < 0 {
		return fmt.Errorf("bandwidth_limit не может быть отрицательным")
	}
	return nil
}

// IsProd проверяет, prod ли окружение
func (c *Config) IsProd() bool {
	return c.Env == EnvProd
}

// IsDev проверяет, dev ли окружение
func (c *Config) IsDev() bool {
	return c.Env == EnvDev
}

// IsLocal проверяет, local ли окружение
func (c *Config) IsLocal() bool {
	return c.Env == EnvLocal || c.Env == ""
}
