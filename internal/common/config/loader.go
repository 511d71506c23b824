// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Load reads configs/config.yaml (and config.<APP_ENVIRONMENT>.yaml on top of
// it), expands ${VAR} placeholders and applies defaults.
func Load() (*Config, error) {
	loadEnvFile()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../../configs")
	v.AddConfigPath(".")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	v.SetConfigName(fmt.Sprintf("config.%s", env))
	_ = v.MergeInConfig() // optional

	return build(v)
}

// LoadFromFile loads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	return build(v)
}

func build(v *viper.Viper) (*Config, error) {
	expandEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	overrideEmptyConfig(&cfg)
	cfg.PlantData.Path = ResolveDataPath(cfg.PlantData.Path)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func loadEnvFile() {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env", // tests in test/e2e
	}

	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

// findProjectRoot walks up from the working directory looking for go.mod.
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

// ResolveDataPath anchors a relative data path. The first existing candidate
// wins: the working directory, the executable's directory, the project root.
// A path found nowhere is anchored at the working directory.
func ResolveDataPath(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}

	var candidates []string
	if wd, err := os.Getwd(); err == nil {
		candidates = append(candidates, filepath.Join(wd, path))
	}
	if exe, err := os.Executable(); err == nil {
		candidates = append(candidates, filepath.Join(filepath.Dir(exe), path))
	}
	if rootDir := findProjectRoot(); rootDir != "" {
		candidates = append(candidates, filepath.Join(rootDir, path))
	}

	for _, candidate := range candidates {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	if len(candidates) > 0 {
		return candidates[0]
	}
	return path
}

func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		strVal, ok := v.Get(key).(string)
		if !ok {
			continue
		}
		if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
			expanded := os.ExpandEnv(strVal)
			if expanded != strVal {
				v.Set(key, expanded)
			}
		}
	}
}

// overrideEmptyConfig fills secrets that were not set in the YAML from the
// environment variable names the deployment already uses.
func overrideEmptyConfig(cfg *Config) {
	if cfg.Integrations.PlantNet.APIKey == "" {
		if val := os.Getenv("PLANTNET_API_KEY"); val != "" {
			cfg.Integrations.PlantNet.APIKey = val
		}
	}
	if cfg.Integrations.Dialogflow.CredentialsFile == "" {
		if val := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); val != "" {
			cfg.Integrations.Dialogflow.CredentialsFile = val
		}
	}
	if cfg.Integrations.Dialogflow.ProjectID == "" {
		if val := os.Getenv("DIALOGFLOW_PROJECT_ID"); val != "" {
			cfg.Integrations.Dialogflow.ProjectID = val
		}
	}
	if val := os.Getenv("PLANT_DATA_PATH"); val != "" {
		cfg.PlantData.Path = val
	}
}

// applyDefaults sets default values for optional configuration fields.
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "botaniq"
	}
	if cfg.App.Environment == "" {
		cfg.App.Environment = "development"
	}

	if cfg.Server.Address == "" {
		cfg.Server.Address = ":8080"
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 15000
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 30000
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 10000
	}
	if cfg.Server.MaxUploadBytes == 0 {
		cfg.Server.MaxUploadBytes = 32 << 20
	}

	if cfg.PlantData.Path == "" {
		cfg.PlantData.Path = "data/plant_data.json"
	}

	if cfg.Integrations.PlantNet.BaseURL == "" {
		cfg.Integrations.PlantNet.BaseURL = "https://my-api.plantnet.org"
	}
	if cfg.Integrations.PlantNet.Project == "" {
		cfg.Integrations.PlantNet.Project = "all"
	}
	if cfg.Integrations.PlantNet.MaxImages == 0 {
		cfg.Integrations.PlantNet.MaxImages = 5
	}
	if cfg.Integrations.PlantNet.MaxResults == 0 {
		cfg.Integrations.PlantNet.MaxResults = 3
	}
	if cfg.Integrations.PlantNet.Timeout == 0 {
		cfg.Integrations.PlantNet.Timeout = 20000
	}

	if cfg.Integrations.Dialogflow.Endpoint == "" {
		cfg.Integrations.Dialogflow.Endpoint = "dialogflow.googleapis.com:443"
	}
	if cfg.Integrations.Dialogflow.LanguageCode == "" {
		cfg.Integrations.Dialogflow.LanguageCode = "en"
	}
	if cfg.Integrations.Dialogflow.Timeout == 0 {
		cfg.Integrations.Dialogflow.Timeout = 10000
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}

	if cfg.Services == nil {
		cfg.Services = map[string]ServiceConfig{}
	}
	if _, ok := cfg.Services[ServicePlantCare]; !ok {
		cfg.Services[ServicePlantCare] = ServiceConfig{Enabled: true}
	}
	for key, svc := range cfg.Services {
		if svc.Timeout == 0 {
			svc.Timeout = 30000
		}
		cfg.Services[key] = svc
	}
}

// validateConfig validates critical configuration fields.
func validateConfig(cfg *Config) error {
	if cfg.PlantData.Path == "" {
		return fmt.Errorf("plant_data.path is required")
	}

	if IsServiceEnabled(cfg, ServicePlantIdentify) && cfg.Integrations.PlantNet.APIKey == "" {
		return fmt.Errorf("integrations.plantnet.api_key is required when %s is enabled (set PLANTNET_API_KEY)", ServicePlantIdentify)
	}

	if IsServiceEnabled(cfg, ServiceChat) && cfg.Integrations.Dialogflow.ProjectID == "" {
		return fmt.Errorf("integrations.dialogflow.project_id is required when %s is enabled", ServiceChat)
	}

	return nil
}

// GetDuration converts milliseconds from config to time.Duration.
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}

// GetServiceConfig retrieves service-specific configuration with fallback to defaults.
func GetServiceConfig(cfg *Config, name string) ServiceConfig {
	if svc, exists := cfg.Services[name]; exists {
		return svc
	}
	return ServiceConfig{
		Enabled: false,
		Timeout: 30000,
	}
}

// IsServiceEnabled checks if a specific service is enabled. Services that
// are not listed are disabled, except plant-care which applyDefaults adds.
func IsServiceEnabled(cfg *Config, name string) bool {
	if svc, exists := cfg.Services[name]; exists {
		return svc.Enabled
	}
	return false
}
