// internal/common/config/config.go
package config

// Config is the main application configuration struct.
type Config struct {
	App          AppConfig                `mapstructure:"app"`
	Server       ServerConfig             `mapstructure:"server"`
	PlantData    PlantDataConfig          `mapstructure:"plant_data"`
	Services     map[string]ServiceConfig `mapstructure:"services"`
	Integrations IntegrationConfig        `mapstructure:"integrations"`
	Logging      LoggingConfig            `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type ServerConfig struct {
	Address         string `mapstructure:"address"`
	ReadTimeout     int    `mapstructure:"read_timeout"`     // milliseconds
	WriteTimeout    int    `mapstructure:"write_timeout"`    // milliseconds
	ShutdownTimeout int    `mapstructure:"shutdown_timeout"` // milliseconds
	MaxUploadBytes  int64  `mapstructure:"max_upload_bytes"`
}

// PlantDataConfig points at the read-only fact dictionary shipped with the service.
type PlantDataConfig struct {
	Path           string `mapstructure:"path"`
	ValidateSchema bool   `mapstructure:"validate_schema"`
}

// ServiceConfig holds the core settings applicable to every HTTP service.
type ServiceConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Timeout int  `mapstructure:"timeout"` // milliseconds
}

// --- Specific Configuration Sections ---

// IntegrationConfig holds settings for the third-party APIs the services call.
type IntegrationConfig struct {
	PlantNet   PlantNetConfig   `mapstructure:"plantnet"`
	Dialogflow DialogflowConfig `mapstructure:"dialogflow"`
}

type PlantNetConfig struct {
	BaseURL    string `mapstructure:"base_url"`
	APIKey     string `mapstructure:"api_key"`
	Project    string `mapstructure:"project"`
	MaxImages  int    `mapstructure:"max_images"`
	MaxResults int    `mapstructure:"max_results"`
	Timeout    int    `mapstructure:"timeout"` // milliseconds
}

type DialogflowConfig struct {
	Endpoint        string `mapstructure:"endpoint"` // host:port of the gRPC API
	ProjectID       string `mapstructure:"project_id"`
	CredentialsFile string `mapstructure:"credentials_file"`
	LanguageCode    string `mapstructure:"language_code"`
	Timeout         int    `mapstructure:"timeout"` // milliseconds
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Service names used as keys of Config.Services.
const (
	ServicePlantCare     = "plant-care"
	ServicePlantIdentify = "plant-identify"
	ServiceChat          = "chat"
)
