// internal/services/plant-identify/config.go
package plantidentify

import "time"

type Config struct {
	BaseURL        string
	APIKey         string
	Project        string
	MaxImages      int
	MaxResults     int
	MaxUploadBytes int64
	// Timeout bounds the PlantNet call, RequestTimeout the whole request.
	Timeout        time.Duration
	RequestTimeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		BaseURL:        "https://my-api.plantnet.org",
		Project:        "all",
		MaxImages:      5,
		MaxResults:     3,
		MaxUploadBytes: 32 << 20,
		Timeout:        20 * time.Second,
		RequestTimeout: 30 * time.Second,
	}
}
