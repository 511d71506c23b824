// internal/services/plant-care/config.go
package plantcare

import "time"

type Config struct {
	DataPath       string
	ValidateSchema bool
	Timeout        time.Duration
	MaxBodyBytes   int64
}

func LoadConfig() *Config {
	return &Config{
		DataPath:       "data/plant_data.json",
		ValidateSchema: true,
		Timeout:        10 * time.Second,
		MaxBodyBytes:   1 << 20,
	}
}
