// internal/services/chat/config.go
package chat

import "time"

type Config struct {
	Endpoint        string
	ProjectID       string
	CredentialsFile string
	LanguageCode    string
	// Timeout bounds the detect-intent call, RequestTimeout the whole request.
	Timeout        time.Duration
	RequestTimeout time.Duration
	MaxBodyBytes   int64
}

func LoadConfig() *Config {
	return &Config{
		Endpoint:       "dialogflow.googleapis.com:443",
		LanguageCode:   "en",
		Timeout:        10 * time.Second,
		RequestTimeout: 30 * time.Second,
		MaxBodyBytes:   64 << 10,
	}
}
