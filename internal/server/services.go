package server

import (
	"context"
	"fmt"

	"botaniq/internal/common/config"
	apphttp "botaniq/internal/common/http"
	"botaniq/internal/common/logger"
	"botaniq/internal/common/observability"
	"botaniq/internal/services/chat"
	plantcare "botaniq/internal/services/plant-care"
	plantidentify "botaniq/internal/services/plant-identify"
)

// Services holds one handler per HTTP service. A nil handler is not mounted.
type Services struct {
	PlantCare     *plantcare.Handler
	PlantIdentify *plantidentify.Handler
	Chat          *chat.Handler

	// DataPath is checked by /ready.
	DataPath string

	chatClient *chat.Client
}

// BuildServices creates the handlers enabled in cfg.
func BuildServices(ctx context.Context, cfg *config.Config, obs *observability.Observability, log logger.Logger) (*Services, error) {
	svcs := &Services{DataPath: cfg.PlantData.Path}

	if config.IsServiceEnabled(cfg, config.ServicePlantCare) {
		pcCfg := plantCareConfig(cfg)
		store := plantcare.NewFileStore(pcCfg.DataPath, pcCfg.ValidateSchema)
		svcs.PlantCare = plantcare.NewHandler(pcCfg, store, obs, log)
	} else {
		log.Info("service disabled", map[string]interface{}{"service": config.ServicePlantCare})
	}

	if config.IsServiceEnabled(cfg, config.ServicePlantIdentify) {
		piCfg := plantIdentifyConfig(cfg)
		svcs.PlantIdentify = plantidentify.NewHandler(piCfg, apphttp.NewClient(piCfg.Timeout), obs, log)
	} else {
		log.Info("service disabled", map[string]interface{}{"service": config.ServicePlantIdentify})
	}

	if config.IsServiceEnabled(cfg, config.ServiceChat) {
		chCfg := chatConfig(cfg)
		client, err := chat.NewClient(ctx, chCfg)
		if err != nil {
			return nil, fmt.Errorf("create %s client: %w", config.ServiceChat, err)
		}
		svcs.chatClient = client
		svcs.Chat = chat.NewHandler(chCfg, client, obs, log)
	} else {
		log.Info("service disabled", map[string]interface{}{"service": config.ServiceChat})
	}

	return svcs, nil
}

// Close releases the upstream clients.
func (s *Services) Close() error {
	if s.chatClient == nil {
		return nil
	}
	return s.chatClient.Close()
}

func plantCareConfig(cfg *config.Config) *plantcare.Config {
	return &plantcare.Config{
		DataPath:       cfg.PlantData.Path,
		ValidateSchema: cfg.PlantData.ValidateSchema,
		Timeout:        config.GetDuration(config.GetServiceConfig(cfg, config.ServicePlantCare).Timeout),
		MaxBodyBytes:   plantcare.LoadConfig().MaxBodyBytes,
	}
}

// plantIdentifyConfig bounds the PlantNet call by the integration timeout and
// the whole request by the service timeout.
func plantIdentifyConfig(cfg *config.Config) *plantidentify.Config {
	pn := cfg.Integrations.PlantNet
	return &plantidentify.Config{
		BaseURL:        pn.BaseURL,
		APIKey:         pn.APIKey,
		Project:        pn.Project,
		MaxImages:      pn.MaxImages,
		MaxResults:     pn.MaxResults,
		MaxUploadBytes: cfg.Server.MaxUploadBytes,
		Timeout:        config.GetDuration(pn.Timeout),
		RequestTimeout: config.GetDuration(config.GetServiceConfig(cfg, config.ServicePlantIdentify).Timeout),
	}
}

func chatConfig(cfg *config.Config) *chat.Config {
	df := cfg.Integrations.Dialogflow
	return &chat.Config{
		Endpoint:        df.Endpoint,
		ProjectID:       df.ProjectID,
		CredentialsFile: df.CredentialsFile,
		LanguageCode:    df.LanguageCode,
		Timeout:         config.GetDuration(df.Timeout),
		RequestTimeout:  config.GetDuration(config.GetServiceConfig(cfg, config.ServiceChat).Timeout),
		MaxBodyBytes:    chat.LoadConfig().MaxBodyBytes,
	}
}
