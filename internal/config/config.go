package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino/components/model"
)

// Assistant provider identifiers.
const (
	ProviderLex = "lex"
	ProviderArk = "ark"
)

// Config aggregates all service configuration.
type Config struct {
	Server    ServerConfig
	AWS       AWSConfig
	Weather   WeatherConfig
	Assistant AssistantConfig
	Ark       ArkConfig
	Simulated bool
}

// Load reads configuration from environment variables. Missing required
// variables are a startup-fatal condition, reported before any user action is
// accepted.
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	aws, err := loadAWSConfig()
	if err != nil {
		return nil, err
	}

	assistant, err := loadAssistantConfig()
	if err != nil {
		return nil, err
	}

	arkCfg := loadArkConfig()
	if assistant.Provider == ProviderArk && !arkCfg.Enabled() {
		return nil, fmt.Errorf("ASSISTANT_PROVIDER=ark requires ARK_API_KEY and ARK_MODEL")
	}

	simulated, err := parseBoolEnv("PLANTWATCH_SIMULATED", false)
	if err != nil {
		return nil, err
	}

	return &Config{
		Server:    server,
		AWS:       aws,
		Weather:   loadWeatherConfig(),
		Assistant: assistant,
		Ark:       arkCfg,
		Simulated: simulated,
	}, nil
}

// ServerConfig describes the HTTP listener.
type ServerConfig struct {
	Addr string
}

func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8080"
	}

	if strings.Contains(port, ":") {
		// Allow passing ":8080" or "127.0.0.1:8080" directly.
		return ServerConfig{Addr: port}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port}, nil
}

// AWSConfig carries the required collaborator identifiers: the upload bucket,
// the Lex bot and alias, and the service region.
type AWSConfig struct {
	Region     string
	Bucket     string
	BotID      string
	BotAliasID string
}

func loadAWSConfig() (AWSConfig, error) {
	cfg := AWSConfig{
		Region:     strings.TrimSpace(os.Getenv("AWS_REGION")),
		Bucket:     strings.TrimSpace(os.Getenv("S3_BUCKET_NAME")),
		BotID:      strings.TrimSpace(os.Getenv("LEX_BOT_ID")),
		BotAliasID: strings.TrimSpace(os.Getenv("LEX_BOT_ALIAS_ID")),
	}

	for key, value := range map[string]string{
		"AWS_REGION":       cfg.Region,
		"S3_BUCKET_NAME":   cfg.Bucket,
		"LEX_BOT_ID":       cfg.BotID,
		"LEX_BOT_ALIAS_ID": cfg.BotAliasID,
	} {
		if value == "" {
			return AWSConfig{}, fmt.Errorf("missing required environment variable %s", key)
		}
	}

	return cfg, nil
}

// WeatherConfig describes the point-forecast service.
type WeatherConfig struct {
	BaseURL   string
	UserAgent string
}

func loadWeatherConfig() WeatherConfig {
	return WeatherConfig{
		BaseURL:   getEnvOrDefault("WEATHER_BASE_URL", "https://opendata-download-metfcst.smhi.se"),
		UserAgent: getEnvOrDefault("WEATHER_USER_AGENT", "PlantWatch/1.0 (weather panel)"),
	}
}

// AssistantConfig selects the conversational engine.
type AssistantConfig struct {
	Provider string
	Locale   string
}

func loadAssistantConfig() (AssistantConfig, error) {
	provider := strings.ToLower(getEnvOrDefault("ASSISTANT_PROVIDER", ProviderLex))
	if provider != ProviderLex && provider != ProviderArk {
		return AssistantConfig{}, fmt.Errorf("invalid ASSISTANT_PROVIDER value %q: want %q or %q", provider, ProviderLex, ProviderArk)
	}

	return AssistantConfig{
		Provider: provider,
		Locale:   getEnvOrDefault("LEX_LOCALE", "en_US"),
	}, nil
}

// ArkConfig describes the Ark chat model used when ASSISTANT_PROVIDER=ark.
type ArkConfig struct {
	APIKey  string
	Model   string
	BaseURL string
	Region  string
}

func loadArkConfig() ArkConfig {
	return ArkConfig{
		APIKey:  strings.TrimSpace(os.Getenv("ARK_API_KEY")),
		Model:   strings.TrimSpace(os.Getenv("ARK_MODEL")),
		BaseURL: getEnvOrDefault("ARK_BASE_URL", "https://ark.cn-beijing.volces.com/api/v3"),
		Region:  getEnvOrDefault("ARK_REGION", "cn-beijing"),
	}
}

// Enabled reports whether the Ark credentials are present.
func (c ArkConfig) Enabled() bool {
	return c.APIKey != "" && c.Model != ""
}

// NewChatModel creates a model instance from the configuration.
func (c ArkConfig) NewChatModel(ctx context.Context) (model.ChatModel, error) {
	if !c.Enabled() {
		return nil, fmt.Errorf("ark credentials missing: set ARK_API_KEY and ARK_MODEL")
	}

	return ark.NewChatModel(ctx, &ark.ChatModelConfig{
		BaseURL: c.BaseURL,
		Region:  c.Region,
		APIKey:  c.APIKey,
		Model:   c.Model,
	})
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseBoolEnv(key string, defaultValue bool) (bool, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue, nil
	}

	val, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	return val, nil
}
