package config

import (
	"context"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino/components/model"
	"github.com/pkg/errors"
)

// Config 聚合服务端与客户端的配置项。
type Config struct {
	Server   ServerConfig
	AI       AIConfig
	NATS     NATSConfig
	Client   ClientConfig
	LogLevel string
}

// Load 从环境变量加载配置。
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	ai, err := loadAIConfig()
	if err != nil {
		return nil, err
	}

	client, err := loadClientConfig()
	if err != nil {
		return nil, err
	}

	return &Config{
		Server:   server,
		AI:       ai,
		NATS:     loadNATSConfig(),
		Client:   client,
		LogLevel: getEnvOrDefault("LOG_LEVEL", "info"),
	}, nil
}

// ServerConfig 描述 HTTP 服务配置。
type ServerConfig struct {
	Addr string
}

// loadServerConfig 解析服务器监听地址。
func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8080"
	}

	if strings.Contains(port, ":") {
		// 允许用户直接传入 ":8080" 或 "127.0.0.1:8080"。
		return ServerConfig{Addr: port}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, errors.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port}, nil
}

// AIConfig 描述大模型相关配置。
type AIConfig struct {
	APIKey       string
	AccessKey    string
	SecretKey    string
	Model        string
	BaseURL      string
	Region       string
	Temperature  *float64
	TopP         *float64
	MaxTokens    *int
	HistoryLimit int
}

// Enabled 表示是否提供了必需的密钥。
func (c AIConfig) Enabled() bool {
	return c.Model != "" && (c.APIKey != "" || (c.AccessKey != "" && c.SecretKey != ""))
}

// NewChatModel 使用配置创建一个模型实例。
func (c AIConfig) NewChatModel(ctx context.Context) (model.ChatModel, error) {
	if !c.Enabled() {
		return nil, errors.New("missing Ark credentials: set ARK_API_KEY with a model, or an AK/SK pair")
	}

	var temperature *float32
	if c.Temperature != nil {
		val := float32(*c.Temperature)
		temperature = &val
	}

	var topP *float32
	if c.TopP != nil {
		val := float32(*c.TopP)
		topP = &val
	}

	cfg := &ark.ChatModelConfig{
		BaseURL:     c.BaseURL,
		Region:      c.Region,
		APIKey:      c.APIKey,
		AccessKey:   c.AccessKey,
		SecretKey:   c.SecretKey,
		Model:       c.Model,
		MaxTokens:   c.MaxTokens,
		Temperature: temperature,
		TopP:        topP,
	}

	return ark.NewChatModel(ctx, cfg)
}

func loadAIConfig() (AIConfig, error) {
	temperature, err := parseOptionalFloatEnv("ARK_TEMPERATURE")
	if err != nil {
		return AIConfig{}, err
	}

	topP, err := parseOptionalFloatEnv("ARK_TOP_P")
	if err != nil {
		return AIConfig{}, err
	}

	maxTokens, err := parseOptionalIntEnv("ARK_MAX_TOKENS")
	if err != nil {
		return AIConfig{}, err
	}

	history := 10
	if override, err := parseOptionalIntEnv("AI_HISTORY_LIMIT"); err != nil {
		return AIConfig{}, err
	} else if override != nil {
		history = max(*override, 1)
	}

	return AIConfig{
		APIKey:       strings.TrimSpace(os.Getenv("ARK_API_KEY")),
		AccessKey:    strings.TrimSpace(os.Getenv("ARK_ACCESS_KEY")),
		SecretKey:    strings.TrimSpace(os.Getenv("ARK_SECRET_KEY")),
		Model:        strings.TrimSpace(os.Getenv("Model")),
		BaseURL:      getEnvOrDefault("ARK_BASE_URL", "https://ark.cn-beijing.volces.com/api/v3"),
		Region:       getEnvOrDefault("ARK_REGION", "cn-beijing"),
		Temperature:  temperature,
		TopP:         topP,
		MaxTokens:    maxTokens,
		HistoryLimit: history,
	}, nil
}

// NATSConfig 描述可选的 NATS 通道。URL 为空时不启用。
type NATSConfig struct {
	URL           string
	SubjectPrefix string
}

// Enabled 表示是否配置了 NATS 地址。
func (c NATSConfig) Enabled() bool {
	return c.URL != ""
}

func loadNATSConfig() NATSConfig {
	return NATSConfig{
		URL:           strings.TrimSpace(os.Getenv("NATS_URL")),
		SubjectPrefix: getEnvOrDefault("NATS_SUBJECT_PREFIX", "cureverse"),
	}
}

// ClientConfig 描述聊天客户端配置。
type ClientConfig struct {
	ServerURL   string
	Store       string
	StoreDSN    string
	StorageKey  string
	Session     string
	ReplayLimit int
	MinDwell    time.Duration
}

var storeKinds = map[string]bool{"memory": true, "file": true, "sqlite": true, "redis": true}

func loadClientConfig() (ClientConfig, error) {
	store := strings.ToLower(getEnvOrDefault("CUREVERSE_STORE", "file"))
	if !storeKinds[store] {
		return ClientConfig{}, errors.Errorf("invalid CUREVERSE_STORE value %q", store)
	}

	replay := 20
	if override, err := parseOptionalIntEnv("CUREVERSE_REPLAY_LIMIT"); err != nil {
		return ClientConfig{}, err
	} else if override != nil {
		if *override < 1 {
			return ClientConfig{}, errors.Errorf("invalid CUREVERSE_REPLAY_LIMIT value %d", *override)
		}
		replay = *override
	}

	dwell := 1500 * time.Millisecond
	if override, err := parseOptionalIntEnv("CUREVERSE_MIN_DWELL_MS"); err != nil {
		return ClientConfig{}, err
	} else if override != nil {
		if *override < 0 {
			return ClientConfig{}, errors.Errorf("invalid CUREVERSE_MIN_DWELL_MS value %d", *override)
		}
		dwell = time.Duration(*override) * time.Millisecond
	}

	return ClientConfig{
		ServerURL:   getEnvOrDefault("CUREVERSE_SERVER_URL", "ws://localhost:8080/ws"),
		Store:       store,
		StoreDSN:    strings.TrimSpace(os.Getenv("CUREVERSE_STORE_DSN")),
		StorageKey:  getEnvOrDefault("CUREVERSE_STORAGE_KEY", "cureverse_chat_history"),
		Session:     strings.TrimSpace(os.Getenv("CUREVERSE_SESSION")),
		ReplayLimit: replay,
		MinDwell:    dwell,
	}, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseOptionalFloatEnv(key string) (*float64, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid %s value %q", key, value)
	}
	return &val, nil
}

func parseOptionalIntEnv(key string) (*int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid %s value %q", key, value)
	}
	return &val, nil
}
