package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	configPathEnv      = "CITYPULSE_CONFIG"
	newsAPIKeyEnv      = "NEWS_API_KEY"
	weatherAPIKeyEnv   = "OPENWEATHER_API_KEY"
	geminiAPIKeyEnv    = "GEMINI_API_KEY"
	googleAPIKeyEnv    = "GOOGLE_API_KEY"
	openAIAPIKeyEnv    = "OPENAI_API_KEY"
	llmProviderEnv     = "LLM_PROVIDER"
	llmModelEnv        = "LLM_MODEL"
	databaseDSNEnv     = "DATABASE_DSN"
	telegramTokenEnv   = "TELEGRAM_BOT_TOKEN"
	telegramChatIDEnv  = "TELEGRAM_CHAT_ID"
	kafkaBrokersEnv    = "KAFKA_BROKERS"
	imagesBucketEnv    = "REPORT_IMAGES_BUCKET"
	awsRegionEnv       = "AWS_REGION"
	logLevelEnv        = "LOG_LEVEL"
	portEnv            = "PORT"
	serverBearerEnv    = "API_BEARER_TOKEN"
	defaultCityName    = "Bengaluru"
	defaultCityLat     = 12.9716
	defaultCityLon     = 77.5946
	defaultListenAddr  = ":8080"
	defaultGeminiModel = "gemini-2.0-flash"
	defaultOpenAIModel = "gpt-4o-mini"
)

// LLM providers.
const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

// Storage drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config holds high-level settings required across the application.
type Config struct {
	Server        ServerConfig       `yaml:"server"`
	Logging       LoggingConfig      `yaml:"logging"`
	City          CityConfig         `yaml:"city"`
	Sources       SourcesConfig      `yaml:"sources"`
	Advisor       AdvisorConfig      `yaml:"advisor"`
	LLM           LLMConfig          `yaml:"llm"`
	Storage       StorageConfig      `yaml:"storage"`
	Images        ImagesConfig       `yaml:"images"`
	Notifications NotificationConfig `yaml:"notifications"`
	Watcher       WatcherConfig      `yaml:"watcher"`
}

// ServerConfig describes the HTTP API listener.
type ServerConfig struct {
	Addr           string        `yaml:"addr"`
	BearerToken    string        `yaml:"bearerToken"`
	RequestTimeout time.Duration `yaml:"requestTimeout"`
	MaxUploadBytes int64         `yaml:"maxUploadBytes"`
}

// LoggingConfig selects slog level and output format (text or json).
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// CityConfig pins the city all live signals are gathered for.
type CityConfig struct {
	Name string  `yaml:"name"`
	Lat  float64 `yaml:"lat"`
	Lon  float64 `yaml:"lon"`
}

// SourcesConfig groups the live signal adapters.
type SourcesConfig struct {
	Reddit  RedditConfig  `yaml:"reddit"`
	News    NewsConfig    `yaml:"news"`
	Weather WeatherConfig `yaml:"weather"`
}

// RedditConfig describes the subreddit search used for discussion signals.
type RedditConfig struct {
	Enabled   bool     `yaml:"enabled"`
	BaseURL   string   `yaml:"baseUrl"`
	Subreddit string   `yaml:"subreddit"`
	Keywords  []string `yaml:"keywords"`
	Limit     int      `yaml:"limit"`
	UserAgent string   `yaml:"userAgent"`
}

// NewsConfig describes the NewsData.io search.
type NewsConfig struct {
	Endpoint string `yaml:"endpoint"`
	APIKey   string `yaml:"apiKey"`
	Query    string `yaml:"query"`
	Language string `yaml:"language"`
	Country  string `yaml:"country"`
}

// WeatherConfig describes the OpenWeatherMap current-weather lookup.
type WeatherConfig struct {
	Endpoint string `yaml:"endpoint"`
	APIKey   string `yaml:"apiKey"`
}

// AdvisorConfig tunes aggregation and synthesis.
type AdvisorConfig struct {
	SourceTimeout     time.Duration `yaml:"sourceTimeout"`
	GenerationTimeout time.Duration `yaml:"generationTimeout"`
	SummarySignals    int           `yaml:"summarySignals"`
	PromptsFile       string        `yaml:"promptsFile"`
}

// LLMConfig defines how to contact the structured-generation backend.
type LLMConfig struct {
	Provider    string  `yaml:"provider"`
	Model       string  `yaml:"model"`
	APIKey      string  `yaml:"apiKey"`
	Endpoint    string  `yaml:"endpoint"`
	Temperature float32 `yaml:"temperature"`
}

// StorageConfig selects where submitted reports are kept.
type StorageConfig struct {
	Driver     string `yaml:"driver"`
	DSN        string `yaml:"dsn"`
	SQLitePath string `yaml:"sqlitePath"`
}

// ImagesConfig describes the S3 bucket for report photos. Empty bucket keeps images inline.
type ImagesConfig struct {
	Bucket        string `yaml:"bucket"`
	Region        string `yaml:"region"`
	Prefix        string `yaml:"prefix"`
	PublicBaseURL string `yaml:"publicBaseUrl"`
}

// NotificationConfig encapsulates outbound report channels.
type NotificationConfig struct {
	Telegram TelegramConfig `yaml:"telegram"`
	Kafka    KafkaConfig    `yaml:"kafka"`
}

// TelegramConfig wires all data required to send messages.
type TelegramConfig struct {
	BotToken string `yaml:"botToken"`
	ChatID   string `yaml:"chatId"`
	APIBase  string `yaml:"apiBase"`
}

// KafkaConfig describes the event topics for reports and conditions.
type KafkaConfig struct {
	Brokers         []string `yaml:"brokers"`
	ReportsTopic    string   `yaml:"reportsTopic"`
	ConditionsTopic string   `yaml:"conditionsTopic"`
}

// WatcherConfig controls the periodic conditions refresh.
type WatcherConfig struct {
	Interval time.Duration `yaml:"interval"`
}

// Load reads .env, YAML configuration (if present) and applies environment overrides.
// An empty path falls back to CITYPULSE_CONFIG.
func Load(path string) Config {
	_ = godotenv.Load()

	cfg := Default()

	if path == "" {
		path = os.Getenv(configPathEnv)
	}
	if path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else if err := yaml.Unmarshal(raw, &cfg); err != nil {
			log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			cfg = Default()
		}
	}

	cfg.applyEnvOverrides()
	cfg.applyProviderDefaults()

	return cfg
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:           defaultListenAddr,
			RequestTimeout: 90 * time.Second,
			MaxUploadBytes: 8 << 20,
		},
		Logging: LoggingConfig{Level: "info", Format: "text"},
		City:    CityConfig{Name: defaultCityName, Lat: defaultCityLat, Lon: defaultCityLon},
		Sources: SourcesConfig{
			Reddit: RedditConfig{
				Enabled:   true,
				BaseURL:   "https://www.reddit.com",
				Subreddit: "bangalore",
				Keywords: []string{
					"traffic", "jam", "accident", "silk board",
					"electronic city", "marathahalli", "road closure",
				},
				Limit:     25,
				UserAgent: "CityPulse/1.0",
			},
			News: NewsConfig{
				Endpoint: "https://newsdata.io/api/1/news",
				Query:    "Bengaluru traffic OR Bangalore traffic",
				Language: "en",
				Country:  "in",
			},
			Weather: WeatherConfig{
				Endpoint: "https://api.openweathermap.org/data/2.5/weather",
			},
		},
		Advisor: AdvisorConfig{
			SourceTimeout:     8 * time.Second,
			GenerationTimeout: 60 * time.Second,
			SummarySignals:    5,
		},
		LLM: LLMConfig{
			Provider:    ProviderGemini,
			Endpoint:    "https://api.openai.com/v1/chat/completions",
			Temperature: 0.4,
		},
		Storage: StorageConfig{Driver: DriverSQLite, SQLitePath: "citypulse.db"},
		Notifications: NotificationConfig{
			Telegram: TelegramConfig{APIBase: "https://api.telegram.org"},
			Kafka: KafkaConfig{
				ReportsTopic:    "citypulse.reports",
				ConditionsTopic: "citypulse.conditions",
			},
		},
		Watcher: WatcherConfig{Interval: 10 * time.Minute},
	}
}

// CredentialsSummary reports which optional credentials are present, for startup logs.
func (c Config) CredentialsSummary() map[string]bool {
	return map[string]bool{
		"news":     c.Sources.News.APIKey != "",
		"weather":  c.Sources.Weather.APIKey != "",
		"llm":      c.LLM.APIKey != "",
		"telegram": c.Notifications.Telegram.BotToken != "" && c.Notifications.Telegram.ChatID != "",
		"kafka":    len(c.Notifications.Kafka.Brokers) > 0,
		"images":   c.Images.Bucket != "",
	}
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(newsAPIKeyEnv); v != "" {
		c.Sources.News.APIKey = v
	}
	if v := os.Getenv(weatherAPIKeyEnv); v != "" {
		c.Sources.Weather.APIKey = v
	}

	if v := os.Getenv(llmProviderEnv); v != "" {
		c.LLM.Provider = strings.ToLower(strings.TrimSpace(v))
	}
	if v := os.Getenv(llmModelEnv); v != "" {
		c.LLM.Model = v
	}
	switch c.LLM.Provider {
	case ProviderOpenAI:
		if v := os.Getenv(openAIAPIKeyEnv); v != "" {
			c.LLM.APIKey = v
		}
	default:
		if v := firstEnv(geminiAPIKeyEnv, googleAPIKeyEnv); v != "" {
			c.LLM.APIKey = v
		}
	}

	if v := os.Getenv(databaseDSNEnv); v != "" {
		c.Storage.DSN = v
		c.Storage.Driver = DriverPostgres
	}

	if v := os.Getenv(telegramTokenEnv); v != "" {
		c.Notifications.Telegram.BotToken = v
	}
	if v := os.Getenv(telegramChatIDEnv); v != "" {
		c.Notifications.Telegram.ChatID = v
	}
	if v := os.Getenv(kafkaBrokersEnv); v != "" {
		c.Notifications.Kafka.Brokers = splitList(v)
	}

	if v := os.Getenv(imagesBucketEnv); v != "" {
		c.Images.Bucket = v
	}
	if v := os.Getenv(awsRegionEnv); v != "" {
		c.Images.Region = v
	}

	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv(portEnv); v != "" {
		if port, err := strconv.Atoi(v); err == nil && port > 0 {
			c.Server.Addr = fmt.Sprintf(":%d", port)
		} else {
			log.Printf("config: invalid %s=%q ignored", portEnv, v)
		}
	}
	if v := os.Getenv(serverBearerEnv); v != "" {
		c.Server.BearerToken = v
	}
}

func (c *Config) applyProviderDefaults() {
	if c.LLM.Model != "" {
		return
	}
	if c.LLM.Provider == ProviderOpenAI {
		c.LLM.Model = defaultOpenAIModel
		return
	}
	c.LLM.Model = defaultGeminiModel
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return ""
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
