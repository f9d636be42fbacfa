package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Qdrant     QdrantConfig     `mapstructure:"qdrant"`
	Storage    StorageConfig    `mapstructure:"storage"`
	LLM        ModelConfig      `mapstructure:"llm"`
	VLM        ModelConfig      `mapstructure:"vlm"`
	Embedding  ModelConfig      `mapstructure:"embedding"`
	Imgflip    ImgflipConfig    `mapstructure:"imgflip"`
	Templates  TemplatesConfig  `mapstructure:"templates"`
	Generation GenerationConfig `mapstructure:"generation"`
}

type ServerConfig struct {
	Port int        `mapstructure:"port"`
	Mode string     `mapstructure:"mode"`
	CORS CORSConfig `mapstructure:"cors"`
}

type CORSConfig struct {
	AllowedOrigins  []string `mapstructure:"allowed_origins"`
	AllowAllOrigins bool     `mapstructure:"allow_all_origins"`
}

type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"`
	Path            string        `mapstructure:"path"`
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	URL             string        `mapstructure:"url"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
}

// DSN returns the connection string for the configured driver.
// A full URL takes precedence over discrete postgres fields.
func (c *DatabaseConfig) DSN() string {
	if c.Driver == "postgres" {
		if c.URL != "" {
			return c.URL
		}
		return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
	}
	return c.Path
}

type QdrantConfig struct {
	Host       string `mapstructure:"host"`
	Port       int    `mapstructure:"port"`
	Collection string `mapstructure:"collection"`
	APIKey     string `mapstructure:"api_key"`
	UseTLS     bool   `mapstructure:"use_tls"`
}

type StorageConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Type      string `mapstructure:"type"`
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	UseSSL    bool   `mapstructure:"use_ssl"`
	Bucket    string `mapstructure:"bucket"`
	Region    string `mapstructure:"region"`
	PublicURL string `mapstructure:"public_url"`
	Prefix    string `mapstructure:"prefix"`
}

type ImgflipConfig struct {
	BaseURL  string        `mapstructure:"base_url"`
	Username string        `mapstructure:"username"`
	Password string        `mapstructure:"password"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

type TemplatesConfig struct {
	Source      string                 `mapstructure:"source"` // imgflip or staging
	StagingPath string                 `mapstructure:"staging_path"`
	Default     DefaultTemplateConfig  `mapstructure:"default"`
	Semantic    SemanticTemplateConfig `mapstructure:"semantic"`
}

type DefaultTemplateConfig struct {
	ID       string `mapstructure:"id"`
	Name     string `mapstructure:"name"`
	ImageURL string `mapstructure:"image_url"`
}

type SemanticTemplateConfig struct {
	Enabled        bool    `mapstructure:"enabled"`
	Collection     string  `mapstructure:"collection"`
	ScoreThreshold float32 `mapstructure:"score_threshold"`
}

type GenerationConfig struct {
	RetryLimit      int      `mapstructure:"retry_limit"`
	HumorThreshold  int      `mapstructure:"humor_threshold"` // 0 accepts every rendered meme
	MaxNewTokens    int      `mapstructure:"max_new_tokens"`
	CaptionRetries  int      `mapstructure:"caption_retries"`
	Workers         int      `mapstructure:"workers"`
	BannedFragments []string `mapstructure:"banned_fragments"`
	StyleHints      []string `mapstructure:"style_hints"`
}

// DefaultBannedFragments are substrings that mark a caption as leaked prompt text.
var DefaultBannedFragments = []string{
	"MUST", "RULES", "DO NOT", "Top text", "Bottom text",
	"line", "Only return", "STRICT", "Example",
	"First line", "Second line",
}

// DefaultStyleHints are the tones picked from at random for each attempt.
var DefaultStyleHints = []string{
	"Make it sarcastic",
	"Make it absurd",
	"Make it dark humor",
	"Make it wholesome but funny",
	"Make it chaotic and silly",
}

func Load(configPath string) (*Config, error) {
	// Load .env file if exists
	_ = godotenv.Load()

	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Bind environment variables explicitly for sensitive data
	v.BindEnv("database.url", "DATABASE_URL")
	v.BindEnv("qdrant.host", "QDRANT_HOST")
	v.BindEnv("qdrant.port", "QDRANT_PORT")
	v.BindEnv("qdrant.api_key", "QDRANT_API_KEY")
	v.BindEnv("storage.endpoint", "STORAGE_ENDPOINT")
	v.BindEnv("storage.access_key", "STORAGE_ACCESS_KEY")
	v.BindEnv("storage.secret_key", "STORAGE_SECRET_KEY")
	v.BindEnv("llm.api_key", "OPENAI_API_KEY")
	v.BindEnv("llm.base_url", "OPENAI_BASE_URL")
	v.BindEnv("llm.model", "LLM_MODEL")
	v.BindEnv("vlm.api_key", "VLM_API_KEY", "OPENAI_API_KEY")
	v.BindEnv("vlm.base_url", "VLM_BASE_URL", "OPENAI_BASE_URL")
	v.BindEnv("vlm.model", "VLM_MODEL")
	v.BindEnv("embedding.api_key", "JINA_API_KEY")
	v.BindEnv("imgflip.username", "IMGFLIP_USERNAME")
	v.BindEnv("imgflip.password", "IMGFLIP_PASSWORD")
	v.BindEnv("generation.retry_limit", "MEME_RETRY_LIMIT")
	v.BindEnv("generation.humor_threshold", "HUMOR_SCORE_THRESHOLD")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.LLM.ResolveEnvVars()
	cfg.VLM.ResolveEnvVars()
	cfg.Embedding.ResolveEnvVars()

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.cors.allow_all_origins", true)
	v.SetDefault("server.cors.allowed_origins", []string{})

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "./data/memegen.db")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.conn_max_lifetime", time.Hour)
	v.SetDefault("database.auto_migrate", true)

	v.SetDefault("qdrant.host", "localhost")
	v.SetDefault("qdrant.port", 6334)
	v.SetDefault("qdrant.collection", "meme_templates")

	v.SetDefault("storage.enabled", false)
	v.SetDefault("storage.endpoint", "localhost:9000")
	v.SetDefault("storage.use_ssl", false)
	v.SetDefault("storage.bucket", "memes")
	v.SetDefault("storage.prefix", "generations")

	v.SetDefault("llm.name", "llm")
	v.SetDefault("llm.provider", "openai-compatible")
	v.SetDefault("llm.model", "gpt-4o-mini")
	v.SetDefault("llm.base_url", "https://api.openai.com/v1")
	v.SetDefault("llm.timeout", 60*time.Second)

	v.SetDefault("vlm.name", "vlm")
	v.SetDefault("vlm.provider", "openai-compatible")
	v.SetDefault("vlm.model", "gpt-4o-mini")
	v.SetDefault("vlm.base_url", "https://api.openai.com/v1")
	v.SetDefault("vlm.timeout", 60*time.Second)

	v.SetDefault("embedding.name", "embedding")
	v.SetDefault("embedding.provider", "jina")
	v.SetDefault("embedding.model", "jina-embeddings-v3")
	v.SetDefault("embedding.base_url", "https://api.jina.ai/v1")
	v.SetDefault("embedding.dimensions", 1024)
	v.SetDefault("embedding.timeout", 30*time.Second)

	v.SetDefault("imgflip.base_url", "https://api.imgflip.com")
	v.SetDefault("imgflip.timeout", 30*time.Second)

	v.SetDefault("templates.source", "imgflip")
	v.SetDefault("templates.staging_path", "./data/templates")
	v.SetDefault("templates.default.id", "101716")
	v.SetDefault("templates.default.name", "Yo Dawg Heard You")
	v.SetDefault("templates.default.image_url", "https://i.imgflip.com/1g8my4.jpg")
	v.SetDefault("templates.semantic.enabled", false)
	v.SetDefault("templates.semantic.score_threshold", 0.0)

	v.SetDefault("generation.retry_limit", 3)
	v.SetDefault("generation.humor_threshold", 7)
	v.SetDefault("generation.max_new_tokens", 256)
	v.SetDefault("generation.caption_retries", 3)
	v.SetDefault("generation.workers", 1)
	v.SetDefault("generation.banned_fragments", DefaultBannedFragments)
	v.SetDefault("generation.style_hints", DefaultStyleHints)
}
