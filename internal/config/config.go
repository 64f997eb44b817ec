package config

import (
	"errors"
	"fmt"
	"log"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ErrConfiguration is returned when connection parameters are missing or invalid.
// It is fatal at startup.
var ErrConfiguration = errors.New("invalid configuration")

// DefaultSupportedModels is the completion model catalogue offered to users
var DefaultSupportedModels = []string{
	"mixtral-8x7b",
	"snowflake-arctic",
	"mistral-large",
	"llama3-8b",
	"llama3-70b",
	"reka-flash",
	"mistral-7b",
	"llama2-70b-chat",
	"gemma-7b",
}

type Config struct {
	App      AppConfig      `yaml:"app"`
	Database DatabaseConfig `yaml:"database"`
	Ai       AIConfig       `yaml:"ai"`
	Rag      RagConfig      `yaml:"rag"`
	Ingest   IngestConfig   `yaml:"ingest"`
}

type AppConfig struct {
	Port               string `yaml:"port"`
	Environment        string `yaml:"environment"`
	LogFilePath        string `yaml:"log_file_path"`
	CorsAllowedOrigins string `yaml:"cors_allowed_origins"`
	NatsURL            string `yaml:"nats_url"`
}

// DatabaseConfig points at the postgres instance holding docs_chunks_table.
// Connection, when set, wins over the individual fields.
type DatabaseConfig struct {
	Connection string `yaml:"connection"`
	Host       string `yaml:"host"` // account
	Port       string `yaml:"port"`
	User       string `yaml:"user"`
	Password   string `yaml:"password"`
	Role       string `yaml:"role"`
	Name       string `yaml:"name"`
	Schema     string `yaml:"schema"`
	SSLMode    string `yaml:"sslmode"`
}

type AIConfig struct {
	EmbeddingProvider string            `yaml:"embedding_provider"` // "ollama", "openai" or "gemini"
	EmbeddingModel    string            `yaml:"embedding_model"`
	LLMProvider       string            `yaml:"llm_provider"` // "ollama" or "openai"
	OllamaBaseURL     string            `yaml:"ollama_base_url"`
	OpenAIBaseURL     string            `yaml:"openai_base_url"`
	OpenAIAPIKey      string            `yaml:"openai_api_key"`
	GeminiAPIKey      string            `yaml:"gemini_api_key"`
	SupportedModels   []string          `yaml:"supported_models"`
	ModelAliases      map[string]string `yaml:"model_aliases"` // catalogue id -> provider model name
	DefaultModel      string            `yaml:"default_model"`
	RequestTimeout    time.Duration     `yaml:"request_timeout"` // 0 disables the per-call deadline
}

type RagConfig struct {
	NumChunks         int           `yaml:"num_chunks"`
	SlideWindow       int           `yaml:"slide_window"`
	DropLowestChunk   bool          `yaml:"drop_lowest_chunk"`
	DefaultUseHistory bool          `yaml:"default_use_history"`
	DefaultDebug      bool          `yaml:"default_debug"`
	SessionTTL        time.Duration `yaml:"session_ttl"`
}

type IngestConfig struct {
	ChunkSize    int `yaml:"chunk_size"`
	ChunkOverlap int `yaml:"chunk_overlap"`
}

// Load reads defaults, then the optional YAML file named by MINDEASE_CONFIG,
// then the environment (.env included). Later sources win.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	cfg := defaultConfig()
	if path := os.Getenv("MINDEASE_CONFIG"); path != "" {
		if err := loadFile(path, cfg); err != nil {
			log.Printf("Warn: failed to read config file %s: %v", path, err)
		}
	}
	applyEnv(cfg)
	return cfg
}

func defaultConfig() *Config {
	return &Config{
		App: AppConfig{
			Port:               "3000",
			Environment:        "development",
			LogFilePath:        "logs/app.log",
			CorsAllowedOrigins: "http://localhost:5173",
		},
		Database: DatabaseConfig{
			Port:    "5432",
			Schema:  "public",
			SSLMode: "disable",
		},
		Ai: AIConfig{
			EmbeddingProvider: "ollama",
			EmbeddingModel:    "nomic-embed-text",
			LLMProvider:       "ollama",
			OllamaBaseURL:     "http://localhost:11434",
			OpenAIBaseURL:     "https://api.openai.com/v1",
			SupportedModels:   append([]string(nil), DefaultSupportedModels...),
			DefaultModel:      "mistral-7b",
			RequestTimeout:    120 * time.Second,
		},
		Rag: RagConfig{
			NumChunks:         4,
			SlideWindow:       7,
			DefaultUseHistory: true,
			SessionTTL:        time.Hour,
		},
		Ingest: IngestConfig{
			ChunkSize:    1500,
			ChunkOverlap: 256,
		},
	}
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

func applyEnv(cfg *Config) {
	cfg.App.Port = getEnv("APP_PORT", cfg.App.Port)
	cfg.App.Environment = getEnv("GO_ENV", cfg.App.Environment)
	cfg.App.LogFilePath = getEnv("LOG_FILE_PATH", cfg.App.LogFilePath)
	cfg.App.CorsAllowedOrigins = getEnv("CORS_ALLOWED_ORIGINS", cfg.App.CorsAllowedOrigins)
	cfg.App.NatsURL = getEnv("NATS_URL", cfg.App.NatsURL)

	cfg.Database.Connection = getEnv("DB_CONNECTION_STRING", cfg.Database.Connection)
	cfg.Database.Host = getEnv("DB_HOST", cfg.Database.Host)
	cfg.Database.Port = getEnv("DB_PORT", cfg.Database.Port)
	cfg.Database.User = getEnv("DB_USER", cfg.Database.User)
	cfg.Database.Password = getEnv("DB_PASSWORD", cfg.Database.Password)
	cfg.Database.Role = getEnv("DB_ROLE", cfg.Database.Role)
	cfg.Database.Name = getEnv("DB_NAME", cfg.Database.Name)
	cfg.Database.Schema = getEnv("DB_SCHEMA", cfg.Database.Schema)
	cfg.Database.SSLMode = getEnv("DB_SSLMODE", cfg.Database.SSLMode)

	cfg.Ai.EmbeddingProvider = getEnv("EMBEDDING_PROVIDER", cfg.Ai.EmbeddingProvider)
	cfg.Ai.EmbeddingModel = getEnv("EMBEDDING_MODEL", cfg.Ai.EmbeddingModel)
	cfg.Ai.LLMProvider = getEnv("LLM_PROVIDER", cfg.Ai.LLMProvider)
	cfg.Ai.OllamaBaseURL = getEnv("OLLAMA_BASE_URL", cfg.Ai.OllamaBaseURL)
	cfg.Ai.OpenAIBaseURL = getEnv("OPENAI_BASE_URL", cfg.Ai.OpenAIBaseURL)
	cfg.Ai.OpenAIAPIKey = getEnv("OPENAI_API_KEY", cfg.Ai.OpenAIAPIKey)
	cfg.Ai.GeminiAPIKey = getEnv("GOOGLE_GEMINI_API_KEY", cfg.Ai.GeminiAPIKey)
	cfg.Ai.SupportedModels = getEnvAsList("LLM_SUPPORTED_MODELS", cfg.Ai.SupportedModels)
	cfg.Ai.ModelAliases = getEnvAsMap("LLM_MODEL_ALIASES", cfg.Ai.ModelAliases)
	cfg.Ai.DefaultModel = getEnv("LLM_DEFAULT_MODEL", cfg.Ai.DefaultModel)
	cfg.Ai.RequestTimeout = getEnvAsDuration("LLM_REQUEST_TIMEOUT", cfg.Ai.RequestTimeout)

	cfg.Rag.NumChunks = getEnvAsInt("RAG_NUM_CHUNKS", cfg.Rag.NumChunks)
	cfg.Rag.SlideWindow = getEnvAsInt("RAG_SLIDE_WINDOW", cfg.Rag.SlideWindow)
	cfg.Rag.DropLowestChunk = getEnvAsBool("RAG_DROP_LOWEST_CHUNK", cfg.Rag.DropLowestChunk)
	cfg.Rag.DefaultUseHistory = getEnvAsBool("RAG_DEFAULT_USE_HISTORY", cfg.Rag.DefaultUseHistory)
	cfg.Rag.DefaultDebug = getEnvAsBool("RAG_DEFAULT_DEBUG", cfg.Rag.DefaultDebug)
	cfg.Rag.SessionTTL = getEnvAsDuration("RAG_SESSION_TTL", cfg.Rag.SessionTTL)

	cfg.Ingest.ChunkSize = getEnvAsInt("INGEST_CHUNK_SIZE", cfg.Ingest.ChunkSize)
	cfg.Ingest.ChunkOverlap = getEnvAsInt("INGEST_CHUNK_OVERLAP", cfg.Ingest.ChunkOverlap)
}

// Validate checks everything a session needs before the process accepts traffic
func (c *Config) Validate() error {
	var problems []string

	db := c.Database
	if db.Connection == "" {
		if db.Host == "" {
			problems = append(problems, "DB_HOST is not set")
		}
		if db.User == "" {
			problems = append(problems, "DB_USER is not set")
		}
		if db.Name == "" {
			problems = append(problems, "DB_NAME is not set")
		}
	}

	if len(c.Ai.SupportedModels) == 0 {
		problems = append(problems, "no supported models configured")
	} else if !contains(c.Ai.SupportedModels, c.Ai.DefaultModel) {
		problems = append(problems, fmt.Sprintf("default model %q is not in the supported list", c.Ai.DefaultModel))
	}
	if c.Ai.LLMProvider == "openai" && c.Ai.OpenAIAPIKey == "" {
		problems = append(problems, "OPENAI_API_KEY is required for the openai LLM provider")
	}
	if c.Rag.NumChunks <= 0 {
		problems = append(problems, "RAG_NUM_CHUNKS must be positive")
	}
	if c.Rag.SlideWindow <= 0 {
		problems = append(problems, "RAG_SLIDE_WINDOW must be positive")
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrConfiguration, strings.Join(problems, "; "))
	}
	return nil
}

// DSN returns the postgres connection string
func (d DatabaseConfig) DSN() string {
	if d.Connection != "" {
		return d.Connection
	}
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   d.Host + ":" + d.Port,
		Path:   "/" + d.Name,
	}
	q := url.Values{}
	if d.SSLMode != "" {
		q.Set("sslmode", d.SSLMode)
	}
	if d.Schema != "" {
		q.Set("search_path", d.Schema)
	}
	u.RawQuery = q.Encode()
	return u.String()
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsList(key string, fallback []string) []string {
	strValue := getEnv(key, "")
	if strValue == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(strValue, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}

// getEnvAsMap parses "a=b,c=d"
func getEnvAsMap(key string, fallback map[string]string) map[string]string {
	strValue := getEnv(key, "")
	if strValue == "" {
		return fallback
	}
	out := make(map[string]string)
	for _, pair := range strings.Split(strValue, ",") {
		k, v, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		out[strings.TrimSpace(k)] = strings.TrimSpace(v)
	}
	return out
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
