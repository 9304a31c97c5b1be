package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App         AppConfig
	Keys        APIKeys
	Ai          AIConfig
	Rag         RagConfig
	Vector      VectorConfig
	Transcripts TranscriptConfig
	AutoDetect  AutoDetectConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	RedisURL           string
	DataDir            string
}

type APIKeys struct {
	GoogleGemini string
	OpenAI       string
}

type AIConfig struct {
	EmbeddingProvider    string // "gemini", "ollama" or "hash"
	EmbeddingDim         int    // dimensionality of the hash fallback
	LLMProvider          string // "gemini", "ollama", "openai"
	GeminiModel          string
	OllamaBaseURL        string
	OllamaEmbeddingModel string
	OllamaChatModel      string
	OpenAIBaseURL        string
	OpenAIModel          string
	GenerationTimeout    time.Duration
}

type RagConfig struct {
	ChunkSize    int
	ChunkOverlap int
	TopK         int
	RerankWeight float64
	RerankerURL  string
	ContextLines int // transcript tail length for auto answers
}

type VectorConfig struct {
	Backend  string // "file", "memory" or "pgvector"
	FilePath string
	DSN      string
}

type TranscriptConfig struct {
	Dir          string
	ScanInterval time.Duration
}

type AutoDetectConfig struct {
	Enabled  bool
	Cooldown time.Duration
	MinWords int
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, using system environment")
	}

	dataDir := getEnv("DATA_DIR", "data")

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			RedisURL:           getEnv("REDIS_URL", ""),
			DataDir:            dataDir,
		},
		Keys: APIKeys{
			GoogleGemini: getEnv("GOOGLE_GEMINI_API_KEY", ""),
			OpenAI:       getEnv("OPENAI_API_KEY", ""),
		},
		Ai: AIConfig{
			EmbeddingProvider:    getEnv("EMBEDDING_PROVIDER", "hash"),
			EmbeddingDim:         getEnvAsInt("EMBEDDING_DIM", 256),
			LLMProvider:          getEnv("LLM_PROVIDER", "gemini"),
			GeminiModel:          getEnv("GEMINI_MODEL", "gemini-1.5-flash"),
			OllamaBaseURL:        getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			OllamaEmbeddingModel: getEnv("OLLAMA_EMBEDDING_MODEL", "nomic-embed-text"),
			OllamaChatModel:      getEnv("OLLAMA_CHAT_MODEL", "llama3"),
			OpenAIBaseURL:        getEnv("OPENAI_BASE_URL", ""),
			OpenAIModel:          getEnv("OPENAI_MODEL", ""),
			GenerationTimeout:    getEnvAsDuration("GENERATION_TIMEOUT", 120*time.Second),
		},
		Rag: RagConfig{
			ChunkSize:    getEnvAsInt("CHUNK_SIZE", 800),
			ChunkOverlap: getEnvAsInt("CHUNK_OVERLAP", 100),
			TopK:         getEnvAsInt("TOP_K", 5),
			RerankWeight: getEnvAsFloat("RERANK_WEIGHT", 0.3),
			RerankerURL:  getEnv("RERANKER_URL", ""),
			ContextLines: getEnvAsInt("CONTEXT_LINES", 10),
		},
		Vector: VectorConfig{
			Backend:  getEnv("VECTOR_BACKEND", "file"),
			FilePath: getEnv("VECTOR_DB_PATH", dataDir+"/vectors.db"),
			DSN:      getEnv("DB_CONNECTION_STRING", ""),
		},
		Transcripts: TranscriptConfig{
			Dir:          getEnv("TRANSCRIPTS_DIR", dataDir+"/transcripts"),
			ScanInterval: getEnvAsDuration("TRANSCRIPT_SCAN_INTERVAL", 60*time.Second),
		},
		AutoDetect: AutoDetectConfig{
			Enabled:  getEnvAsBool("AUTO_DETECT_ENABLED", true),
			Cooldown: getEnvAsDuration("AUTO_DETECT_COOLDOWN", 15*time.Second),
			MinWords: getEnvAsInt("AUTO_DETECT_MIN_WORDS", 3),
		},
	}
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

func getEnvAsFloat(key string, fallback float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
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
	if strValue == "" {
		return fallback
	}
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	if secs, err := strconv.Atoi(strValue); err == nil {
		return time.Duration(secs) * time.Second
	}
	return fallback
}
