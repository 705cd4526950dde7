package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

// Config stores runtime configuration. Values come from, in increasing
// priority: built-in defaults, an optional TOML file, the environment
// (including a .env file in the working directory).
type Config struct {
	LLMKey         string
	LLMEndpoint    string
	LLMModel       string
	LLMTimeout     time.Duration
	MemoDatabase   string
	TesseractPath  string
	TesseractLang  string
	LogLevel       string
	LogFormat      string
	Port           string
	MaxUploadMB    int
	ResultCapacity int
}

// fileConfig mirrors the TOML layout.
type fileConfig struct {
	LLM struct {
		APIKey   string `toml:"api_key"`
		Endpoint string `toml:"endpoint"`
		Model    string `toml:"model"`
		Timeout  string `toml:"timeout"`
	} `toml:"llm"`
	Memo struct {
		Database string `toml:"database"`
	} `toml:"memo"`
	OCR struct {
		Binary   string `toml:"binary"`
		Language string `toml:"language"`
	} `toml:"ocr"`
	Log struct {
		Level  string `toml:"level"`
		Format string `toml:"format"`
	} `toml:"log"`
	Server struct {
		Port           string `toml:"port"`
		MaxUploadMB    int    `toml:"max_upload_mb"`
		ResultCapacity int    `toml:"result_capacity"`
	} `toml:"server"`
}

const (
	DefaultEndpoint = "https://generativelanguage.googleapis.com/v1beta/openai/"
	DefaultModel    = "gemini-1.5-flash"
)

// Load reads configuration. path may be empty; a missing .env file is not
// an error, a missing or malformed TOML file named by path is.
func Load(path string) (Config, error) {
	// Load .env file if it exists (useful for development)
	_ = godotenv.Load()

	var file fileConfig
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := toml.Unmarshal(raw, &file); err != nil {
			return Config{}, fmt.Errorf("decode config %s: %w", path, err)
		}
	}

	cfg := Config{
		LLMKey:        getEnv("LLM_API_KEY", file.LLM.APIKey),
		LLMEndpoint:   getEnv("LLM_API_ENDPOINT", orDefault(file.LLM.Endpoint, DefaultEndpoint)),
		LLMModel:      getEnv("LLM_MODEL", orDefault(file.LLM.Model, DefaultModel)),
		MemoDatabase:  getEnv("MEMO_DATABASE", orDefault(file.Memo.Database, ":memory:")),
		TesseractPath: getEnv("TESSERACT_PATH", orDefault(file.OCR.Binary, "tesseract")),
		TesseractLang: getEnv("TESSERACT_LANG", orDefault(file.OCR.Language, "eng")),
		LogLevel:      getEnv("LOG_LEVEL", orDefault(file.Log.Level, "info")),
		LogFormat:     getEnv("LOG_FORMAT", orDefault(file.Log.Format, "console")),
		Port:          getEnv("PORT", orDefault(file.Server.Port, "8080")),
	}

	var errs []error
	timeout, err := time.ParseDuration(getEnv("LLM_TIMEOUT", orDefault(file.LLM.Timeout, "2m")))
	if err != nil {
		errs = append(errs, fmt.Errorf("LLM_TIMEOUT: %w", err))
	}
	cfg.LLMTimeout = timeout

	if cfg.MaxUploadMB, err = getEnvInt("MAX_UPLOAD_MB", orDefaultInt(file.Server.MaxUploadMB, 32)); err != nil {
		errs = append(errs, err)
	}
	if cfg.ResultCapacity, err = getEnvInt("RESULT_CAPACITY", orDefaultInt(file.Server.ResultCapacity, 50)); err != nil {
		errs = append(errs, err)
	}
	if err := errors.Join(errs...); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	val, ok := os.LookupEnv(key)
	if !ok || val == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%s: want a positive integer, got %q", key, val)
	}
	return n, nil
}

func orDefault(val, fallback string) string {
	if val != "" {
		return val
	}
	return fallback
}

func orDefaultInt(val, fallback int) int {
	if val > 0 {
		return val
	}
	return fallback
}
