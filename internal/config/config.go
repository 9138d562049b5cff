package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	BackendSheets = "sheets"
	BackendXLSX   = "xlsx"

	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

type Config struct {
	DBPath    string
	OutputDir string

	StoreBackend          string
	GoogleCredentialsPath string
	SheetID               string
	LedgerXLSXPath        string
	RawSheet              string
	ProcessedSheet        string
	ProcessedIDColumn     int

	ClassifierProvider     string
	OpenAIAPIKey           string
	OpenAIBaseURL          string
	OpenAIModel            string
	GeminiAPIKey           string
	GeminiBaseURL          string
	GeminiModel            string
	ClassifierMaxTokens    int
	ClassifierTimeoutMs    int
	ClassifierRateLimitRPS int
	ClassifierMaxAttempts  int

	VocabularyPath    string
	ManagerCodeSource string
	ManagerCodes      []string

	Workers    int
	LockTTLMin int

	LogLevel  string
	LogFormat string
}

func Load() (Config, error) {
	_ = godotenv.Load()

	cwd, err := os.Getwd()
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		DBPath:    getEnv("DB_PATH", filepath.Join(cwd, "data", "runs.db")),
		OutputDir: getEnv("OUTPUT_DIR", filepath.Join(cwd, "out")),

		StoreBackend:          strings.ToLower(getEnv("STORE_BACKEND", BackendSheets)),
		GoogleCredentialsPath: getEnv("GOOGLE_SHEETS_CREDENTIALS", ""),
		SheetID:               getEnv("SHEET_ID", ""),
		LedgerXLSXPath:        getEnv("LEDGER_XLSX_PATH", filepath.Join(cwd, "data", "ledger.xlsx")),
		RawSheet:              getEnv("RAW_SHEET", "Dados Brutos"),
		ProcessedSheet:        getEnv("PROCESSED_SHEET", "Pedidos Processados"),
		ProcessedIDColumn:     getEnvInt("PROCESSED_ID_COLUMN", 3),

		ClassifierProvider:     strings.ToLower(getEnv("CLASSIFIER_PROVIDER", ProviderOpenAI)),
		OpenAIAPIKey:           getEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL:          getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		OpenAIModel:            getEnv("OPENAI_MODEL", "gpt-3.5-turbo"),
		GeminiAPIKey:           getEnv("GEMINI_API_KEY", ""),
		GeminiBaseURL:          getEnv("GEMINI_BASE_URL", ""),
		GeminiModel:            getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
		ClassifierMaxTokens:    getEnvInt("CLASSIFIER_MAX_TOKENS", 10),
		ClassifierTimeoutMs:    getEnvInt("CLASSIFIER_TIMEOUT_MS", 30000),
		ClassifierRateLimitRPS: getEnvInt("CLASSIFIER_RATE_LIMIT_RPS", 5),
		ClassifierMaxAttempts:  getEnvInt("CLASSIFIER_MAX_ATTEMPTS", 3),

		VocabularyPath:    getEnv("VOCABULARY_PATH", ""),
		ManagerCodeSource: strings.ToLower(getEnv("MANAGER_CODE_SOURCE", "pattern")),
		ManagerCodes:      getEnvList("MANAGER_CODES"),

		Workers:    getEnvInt("WORKERS", 1),
		LockTTLMin: getEnvInt("LOCK_TTL_MIN", 60),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "console"),
	}

	return cfg, nil
}

func (c Config) Require(name, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("missing required env var: %s", name)
	}
	return nil
}

// ValidateStore checks the settings the selected store backend needs.
func (c Config) ValidateStore() error {
	switch c.StoreBackend {
	case BackendSheets:
		if err := c.Require("GOOGLE_SHEETS_CREDENTIALS", c.GoogleCredentialsPath); err != nil {
			return err
		}
		return c.Require("SHEET_ID", c.SheetID)
	case BackendXLSX:
		return c.Require("LEDGER_XLSX_PATH", c.LedgerXLSXPath)
	default:
		return fmt.Errorf("unsupported STORE_BACKEND: %s", c.StoreBackend)
	}
}

// ValidateClassifier checks the settings the selected classifier provider needs.
func (c Config) ValidateClassifier() error {
	switch c.ClassifierProvider {
	case ProviderOpenAI:
		return c.Require("OPENAI_API_KEY", c.OpenAIAPIKey)
	case ProviderGemini:
		return c.Require("GEMINI_API_KEY", c.GeminiAPIKey)
	default:
		return fmt.Errorf("unsupported CLASSIFIER_PROVIDER: %s", c.ClassifierProvider)
	}
}

func (c Config) Validate() error {
	if err := c.ValidateStore(); err != nil {
		return err
	}
	if err := c.ValidateClassifier(); err != nil {
		return err
	}
	if c.ProcessedIDColumn < 1 {
		return fmt.Errorf("PROCESSED_ID_COLUMN must be >= 1, got %d", c.ProcessedIDColumn)
	}
	switch c.ManagerCodeSource {
	case "pattern", "batch":
	case "fixed":
		if len(c.ManagerCodes) == 0 {
			return fmt.Errorf("MANAGER_CODE_SOURCE=fixed requires MANAGER_CODES")
		}
	default:
		return fmt.Errorf("unsupported MANAGER_CODE_SOURCE: %s", c.ManagerCodeSource)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvList(key string) []string {
	value := getEnv(key, "")
	if strings.TrimSpace(value) == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
