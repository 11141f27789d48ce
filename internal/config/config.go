package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"ricevute/internal/core"
)

type Config struct {
	// HTTP Server
	Port string

	// Local storage
	SQLiteDBPath string
	ReceiptsDir  string

	// Image normalization
	MaxImageWidth int
	MaxImageBytes int64

	// OCR service
	OCREndpoint string
	OCRAPIKey   string
	OCRLanguage string

	// Categorization strategy: "keyword" or "search"
	Classifier     string
	SearchEndpoint string

	// Remote store: "drive", "memory" or "none"
	RemoteBackend        string
	RemoteRootFolder     string
	RemoteDBFileName     string
	DriveOAuthClientFile string
	DriveOAuthTokenFile  string
	DriveOAuthClientJSON string
	DriveOAuthTokenJSON  string

	// AMQP (optional; enables the sync-replay worker)
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Category tables; defaults from core when the files are absent.
	KeywordTableFile   string
	DeductionRulesFile string
	KeywordTable       map[string]string
	DeductionRules     map[string]core.DeductionRule
}

func Load() *Config {
	cfg := &Config{
		Port:         getEnv("PORT", "8082"),
		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/ricevute.db"),
		ReceiptsDir:  getEnv("RECEIPTS_DIR", "./data/receipts"),

		MaxImageWidth: getEnvInt("MAX_IMAGE_WIDTH", 1024),
		MaxImageBytes: int64(getEnvInt("MAX_IMAGE_BYTES", 1<<20)),

		OCREndpoint: getEnv("OCR_ENDPOINT", "https://api.ocr.space/parse/image"),
		OCRAPIKey:   getEnv("OCR_API_KEY", ""),
		OCRLanguage: getEnv("OCR_LANGUAGE", "eng"),

		Classifier:     getEnv("CLASSIFIER", "keyword"),
		SearchEndpoint: getEnv("SEARCH_ENDPOINT", ""),

		RemoteBackend:        getEnv("REMOTE_BACKEND", "none"),
		RemoteRootFolder:     getEnv("REMOTE_ROOT_FOLDER", "Receipts"),
		RemoteDBFileName:     getEnv("REMOTE_DB_FILE_NAME", "ricevute.db"),
		DriveOAuthClientFile: getEnv("DRIVE_OAUTH_CLIENT_FILE", ""),
		DriveOAuthTokenFile:  getEnv("DRIVE_OAUTH_TOKEN_FILE", ""),
		DriveOAuthClientJSON: getEnv("DRIVE_OAUTH_CLIENT_JSON", ""),
		DriveOAuthTokenJSON:  getEnv("DRIVE_OAUTH_TOKEN_JSON", ""),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "ricevute"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "receipt_sync"),

		KeywordTableFile:   getEnv("KEYWORD_TABLE_FILE", ""),
		DeductionRulesFile: getEnv("DEDUCTION_RULES_FILE", ""),
	}

	cfg.KeywordTable = loadKeywordTable(cfg.KeywordTableFile)
	cfg.DeductionRules = loadDeductionRules(cfg.DeductionRulesFile)

	return cfg
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if c.SQLiteDBPath == "" {
		errors = append(errors, "SQLite database path cannot be empty")
	} else if dir := filepath.Dir(c.SQLiteDBPath); dir != "." && dir != "" {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			if err := os.MkdirAll(dir, 0755); err != nil {
				errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
			}
		}
	}

	if c.ReceiptsDir == "" {
		errors = append(errors, "receipts directory cannot be empty")
	}

	if c.MaxImageWidth < 64 {
		errors = append(errors, fmt.Sprintf("invalid max image width %d: must be at least 64", c.MaxImageWidth))
	}
	if c.MaxImageBytes < 1024 {
		errors = append(errors, fmt.Sprintf("invalid max image bytes %d: must be at least 1024", c.MaxImageBytes))
	}

	switch c.Classifier {
	case "keyword":
	case "search":
		if c.SearchEndpoint == "" {
			errors = append(errors, "SEARCH_ENDPOINT is required when using the search classifier")
		}
	default:
		errors = append(errors, fmt.Sprintf("invalid classifier '%s': must be 'keyword' or 'search'", c.Classifier))
	}

	switch c.RemoteBackend {
	case "none", "memory":
	case "drive":
		hasClient := c.DriveOAuthClientFile != "" || c.DriveOAuthClientJSON != ""
		hasToken := c.DriveOAuthTokenFile != "" || c.DriveOAuthTokenJSON != ""
		if !hasClient {
			errors = append(errors, "either DRIVE_OAUTH_CLIENT_FILE or DRIVE_OAUTH_CLIENT_JSON must be provided for drive backend")
		}
		if !hasToken {
			errors = append(errors, "either DRIVE_OAUTH_TOKEN_FILE or DRIVE_OAUTH_TOKEN_JSON must be provided for drive backend")
		}
		if c.DriveOAuthClientFile != "" {
			if _, err := os.Stat(c.DriveOAuthClientFile); os.IsNotExist(err) {
				errors = append(errors, fmt.Sprintf("Drive OAuth client file does not exist: %s", c.DriveOAuthClientFile))
			}
		}
		if c.DriveOAuthTokenFile != "" {
			if _, err := os.Stat(c.DriveOAuthTokenFile); os.IsNotExist(err) {
				errors = append(errors, fmt.Sprintf("Drive OAuth token file does not exist: %s", c.DriveOAuthTokenFile))
			}
		}
		if c.RemoteRootFolder == "" {
			errors = append(errors, "remote root folder cannot be empty when using drive backend")
		}
	default:
		errors = append(errors, fmt.Sprintf("invalid remote backend '%s': must be one of [none memory drive]", c.RemoteBackend))
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}
