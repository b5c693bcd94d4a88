package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// LoadDotEnv loads variables from the given env files when they exist.
// Variables already set in the environment win.
func LoadDotEnv(files ...string) {
	for _, f := range files {
		_ = godotenv.Load(f)
	}
}

type Config struct {
	Port         string
	LogLevel     string
	TablesFile   string
	WatchTables  bool
	BatchWorkers int

	S3Endpoint  string
	S3Region    string
	S3Bucket    string
	S3AccessKey string
	S3SecretKey string
	// S3UploadsPerSec caps PutObject calls; 0 means unlimited.
	S3UploadsPerSec float64
}

func ProcessEnvironmentVariables() (*Config, error) {
	// In all cases the default behavior should be for the docker compose setup
	env := Config{
		Port:         "9446",
		LogLevel:     "info",
		TablesFile:   "",
		WatchTables:  false,
		BatchWorkers: 4,
		S3Endpoint:   "http://localhost:9000",
		S3Region:     "us-east-1",
		S3Bucket:     "transactions",
		S3AccessKey:  "minioadmin",
		S3SecretKey:  "minioadmin",
	}

	if v := os.Getenv("HERMES_PORT"); len(v) != 0 {
		env.Port = v
	}

	if v := os.Getenv("HERMES_LOG_LEVEL"); len(v) != 0 {
		env.LogLevel = v
	}

	if v := os.Getenv("HERMES_TABLES_FILE"); len(v) != 0 {
		env.TablesFile = v
	}

	if v := os.Getenv("HERMES_WATCH_TABLES"); len(v) != 0 {
		watch, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("HERMES_WATCH_TABLES: %w", err)
		}
		env.WatchTables = watch
	}

	if v := os.Getenv("HERMES_BATCH_WORKERS"); len(v) != 0 {
		workers, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("HERMES_BATCH_WORKERS: %w", err)
		}
		if workers < 1 {
			return nil, fmt.Errorf("HERMES_BATCH_WORKERS must be at least 1, got %d", workers)
		}
		env.BatchWorkers = workers
	}

	if v := os.Getenv("HERMES_S3_ENDPOINT"); len(v) != 0 {
		env.S3Endpoint = v
	}

	if v := os.Getenv("HERMES_S3_REGION"); len(v) != 0 {
		env.S3Region = v
	}

	if v := os.Getenv("HERMES_S3_BUCKET"); len(v) != 0 {
		env.S3Bucket = v
	}

	if v := os.Getenv("HERMES_S3_ACCESS_KEY"); len(v) != 0 {
		env.S3AccessKey = v
	}

	if v := os.Getenv("HERMES_S3_SECRET_KEY"); len(v) != 0 {
		env.S3SecretKey = v
	}

	if v := os.Getenv("HERMES_S3_UPLOADS_PER_SEC"); len(v) != 0 {
		perSec, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("HERMES_S3_UPLOADS_PER_SEC: %w", err)
		}
		if perSec < 0 {
			return nil, fmt.Errorf("HERMES_S3_UPLOADS_PER_SEC must not be negative, got %v", perSec)
		}
		env.S3UploadsPerSec = perSec
	}

	if env.WatchTables && env.TablesFile == "" {
		return nil, fmt.Errorf("HERMES_WATCH_TABLES requires HERMES_TABLES_FILE")
	}

	return &env, nil
}
