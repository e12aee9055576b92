package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	Port     int    `validate:"min=1,max=65535"`
	Password string `validate:"required"`

	// Detection model (YOLOv3 darknet weights + cfg)
	ModelPath      string  `validate:"required"`
	ConfigPath     string  `validate:"required"`
	InputSize      int     `validate:"min=32"`
	LabelSet       string  `validate:"oneof=coco fleet numeric"`
	LabelsFile     string  // Overrides LabelSet when set
	ScoreThreshold float64 `validate:"gt=0,lt=1"`
	NMSThreshold   float64 `validate:"gt=0,lte=1"`

	// Classification
	AnomalyLabels []string
	AnomalyScope  string  `validate:"oneof=frame object"`
	TurnThreshold float64 `validate:"gt=0,lt=180"`
	SubjectID     string  `validate:"required"`
	SizeBucket    string  `validate:"required"`

	// Pipeline
	VideoSource        string // Device index ("0") or path to a video file
	ProcessingInterval int    `validate:"min=1"` // Process every Nth frame (1 = every frame)
	MaxReadErrors      int    `validate:"min=1"`

	// Storage
	LogStorePath          string `validate:"required"`
	ReportPath            string `validate:"required"`
	ReportTitle           string
	DatabasePath          string `validate:"required"`
	ImageDirectory        string `validate:"required"`
	SnapshotBufferLimit   int    `validate:"min=0"`
	SnapshotFlushInterval int    `validate:"min=1"` // seconds

	LogDirectory string `validate:"required"`
	LogLevel     string `validate:"oneof=debug info warning error"`
}

// Load reads an optional .env file and builds the configuration from the environment.
func Load() *Config {
	// .env is optional; real environment variables win over it.
	_ = godotenv.Load()

	return &Config{
		Port:     getEnvAsInt("PORT", 8080),
		Password: getEnv("PASSWORD", "password"),

		ModelPath:      getEnv("MODEL_PATH", filepath.Join(".", "models", "yolov3.weights")),
		ConfigPath:     getEnv("CONFIG_PATH", filepath.Join(".", "models", "yolov3.cfg")),
		InputSize:      getEnvAsInt("INPUT_SIZE", 416),
		LabelSet:       getEnv("LABEL_SET", "coco"),
		LabelsFile:     getEnv("LABELS_FILE", ""),
		ScoreThreshold: getEnvAsFloat("SCORE_THRESHOLD", 0.5),
		NMSThreshold:   getEnvAsFloat("NMS_THRESHOLD", 0.4),

		AnomalyLabels: getEnvAsList("ANOMALY_LABELS", []string{"person"}),
		AnomalyScope:  getEnv("ANOMALY_SCOPE", "frame"),
		TurnThreshold: getEnvAsFloat("TURN_THRESHOLD", 10),
		SubjectID:     getEnv("SUBJECT_ID", "1"),
		SizeBucket:    getEnv("SIZE_BUCKET", "medium"),

		VideoSource:        getEnv("VIDEO_SOURCE", "0"),
		ProcessingInterval: getEnvAsInt("PROCESSING_INTERVAL", 1),
		MaxReadErrors:      getEnvAsInt("MAX_READ_ERRORS", 30),

		LogStorePath:          getEnv("LOG_STORE", "log_file.txt"),
		ReportPath:            getEnv("REPORT_PATH", "report.pdf"),
		ReportTitle:           getEnv("REPORT_TITLE", "Truck Monitoring Report"),
		DatabasePath:          getEnv("DB_PATH", filepath.Join(".", "data", "records.db")),
		ImageDirectory:        getEnv("IMAGE_DIR", filepath.Join(".", "snapshots")),
		SnapshotBufferLimit:   getEnvAsInt("BUFFER_LIMIT", 10),
		SnapshotFlushInterval: getEnvAsInt("FLUSH_INTERVAL", 30),

		LogDirectory: getEnv("LOG_DIR", filepath.Join(".", "logs")),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
	}
}

// Validate checks field constraints declared in the struct tags.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

// getEnvAsList splits a comma-separated value, dropping empty items.
func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	if len(items) == 0 {
		return defaultValue
	}
	return items
}
