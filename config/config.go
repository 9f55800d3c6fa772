package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	InspectTarget string

	ModelPath         string
	ModelInputName    string
	ModelOutputName   string
	LabelsPath        string
	VisionProgramPath string
	ResultTablePath   string

	GPUMemoryLimitGiB float64
	OnnxRuntimeLib    string
	IntraOpThreads    int

	TelegramToken  string
	OperatorChatID int64
	HTTPAddr       string
	InspectBaseDir string

	AlertDedupWindow time.Duration
	LogLevel         string
}

func Load() (*Config, error) {
	// Загружаем .env файл (игнорируем ошибку если файла нет)
	_ = godotenv.Load()

	cfg := &Config{
		InspectTarget:     getEnv("INSPECT_TARGET", "camera"),
		ModelPath:         getEnv("MODEL_PATH", "models/model.onnx"),
		ModelInputName:    getEnv("MODEL_INPUT_NAME", "input"),
		ModelOutputName:   os.Getenv("MODEL_OUTPUT_NAME"),
		LabelsPath:        getEnv("LABELS_PATH", "models/labels.txt"),
		VisionProgramPath: getEnv("VISION_PROGRAM_PATH", "programs/preprocess.yaml"),
		ResultTablePath:   getEnv("RESULT_TABLE_PATH", "programs/results.yaml"),
		OnnxRuntimeLib:    os.Getenv("ONNXRUNTIME_LIB"),
		TelegramToken:     os.Getenv("TELEGRAM_TOKEN"),
		HTTPAddr:          getEnv("HTTP_ADDR", ":8080"),
		InspectBaseDir:    os.Getenv("INSPECT_BASE_DIR"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
	}

	var err error
	if cfg.GPUMemoryLimitGiB, err = parseFloat("GPU_MEMORY_LIMIT_GIB", 0); err != nil {
		return nil, err
	}
	if cfg.GPUMemoryLimitGiB < 0 {
		return nil, fmt.Errorf("GPU_MEMORY_LIMIT_GIB must not be negative, got %v", cfg.GPUMemoryLimitGiB)
	}
	if cfg.IntraOpThreads, err = parseInt("INTRA_OP_THREADS", 0); err != nil {
		return nil, err
	}
	if cfg.OperatorChatID, err = parseInt64("OPERATOR_CHAT_ID", 0); err != nil {
		return nil, err
	}
	if cfg.AlertDedupWindow, err = parseDuration("ALERT_DEDUP_WINDOW", 10*time.Minute); err != nil {
		return nil, err
	}

	return cfg, nil
}

func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return def
}

func parseFloat(key string, def float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return f, nil
}

func parseInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return n, nil
}

func parseInt64(key string, def int64) (int64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return n, nil
}

func parseDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return d, nil
}
