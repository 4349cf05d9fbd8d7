package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	// Application
	Version     string
	Environment string
	WorkerID    string
	Port        int
	LogLevel    string

	// Logdy (lightweight web log viewer)
	LogdyEnabled bool
	LogdyHost    string
	LogdyPort    int

	// NATS (for alert publishing and the remote inference backend)
	// Default: nats://localhost:4222 (works with Docker Compose setup)
	// Docker: Use nats://nats:4222 if running worker in Docker
	NatsURL            string
	NatsConnectTimeout time.Duration
	NatsReconnectWait  time.Duration
	NatsMaxReconnects  int
	NatsDrainTimeout   time.Duration // For graceful shutdown

	// Alerting via NATS
	AlertsSubject string

	// Inference
	// Backend is "onnx" (local OpenCV DNN models) or "nats" (remote
	// model server over request-reply)
	InferenceBackend string
	InferenceTimeout time.Duration
	DetectSubject    string
	ClassifySubject  string

	// Local models (onnx backend)
	DetectorModelPath   string
	DetectorNamesPath   string
	DetectorInputSize   int
	ClassifierModelPath string
	ClassifierNamesPath string
	ClassifierInputSize int

	// Detection acceptance filters
	ConfidenceThreshold float64 // raw detector score floor, 0..1
	MinBoxSizePct       float64 // minimum box width/height as % of frame
	AcceptedLabels      []string
	SuspiciousLabels    []string

	// Clip sampling
	ClipLength int

	// Session history bounds
	DetectionRingSize int
	AlertRingSize     int

	// Alert policy
	AlertMinConfidence   float64
	ClassifierPrecedence bool

	// Recordings
	RecordingsDir     string
	RecordingsDBPath  string
	RecordingsBaseURL string

	// Swagger Configuration
	SwaggerHost string
	SwaggerPort int

	// Graceful Shutdown
	ShutdownTimeout time.Duration
}

func Load() *Config {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Debug().Err(err).Msg("No .env file found or error loading .env file, using environment variables and defaults")
	} else {
		log.Info().Msg("Loaded configuration from .env file")
	}

	return &Config{
		// Application
		Version:     getEnv("VERSION", "1.0.0"),
		Environment: getEnv("ENVIRONMENT", "development"),
		WorkerID:    getEnv("WORKER_ID", "worker-1"),
		Port:        getEnvInt("PORT", 8000),
		LogLevel:    getEnv("LOG_LEVEL", "info"),

		// Logdy (lightweight web log viewer)
		LogdyEnabled: getEnvBool("LOGDY_ENABLED", false),
		LogdyHost:    getEnv("LOGDY_HOST", "localhost"),
		LogdyPort:    getEnvInt("LOGDY_PORT", 8080),

		// NATS (configured for Docker Compose setup)
		NatsURL:            getNatsURL(),
		NatsConnectTimeout: getEnvDuration("NATS_CONNECT_TIMEOUT", 10*time.Second),
		NatsReconnectWait:  getEnvDuration("NATS_RECONNECT_WAIT", 2*time.Second),
		NatsMaxReconnects:  getEnvInt("NATS_MAX_RECONNECTS", -1), // -1 = unlimited
		NatsDrainTimeout:   getEnvDuration("NATS_DRAIN_TIMEOUT", 5*time.Second),

		// Alerting via NATS
		AlertsSubject: getEnv("ALERTS_SUBJECT", "alerts.surveillance"),

		// Inference
		InferenceBackend: getEnv("INFERENCE_BACKEND", "onnx"),
		InferenceTimeout: getEnvDuration("INFERENCE_TIMEOUT", 5*time.Second),
		DetectSubject:    getEnv("INFERENCE_DETECT_SUBJECT", "inference.detect"),
		ClassifySubject:  getEnv("INFERENCE_CLASSIFY_SUBJECT", "inference.classify"),

		// Local models
		DetectorModelPath:   getEnv("DETECTOR_MODEL_PATH", "models/yolov8n.onnx"),
		DetectorNamesPath:   getEnv("DETECTOR_NAMES_PATH", ""),
		DetectorInputSize:   getEnvInt("DETECTOR_INPUT_SIZE", 640),
		ClassifierModelPath: getEnv("CLASSIFIER_MODEL_PATH", "models/suspicion_nano.onnx"),
		ClassifierNamesPath: getEnv("CLASSIFIER_NAMES_PATH", ""),
		ClassifierInputSize: getEnvInt("CLASSIFIER_INPUT_SIZE", 480),

		// Detection acceptance filters
		ConfidenceThreshold: getEnvFloat("DETECTION_CONFIDENCE_THRESHOLD", 0.5),
		MinBoxSizePct:       getEnvFloat("MIN_BOX_SIZE_PCT", 1.0),
		AcceptedLabels:      getEnvList("ACCEPTED_LABELS", []string{"person"}),
		SuspiciousLabels:    getEnvList("SUSPICIOUS_LABELS", nil),

		// Clip sampling
		ClipLength: getEnvInt("CLIP_LENGTH", 16),

		// Session history bounds
		DetectionRingSize: getEnvInt("DETECTION_RING_SIZE", 3),
		AlertRingSize:     getEnvInt("ALERT_RING_SIZE", 5),

		// Alert policy
		AlertMinConfidence:   getEnvFloat("ALERT_MIN_CONFIDENCE", 70),
		ClassifierPrecedence: getEnvBool("CLASSIFIER_PRECEDENCE", true),

		// Recordings
		RecordingsDir:     getEnv("RECORDINGS_DIR", "media/recordings"),
		RecordingsDBPath:  getEnv("RECORDINGS_DB_PATH", "media/recordings.db"),
		RecordingsBaseURL: getEnv("RECORDINGS_BASE_URL", "/media/recordings"),

		// Swagger Configuration
		SwaggerHost: getEnv("SWAGGER_HOST", "localhost"),
		SwaggerPort: getEnvInt("SWAGGER_PORT", 8000),

		// Graceful Shutdown
		ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 30*time.Second),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		var items []string
		for _, item := range strings.Split(value, ",") {
			if item = strings.TrimSpace(item); item != "" {
				items = append(items, item)
			}
		}
		if len(items) > 0 {
			return items
		}
	}
	return defaultValue
}

// Helper functions for Docker environment detection
func isRunningInDocker() bool {
	// Check for Docker-specific environment indicators
	if os.Getenv("DOCKER_CONTAINER") == "true" {
		return true
	}

	// Check for .dockerenv file
	if _, err := os.Stat("/.dockerenv"); err == nil {
		return true
	}

	return false
}

// getNatsURL returns the appropriate NATS URL based on environment
func getNatsURL() string {
	if envURL := os.Getenv("NATS_URL"); envURL != "" {
		return envURL
	}

	// If running in Docker, use service name; otherwise use localhost
	if isRunningInDocker() {
		return "nats://nats:4222"
	}

	return "nats://localhost:4222"
}
