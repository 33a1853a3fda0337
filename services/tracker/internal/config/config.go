package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	platformconfig "github.com/example/vocab-tracker/internal/platform/config"
)

const DefaultServiceName = "tracker"

type Config struct {
	App platformconfig.AppConfig

	StudentID      string
	FlushThreshold int
	FlushInterval  time.Duration
	StoreDSN       string
	CatalogPath    string
	GRPCAddr       string

	// Collector delivery.
	CollectorURL string
	HTTPTimeout  time.Duration
	NATSURL      string
	NATSSubject  string

	// Circuit breaker around the HTTP collector. Disabled when
	// CBFailureThreshold is 0.
	CBMaxRequests      uint32
	CBInterval         time.Duration
	CBTimeout          time.Duration
	CBFailureThreshold uint32
}

// Load reads the tracker settings. SERVICE_NAME defaults to "tracker" so the
// CLI works without a .env file.
func Load() (Config, error) {
	if strings.TrimSpace(os.Getenv("SERVICE_NAME")) == "" {
		_ = os.Setenv("SERVICE_NAME", DefaultServiceName)
	}
	app, err := platformconfig.Load()
	if err != nil {
		return Config{}, err
	}

	subject := strings.TrimSpace(os.Getenv("TRACKER_NATS_SUBJECT"))
	if subject == "" {
		subject = "tracker.responses"
	}
	dsn := strings.TrimSpace(os.Getenv("TRACKER_STORE_DSN"))
	if dsn == "" {
		dsn = "sqlite://data/tracker.db"
	}
	threshold := envInt("TRACKER_FLUSH_THRESHOLD", 20)
	if threshold < 1 {
		threshold = 20
	}

	return Config{
		App:                app,
		StudentID:          strings.TrimSpace(os.Getenv("TRACKER_STUDENT_ID")),
		FlushThreshold:     threshold,
		FlushInterval:      envDuration("TRACKER_FLUSH_INTERVAL", 5*time.Minute),
		StoreDSN:           dsn,
		CatalogPath:        strings.TrimSpace(os.Getenv("TRACKER_CATALOG_PATH")),
		GRPCAddr:           strings.TrimSpace(os.Getenv("TRACKER_GRPC_ADDR")),
		CollectorURL:       strings.TrimSpace(os.Getenv("TRACKER_COLLECTOR_URL")),
		HTTPTimeout:        envDuration("TRACKER_HTTP_TIMEOUT", 10*time.Second),
		NATSURL:            strings.TrimSpace(os.Getenv("TRACKER_NATS_URL")),
		NATSSubject:        subject,
		CBMaxRequests:      uint32(envInt("TRACKER_CB_MAX_REQUESTS", 1)),
		CBInterval:         envDuration("TRACKER_CB_INTERVAL", 60*time.Second),
		CBTimeout:          envDuration("TRACKER_CB_TIMEOUT", 30*time.Second),
		CBFailureThreshold: uint32(envInt("TRACKER_CB_FAILURE_THRESHOLD", 5)),
	}, nil
}

func envInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return def
	}
	return n
}

func envDuration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return def
	}
	return d
}
