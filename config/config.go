package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Pipeline constants shared by every stage.
const (
	// ConcurrentRequests caps in-flight remote calls per stage.
	ConcurrentRequests = 10

	// ReportLimit is the "Top N" kept per label in the ranked output.
	ReportLimit = 10

	// MinAbstractLength is the minimum abstract length (chars) accepted by
	// the page-scrape length gate.
	MinAbstractLength = 200

	// DefaultLookbackDays bounds how old a feed entry may be.
	DefaultLookbackDays = 2
)

// Remote call timeouts. Identifier lookups are cheap and fail fast; page
// fetches and AI calls are given more room.
const (
	FeedTimeout   = 15 * time.Second
	LookupTimeout = 5 * time.Second
	ScrapeTimeout = 15 * time.Second
	AITimeout     = 60 * time.Second
)

// Config holds process-wide settings resolved once at startup and passed
// into the pipeline. Optional collaborators (Redis seen store, S3 mirror)
// stay disabled when their variables are unset.
type Config struct {
	DataDir      string
	ReportsDir   string
	LookbackDays int
	Concurrency  int

	AIAPIKey string
	AIModel  string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	SeenTTL       time.Duration

	S3Bucket string
	S3Prefix string
	S3Region string
}

// Load reads configuration from the environment, loading a .env file first
// if one is present (non-fatal if missing).
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		DataDir:       getEnvOrDefault("DATA_DIR", "data"),
		ReportsDir:    getEnvOrDefault("REPORTS_DIR", "reports"),
		LookbackDays:  DefaultLookbackDays,
		Concurrency:   ConcurrentRequests,
		AIAPIKey:      os.Getenv("AI_API_KEY"),
		AIModel:       getEnvOrDefault("AI_MODEL", "command-r-plus"),
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASS"),
		SeenTTL:       7 * 24 * time.Hour,
		S3Bucket:      os.Getenv("S3_BUCKET"),
		S3Prefix:      getEnvOrDefault("S3_PREFIX", "paperbot"),
		S3Region:      os.Getenv("S3_REGION"),
	}

	if v := os.Getenv("LOOKBACK_DAYS"); v != "" {
		days, err := strconv.Atoi(v)
		if err != nil || days <= 0 {
			return nil, fmt.Errorf("invalid LOOKBACK_DAYS %q", v)
		}
		cfg.LookbackDays = days
	}
	if v := os.Getenv("CONCURRENCY"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("invalid CONCURRENCY %q", v)
		}
		cfg.Concurrency = n
	}
	if v := os.Getenv("REDIS_DB"); v != "" {
		db, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid REDIS_DB %q", v)
		}
		cfg.RedisDB = db
	}
	if v := os.Getenv("SEEN_TTL_HOURS"); v != "" {
		hours, err := strconv.Atoi(v)
		if err != nil || hours <= 0 {
			return nil, fmt.Errorf("invalid SEEN_TTL_HOURS %q", v)
		}
		cfg.SeenTTL = time.Duration(hours) * time.Hour
	}

	return cfg, nil
}

func getEnvOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
