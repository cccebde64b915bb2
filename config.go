package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"lg/plate-nutrition-api/fdc"
	"lg/plate-nutrition-api/nutrition"
	"lg/plate-nutrition-api/openai"
)

// config is everything the server reads from the environment.
type config struct {
	Port                string
	DBURL               string
	OpenAIKey           string
	OpenAIBaseURL       string
	OpenAIModel         string
	OpenAIVisionModel   string
	FDCKey              string
	FDCBaseURL          string
	EstimateTimeout     time.Duration
	EstimateConcurrency int
}

// loadConfig reads .env (when present) and then the process environment.
func loadConfig() (config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return config{}, fmt.Errorf("load .env: %w", err)
	}

	cfg := config{
		Port:              envOr("PORT", "3000"),
		DBURL:             os.Getenv("DB_URL"),
		OpenAIKey:         os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL:     envOr("OPENAI_BASE_URL", openai.DefaultBaseURL),
		OpenAIModel:       envOr("OPENAI_MODEL", openai.DefaultModel),
		OpenAIVisionModel: envOr("OPENAI_VISION_MODEL", openai.DefaultVisionModel),
		FDCKey:            envOr("FDC_API_KEY", fdc.DefaultAPIKey),
		FDCBaseURL:        envOr("FDC_BASE_URL", fdc.DefaultBaseURL),
	}

	timeout, err := time.ParseDuration(envOr("ESTIMATE_TIMEOUT", nutrition.DefaultCallTimeout.String()))
	if err != nil {
		return config{}, fmt.Errorf("ESTIMATE_TIMEOUT: %w", err)
	}
	if timeout < nutrition.MinCallTimeout {
		log.Printf("[loadConfig] ESTIMATE_TIMEOUT %s below minimum, using %s", timeout, nutrition.MinCallTimeout)
		timeout = nutrition.MinCallTimeout
	}
	cfg.EstimateTimeout = timeout

	concurrency, err := strconv.Atoi(envOr("ESTIMATE_CONCURRENCY", strconv.Itoa(nutrition.DefaultConcurrency)))
	if err != nil || concurrency <= 0 {
		return config{}, fmt.Errorf("ESTIMATE_CONCURRENCY must be a positive integer")
	}
	cfg.EstimateConcurrency = concurrency

	if cfg.DBURL == "" {
		return config{}, errors.New("DB_URL not set")
	}
	if cfg.OpenAIKey == "" {
		log.Printf("[loadConfig] OPENAI_API_KEY not set; image analysis and model estimates will fail")
	}
	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// estimator builds the nutrition estimator over the FDC and OpenAI clients.
func (cfg config) estimator(llm *openai.Client) *nutrition.Estimator {
	lookup := fdc.NewClient(fdc.Config{APIKey: cfg.FDCKey, BaseURL: cfg.FDCBaseURL})
	return nutrition.NewEstimator(lookup, llm, nutrition.EstimatorConfig{
		CallTimeout: cfg.EstimateTimeout,
		Concurrency: cfg.EstimateConcurrency,
	})
}

func (cfg config) openAIClient() *openai.Client {
	return openai.NewClient(openai.Config{
		APIKey:      cfg.OpenAIKey,
		BaseURL:     cfg.OpenAIBaseURL,
		Model:       cfg.OpenAIModel,
		VisionModel: cfg.OpenAIVisionModel,
	})
}
