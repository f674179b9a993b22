package profile

import (
	"os"
	"strconv"

	"github.com/pkg/errors"
)

// Profile is configuration to start the main server.
type Profile struct {
	// Server
	Mode    string // "prod", "dev" or "demo"
	Addr    string
	Port    int
	Driver  string // "postgres" or "sqlite"
	DSN     string
	Secret  string // HS256 secret for bearer tokens
	Version string

	// Recommendation tuning. These evolved across deployments and are kept
	// configurable rather than baked in.
	EmbeddingDim                  int     // dimension of every stored embedding
	MaxContentAgeDays             int     // content older than this is never recommended
	AgePenaltyFactor              float64 // distance penalty per hour of content age
	AdjustFactor                  float64 // EMA weight applied by feedback updates
	NumRecommendations            int     // feed page size
	SampleCount                   int     // onboarding sample size
	MinSearchCosineSimilarity     float64 // candidate retrieval similarity floor
	MaxOnboardingCosineSimilarity float64 // onboarding diversity ceiling

	// Nickname generation (OpenAI-compatible, optional)
	LLMBaseURL string
	LLMAPIKey  string
	LLMModel   string
}

func (p *Profile) IsDev() bool {
	return p.Mode != "prod"
}

// IsLLMEnabled returns true if a nickname-generation LLM is configured.
func (p *Profile) IsLLMEnabled() bool {
	return p.LLMAPIKey != ""
}

// getEnvOrDefault returns environment variable value or default value.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvOrDefaultInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvOrDefaultFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

// FromEnv loads configuration from environment variables.
func (p *Profile) FromEnv() {
	p.Secret = getEnvOrDefault("GOURMET_SECRET", p.Secret)

	p.EmbeddingDim = getEnvOrDefaultInt("GOURMET_EMBEDDING_DIM", 1024)
	p.MaxContentAgeDays = getEnvOrDefaultInt("GOURMET_MAX_CONTENT_AGE_DAYS", 7)
	p.AgePenaltyFactor = getEnvOrDefaultFloat("GOURMET_AGE_PENALTY_FACTOR", 6e-3)
	p.AdjustFactor = getEnvOrDefaultFloat("GOURMET_ADJUST_FACTOR", 0.1)
	p.NumRecommendations = getEnvOrDefaultInt("GOURMET_NUM_RECOMMENDATIONS", 12)
	p.SampleCount = getEnvOrDefaultInt("GOURMET_SAMPLE_COUNT", 12)
	p.MinSearchCosineSimilarity = getEnvOrDefaultFloat("GOURMET_MIN_SEARCH_COSINE_SIMILARITY", 0.3)
	p.MaxOnboardingCosineSimilarity = getEnvOrDefaultFloat("GOURMET_MAX_ONBOARDING_COSINE_SIMILARITY", 0.15)

	p.LLMBaseURL = getEnvOrDefault("GOURMET_LLM_BASE_URL", "")
	p.LLMAPIKey = getEnvOrDefault("GOURMET_LLM_API_KEY", "")
	p.LLMModel = getEnvOrDefault("GOURMET_LLM_MODEL", "")
}

// Validate checks the profile for startup-fatal misconfiguration.
func (p *Profile) Validate() error {
	if p.Mode != "demo" && p.Mode != "dev" && p.Mode != "prod" {
		p.Mode = "demo"
	}

	if p.Driver != "postgres" && p.Driver != "sqlite" {
		return errors.Errorf("unsupported database driver %q", p.Driver)
	}
	if p.DSN == "" {
		return errors.New("dsn required")
	}
	if p.Mode == "prod" && p.Secret == "" {
		return errors.New("secret required in prod mode")
	}

	if p.EmbeddingDim <= 0 {
		return errors.Errorf("invalid embedding dimension %d", p.EmbeddingDim)
	}
	if p.MaxContentAgeDays <= 0 {
		return errors.Errorf("invalid max content age %d", p.MaxContentAgeDays)
	}
	if p.AgePenaltyFactor < 0 {
		return errors.Errorf("age penalty factor cannot be negative: %f", p.AgePenaltyFactor)
	}
	if p.AdjustFactor <= 0 || p.AdjustFactor >= 1 {
		return errors.Errorf("adjust factor must be in (0, 1): %f", p.AdjustFactor)
	}
	if p.NumRecommendations <= 0 {
		return errors.Errorf("invalid recommendation count %d", p.NumRecommendations)
	}
	if p.SampleCount <= 0 {
		return errors.Errorf("invalid onboarding sample count %d", p.SampleCount)
	}
	if p.MinSearchCosineSimilarity < -1 || p.MinSearchCosineSimilarity > 1 {
		return errors.Errorf("min search cosine similarity out of range: %f", p.MinSearchCosineSimilarity)
	}
	if p.MaxOnboardingCosineSimilarity < -1 || p.MaxOnboardingCosineSimilarity > 1 {
		return errors.Errorf("max onboarding cosine similarity out of range: %f", p.MaxOnboardingCosineSimilarity)
	}

	return nil
}
