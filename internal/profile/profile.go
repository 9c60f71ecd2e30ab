package profile

import (
	"fmt"
	"net/url"
	"slices"
	"strings"

	"github.com/pkg/errors"
)

// Profile is the configuration to start the main server.
type Profile struct {
	// Mode can be "prod" or "dev"
	Mode string
	// Addr is the binding address for the server
	Addr string
	// Port is the binding port for the server
	Port int
	// Driver is the database driver. Only "postgres" is supported; the
	// conversation store relies on the pgvector extension.
	Driver string
	// DSN points to the database connection string
	DSN string
	// Secret signs access and refresh tokens
	Secret string
	// Version is the current version of the server
	Version string
	// Origins lists the allowed CORS origins. Empty allows all.
	Origins []string

	// AccessTokenTTLMinutes is the lifetime of issued access tokens.
	AccessTokenTTLMinutes int
	// RefreshTokenTTLHours is the lifetime of issued refresh tokens.
	RefreshTokenTTLHours int

	// OpenAIAPIKey is the instance-level fallback key. Users normally bring
	// their own key via preferences; this one serves accounts without one.
	OpenAIAPIKey string
	// OpenAIBaseURL overrides the OpenAI endpoint (proxies, compatible APIs).
	OpenAIBaseURL string
	// DefaultModel is the chat model used when preferences leave it unset.
	DefaultModel string
	// EmbeddingModel generates the conversation embeddings.
	EmbeddingModel string
	// EmbeddingDimensions is the width of the stored vectors. Must match the
	// vector(n) column in the conversation table.
	EmbeddingDimensions int

	// RateLimitPerSecond throttles general API traffic per client address.
	RateLimitPerSecond float64
	// RateLimitBurst is the token bucket size for general API traffic.
	RateLimitBurst int
	// AuthRateLimitPerMinute throttles register/login attempts per client address.
	AuthRateLimitPerMinute float64
}

func (p *Profile) IsDev() bool {
	return p.Mode != "prod"
}

// Validate normalizes the profile and rejects configurations the server
// cannot start with.
func (p *Profile) Validate() error {
	if !slices.Contains([]string{"dev", "prod"}, p.Mode) {
		p.Mode = "dev"
	}

	if p.Driver == "" {
		p.Driver = "postgres"
	}
	if p.Driver != "postgres" {
		return errors.Errorf("unsupported database driver %q", p.Driver)
	}
	if p.DSN == "" {
		return errors.New("database DSN is required")
	}
	if _, err := url.Parse(p.DSN); err != nil && !strings.Contains(p.DSN, "=") {
		return errors.Wrap(err, "invalid database DSN")
	}

	if p.Secret == "" {
		if p.Mode == "prod" {
			return errors.New("token secret is required in prod mode")
		}
		p.Secret = "chatassist-dev-secret"
	}

	if p.Port <= 0 || p.Port > 65535 {
		return errors.Errorf("invalid port %d", p.Port)
	}

	if p.AccessTokenTTLMinutes <= 0 {
		p.AccessTokenTTLMinutes = 60 * 24
	}
	if p.RefreshTokenTTLHours <= 0 {
		p.RefreshTokenTTLHours = 24 * 30
	}

	if p.DefaultModel == "" {
		p.DefaultModel = "gpt-3.5-turbo"
	}
	if p.EmbeddingModel == "" {
		p.EmbeddingModel = "text-embedding-ada-002"
	}
	if p.EmbeddingDimensions <= 0 {
		p.EmbeddingDimensions = 1536
	}

	if p.RateLimitPerSecond <= 0 {
		p.RateLimitPerSecond = 10
	}
	if p.RateLimitBurst <= 0 {
		p.RateLimitBurst = 20
	}
	if p.AuthRateLimitPerMinute <= 0 {
		p.AuthRateLimitPerMinute = 10
	}

	return nil
}

// ListenAddr returns the address the HTTP server binds to.
func (p *Profile) ListenAddr() string {
	return fmt.Sprintf("%s:%d", p.Addr, p.Port)
}
