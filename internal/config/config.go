package config

import (
	"os"
	"strconv"
	"time"
)

// Config carries all environment-driven settings.
type Config struct {
	Port        int
	DatabaseURL string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Bearer tokens come from an external identity provider. When JWKSURL is
	// set, tokens are verified against the provider's JWKS; otherwise the
	// HS256 dev secret is used.
	JWKSURL   string
	JWTSecret string

	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioUseSSL    bool
	MinioBucket    string

	PaystackSecret string

	// Pricing: flat shipping fee in minor units and tax rate in basis points
	// (1600 = 16%). Integer arithmetic end to end.
	ShippingFlatFee int64
	TaxRateBasisPts int64

	// Upper bound on the order-intake atomic unit; on expiry the transaction
	// is rolled back and the caller may retry.
	OrderWriteTimeout time.Duration
}

// Load reads configuration from the environment with development defaults.
func Load() Config {
	return Config{
		Port:        getenvInt("PORT", 8080),
		DatabaseURL: getenv("DATABASE_URL", ""),

		RedisAddr:     getenv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getenv("REDIS_PASSWORD", ""),
		RedisDB:       getenvInt("REDIS_DB", 0),

		JWKSURL:   getenv("IDP_JWKS_URL", ""),
		JWTSecret: getenv("JWT_SECRET", ""),

		MinioEndpoint:  getenv("MINIO_ENDPOINT", "localhost:9000"),
		MinioAccessKey: getenv("MINIO_ACCESS_KEY", "minioadmin"),
		MinioSecretKey: getenv("MINIO_SECRET_KEY", "minioadmin"),
		MinioUseSSL:    getenv("MINIO_USE_SSL", "") == "true",
		MinioBucket:    getenv("MINIO_BUCKET", "devboma-media"),

		PaystackSecret: getenv("PAYSTACK_SECRET_KEY", "demo-secret"),

		ShippingFlatFee:   getenvInt64("SHIPPING_FLAT_FEE", 500),
		TaxRateBasisPts:   getenvInt64("TAX_RATE_BASIS_POINTS", 1600),
		OrderWriteTimeout: getenvDuration("ORDER_WRITE_TIMEOUT", 10*time.Second),
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getenvInt(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getenvInt64(k string, def int64) int64 {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return def
}

func getenvDuration(k string, def time.Duration) time.Duration {
	if v := os.Getenv(k); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
