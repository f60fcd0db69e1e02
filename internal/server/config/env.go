package config

import (
	"errors"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/cuxvas/peliculas/internal/flagx"
	"github.com/joho/godotenv"
)

// EnvPrefix prefixes every environment variable read by parseEnv.
const EnvPrefix = "PELICULAS_"

// parseEnv overlays values from environment variables.
//
// A dotenv file is loaded first: the one given with -env-file, or ./.env
// when present. Variables already set in the process environment win over
// the file. A missing explicit file or a malformed one panics, like an
// unreadable JSON config.
//
// Recognised variables (all prefixed with PELICULAS_):
//
//	HTTP_ADDR, GRPC_ADDR, DATABASE_DSN, SECRET_KEY, ISSUER, AUDIENCE,
//	TOKEN_LIFETIME, REFRESH_THRESHOLD, RENEWED_TOKEN_HEADER,
//	ALLOWED_ORIGINS (comma separated), REDIS_ADDR, REDIS_PASSWORD,
//	PRINCIPAL_CACHE_TTL, SEED_PASSWORD, LOG_LEVEL,
//	S3_ROOT_USER, S3_ROOT_PASSWORD, S3_BUCKET, S3_REGION, S3_BASE_ENDPOINT
//
// Durations use Go syntax ("1h", "15m").
func parseEnv(config *Config) {
	loadEnvFile(flagx.EnvFileFlags())

	setString(&config.EndpointAddrHTTP, "HTTP_ADDR")
	setString(&config.EndpointAddrGRPC, "GRPC_ADDR")
	setString(&config.DatabaseDSN, "DATABASE_DSN")
	setString(&config.SecretKey, "SECRET_KEY")
	setString(&config.Issuer, "ISSUER")
	setString(&config.Audience, "AUDIENCE")
	setDuration(&config.AccessTokenValidityDuration, "TOKEN_LIFETIME")
	setDuration(&config.RefreshThreshold, "REFRESH_THRESHOLD")
	setString(&config.RenewedTokenHeader, "RENEWED_TOKEN_HEADER")
	if v := getEnv("ALLOWED_ORIGINS"); v != "" {
		config.AllowedOrigins = splitList(v)
	}
	setString(&config.RedisAddr, "REDIS_ADDR")
	setString(&config.RedisPassword, "REDIS_PASSWORD")
	setDuration(&config.PrincipalCacheTTL, "PRINCIPAL_CACHE_TTL")
	setString(&config.SeedPassword, "SEED_PASSWORD")
	setString(&config.LogLevel, "LOG_LEVEL")
	setString(&config.S3RootUser, "S3_ROOT_USER")
	setString(&config.S3RootPassword, "S3_ROOT_PASSWORD")
	setString(&config.S3Bucket, "S3_BUCKET")
	setString(&config.S3Region, "S3_REGION")
	setString(&config.S3BaseEndpoint, "S3_BASE_ENDPOINT")
}

func loadEnvFile(path string) {
	if path == "" {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			panic(err)
		}
		return
	}
	if err := godotenv.Load(path); err != nil {
		panic(err)
	}
}

func getEnv(key string) string {
	return strings.TrimSpace(os.Getenv(EnvPrefix + key))
}

func setString(dst *string, key string) {
	if v := getEnv(key); v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, key string) {
	v := getEnv(key)
	if v == "" {
		return
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		panic(err)
	}
	*dst = d
}

func splitList(v string) []string {
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
