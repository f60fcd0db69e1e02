package config

import (
	"encoding/json"
	"os"

	"github.com/cuxvas/peliculas/internal/flagx"
	"github.com/cuxvas/peliculas/internal/timex"
)

// JsonConfig is the on-disk shape of the optional JSON configuration file.
// Durations accept both "15m" strings and integer nanoseconds.
type JsonConfig struct {
	EndpointAddrHTTP            string         `json:"endpoint_addr_http"`
	EndpointAddrGRPC            string         `json:"endpoint_addr_grpc"`
	DatabaseDSN                 string         `json:"database_dsn"`
	SecretKey                   string         `json:"secret_key"`
	Issuer                      string         `json:"issuer"`
	Audience                    string         `json:"audience"`
	AccessTokenValidityDuration timex.Duration `json:"access_token_validity_duration"`
	RefreshThreshold            timex.Duration `json:"refresh_threshold"`
	RenewedTokenHeader          string         `json:"renewed_token_header"`
	AllowedOrigins              []string       `json:"allowed_origins"`
	RedisAddr                   string         `json:"redis_addr"`
	RedisPassword               string         `json:"redis_password"`
	PrincipalCacheTTL           timex.Duration `json:"principal_cache_ttl"`
	SeedPassword                string         `json:"seed_password"`
	LogLevel                    string         `json:"log_level"`
	S3RootUser                  string         `json:"s3_root_user"`
	S3RootPassword              string         `json:"s3_root_password"`
	S3Bucket                    string         `json:"s3_bucket"`
	S3Region                    string         `json:"s3_region"`
	S3BaseEndpoint              string         `json:"s3_base_endpoint"`
}

// parseJson loads the file named by -c/-config, if any, and copies every
// field that is present (non-zero) into config. An unreadable file or
// invalid JSON panics.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	overlay(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	overlay(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	overlay(&config.DatabaseDSN, c.DatabaseDSN)
	overlay(&config.SecretKey, c.SecretKey)
	overlay(&config.Issuer, c.Issuer)
	overlay(&config.Audience, c.Audience)
	overlay(&config.AccessTokenValidityDuration, c.AccessTokenValidityDuration.Duration)
	overlay(&config.RefreshThreshold, c.RefreshThreshold.Duration)
	overlay(&config.RenewedTokenHeader, c.RenewedTokenHeader)
	if len(c.AllowedOrigins) > 0 {
		config.AllowedOrigins = c.AllowedOrigins
	}
	overlay(&config.RedisAddr, c.RedisAddr)
	overlay(&config.RedisPassword, c.RedisPassword)
	overlay(&config.PrincipalCacheTTL, c.PrincipalCacheTTL.Duration)
	overlay(&config.SeedPassword, c.SeedPassword)
	overlay(&config.LogLevel, c.LogLevel)
	overlay(&config.S3RootUser, c.S3RootUser)
	overlay(&config.S3RootPassword, c.S3RootPassword)
	overlay(&config.S3Bucket, c.S3Bucket)
	overlay(&config.S3Region, c.S3Region)
	overlay(&config.S3BaseEndpoint, c.S3BaseEndpoint)
}

func overlay[T comparable](dst *T, v T) {
	var zero T
	if v != zero {
		*dst = v
	}
}
