package config

import (
	"os"
	"strconv"
	"strings"
)

// CloudConfig is the cloud service's configuration, loaded from
// INKSIGHT_-prefixed environment variables.
type CloudConfig struct {
	APIKeys           string
	CORSOrigins       string
	StorageDir        string
	MaxFileSizeMB     int
	QueueWorkers      int
	JobTimeoutSeconds int
	LogLevel          string
	Host              string
	Port              int
}

// DefaultCloudConfig returns the service's built-in defaults.
func DefaultCloudConfig() CloudConfig {
	return CloudConfig{
		APIKeys:           "",
		CORSOrigins:       "*",
		StorageDir:        "/tmp/inksight",
		MaxFileSizeMB:     50,
		QueueWorkers:      2,
		JobTimeoutSeconds: 300,
		LogLevel:          "INFO",
		Host:              "0.0.0.0",
		Port:              8000,
	}
}

// LoadCloudConfig overlays environment variables onto the defaults.
// INKSIGHT_ prefixed variables match the field they override; an unset
// or empty variable leaves the default untouched.
func LoadCloudConfig() CloudConfig {
	cfg := DefaultCloudConfig()

	if v := os.Getenv("INKSIGHT_API_KEYS"); v != "" {
		cfg.APIKeys = v
	}
	if v := os.Getenv("INKSIGHT_CORS_ORIGINS"); v != "" {
		cfg.CORSOrigins = v
	}
	if v := os.Getenv("INKSIGHT_STORAGE_DIR"); v != "" {
		cfg.StorageDir = v
	}
	if v := os.Getenv("INKSIGHT_MAX_FILE_SIZE_MB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MaxFileSizeMB = n
		}
	}
	if v := os.Getenv("INKSIGHT_QUEUE_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.QueueWorkers = n
		}
	}
	if v := os.Getenv("INKSIGHT_JOB_TIMEOUT_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.JobTimeoutSeconds = n
		}
	}
	if v := os.Getenv("INKSIGHT_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("INKSIGHT_HOST"); v != "" {
		cfg.Host = v
	}
	if v := os.Getenv("INKSIGHT_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Port = n
		}
	}

	return cfg
}

// ValidAPIKeys parses the comma-separated api keys into a set.
func (c CloudConfig) ValidAPIKeys() map[string]struct{} {
	keys := make(map[string]struct{})
	if c.APIKeys == "" {
		return keys
	}
	for _, k := range strings.Split(c.APIKeys, ",") {
		if k = strings.TrimSpace(k); k != "" {
			keys[k] = struct{}{}
		}
	}
	return keys
}

// CORSOriginList parses the CORS origins into a slice, special-casing
// "*" as a single-element wildcard list.
func (c CloudConfig) CORSOriginList() []string {
	if c.CORSOrigins == "*" {
		return []string{"*"}
	}
	var out []string
	for _, o := range strings.Split(c.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}
