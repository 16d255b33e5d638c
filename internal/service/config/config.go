package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	DeployTargetSimulated   = "simulated"
	DeployTargetFHIR        = "fhir"
	DeployTargetObjectStore = "object-store"
)

const defaultSynthEndpoints = "/process,/convert,/text-to-fhir,/api/process,/api/convert"

type Config struct {
	HTTPPort  string
	APIKey    string
	LogLevel  string
	LogFormat string

	Synth  SynthConfig
	Deploy DeployConfig
	Minio  MinioConfig
	Redis  RedisConfig

	// TerminologyFile optionally lists extra recognised code systems.
	TerminologyFile string
}

type SynthConfig struct {
	// BaseURL of the remote synthesis service. Empty means offline: every
	// synthesis uses the local skeleton.
	BaseURL   string
	Endpoints []string
	Language  string
	// Timeout bounds each candidate request.
	Timeout time.Duration
}

type DeployConfig struct {
	Target         string
	FHIRBaseURL    string
	FHIRToken      string
	Timeout        time.Duration
	SimulatedDelay time.Duration
	LedgerTTL      time.Duration
}

type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

type RedisConfig struct {
	// Addr empty means the deployment ledger is kept in process.
	Addr     string
	Password string
	DB       int
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("API_KEY", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("SYNTH_BASE_URL", "")
	v.SetDefault("SYNTH_ENDPOINTS", defaultSynthEndpoints)
	v.SetDefault("SYNTH_LANGUAGE", "da")
	v.SetDefault("SYNTH_TIMEOUT", "10s")

	v.SetDefault("DEPLOY_TARGET", DeployTargetSimulated)
	v.SetDefault("DEPLOY_FHIR_BASE_URL", "")
	v.SetDefault("DEPLOY_FHIR_TOKEN", "")
	v.SetDefault("DEPLOY_TIMEOUT", "30s")
	v.SetDefault("DEPLOY_SIMULATED_DELAY", "2s")
	v.SetDefault("DEPLOY_LEDGER_TTL", "24h")

	v.SetDefault("MINIO_ENDPOINT", "")
	v.SetDefault("MINIO_ACCESS_KEY", "")
	v.SetDefault("MINIO_SECRET_KEY", "")
	v.SetDefault("MINIO_BUCKET", "fhir-bundles")
	v.SetDefault("MINIO_USE_SSL", false)

	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("TERMINOLOGY_FILE", "")
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	v := viper.New()
	setDefaults(v)
	cfg, err := fromViper(v)
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load reads defaults, then CONFIG_FILE (or ./.env when present), then the
// environment, which wins.
func Load() (Config, error) {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if file := v.GetString("CONFIG_FILE"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config file %s: %w", file, err)
		}
	} else {
		v.SetConfigName(".env")
		v.SetConfigType("env")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("read .env: %w", err)
			}
		}
	}

	cfg, err := fromViper(v)
	if err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func fromViper(v *viper.Viper) (Config, error) {
	cfg := Config{
		HTTPPort:  v.GetString("PORT"),
		APIKey:    v.GetString("API_KEY"),
		LogLevel:  v.GetString("LOG_LEVEL"),
		LogFormat: v.GetString("LOG_FORMAT"),
		Synth: SynthConfig{
			BaseURL:   strings.TrimRight(v.GetString("SYNTH_BASE_URL"), "/"),
			Endpoints: splitList(v.GetString("SYNTH_ENDPOINTS")),
			Language:  v.GetString("SYNTH_LANGUAGE"),
		},
		Deploy: DeployConfig{
			Target:      strings.ToLower(v.GetString("DEPLOY_TARGET")),
			FHIRBaseURL: v.GetString("DEPLOY_FHIR_BASE_URL"),
			FHIRToken:   v.GetString("DEPLOY_FHIR_TOKEN"),
		},
		Minio: MinioConfig{
			Endpoint:  v.GetString("MINIO_ENDPOINT"),
			AccessKey: v.GetString("MINIO_ACCESS_KEY"),
			SecretKey: v.GetString("MINIO_SECRET_KEY"),
			Bucket:    v.GetString("MINIO_BUCKET"),
			UseSSL:    v.GetBool("MINIO_USE_SSL"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("REDIS_ADDR"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		TerminologyFile: v.GetString("TERMINOLOGY_FILE"),
	}

	durations := []struct {
		key string
		dst *time.Duration
	}{
		{"SYNTH_TIMEOUT", &cfg.Synth.Timeout},
		{"DEPLOY_TIMEOUT", &cfg.Deploy.Timeout},
		{"DEPLOY_SIMULATED_DELAY", &cfg.Deploy.SimulatedDelay},
		{"DEPLOY_LEDGER_TTL", &cfg.Deploy.LedgerTTL},
	}
	for _, d := range durations {
		parsed, err := time.ParseDuration(v.GetString(d.key))
		if err != nil {
			return Config{}, fmt.Errorf("%s: %w", d.key, err)
		}
		if parsed < 0 {
			return Config{}, fmt.Errorf("%s: must not be negative", d.key)
		}
		*d.dst = parsed
	}

	return cfg, nil
}

func (c Config) Validate() error {
	if c.HTTPPort == "" {
		return errors.New("PORT must be set")
	}
	if c.Synth.Timeout == 0 {
		return errors.New("SYNTH_TIMEOUT must be positive")
	}
	switch c.Deploy.Target {
	case DeployTargetSimulated:
	case DeployTargetFHIR:
		if c.Deploy.FHIRBaseURL == "" {
			return errors.New("DEPLOY_FHIR_BASE_URL is required for the fhir deploy target")
		}
	case DeployTargetObjectStore:
		if c.Minio.Endpoint == "" || c.Minio.Bucket == "" {
			return errors.New("MINIO_ENDPOINT and MINIO_BUCKET are required for the object-store deploy target")
		}
	default:
		return fmt.Errorf("unknown DEPLOY_TARGET %q", c.Deploy.Target)
	}
	return nil
}

// RequestTimeout bounds one HTTP request: long enough for every synthesis
// candidate to time out in turn, or for one deployment.
func (c Config) RequestTimeout() time.Duration {
	synth := c.Synth.Timeout * time.Duration(len(c.Synth.Endpoints))
	longest := max(synth, c.Deploy.Timeout+c.Deploy.SimulatedDelay)
	return max(longest+5*time.Second, 60*time.Second)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
