package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

const defaultBucketPrefix = "thisisacatforsureyouknowit"

type HTTPConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type UploadConfig struct {
	MaxFileSize int64
}

type PipelineConfig struct {
	Mode              string
	ModerationTimeout time.Duration
	ClassifierTimeout time.Duration
	StoreTimeout      time.Duration
}

type ModelsConfig struct {
	Safety string
	Cat    string
}

type AWSConfig struct {
	Region    string
	AccessKey string
	SecretKey string
	Endpoint  string
}

type StorageConfig struct {
	Backend   string
	Bucket    string
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Region    string
}

type GuardrailConfig struct {
	Backend     string
	Name        string
	Version     string
	Description string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

type AppConfig struct {
	Environment      string
	HTTP             HTTPConfig
	Upload           UploadConfig
	Pipeline         PipelineConfig
	Models           ModelsConfig
	AWS              AWSConfig
	Storage          StorageConfig
	Guardrail        GuardrailConfig
	Redis            RedisConfig
	AllowCORSOrigins []string
}

func (c *AppConfig) IsProduction() bool {
	switch strings.ToLower(c.Environment) {
	case "prod", "production":
		return true
	}
	return false
}

func Load() (*AppConfig, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetEnvPrefix("CATVALIDATOR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := bindLegacyEnv(v); err != nil {
		return nil, err
	}

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("load config file: %w", err)
		}
	}

	return decode(v)
}

// bindLegacyEnv keeps the bare variable names the service has always read.
func bindLegacyEnv(v *viper.Viper) error {
	bindings := map[string][]string{
		"environment":        {"CATVALIDATOR_ENVIRONMENT", "ENVIRONMENT"},
		"storage.bucket":     {"CATVALIDATOR_STORAGE_BUCKET", "BUCKET_NAME"},
		"upload.maxfilesize": {"CATVALIDATOR_UPLOAD_MAXFILESIZE", "MAX_FILE_SIZE"},
		"aws.region":         {"CATVALIDATOR_AWS_REGION", "AWS_REGION"},
	}
	for key, envs := range bindings {
		if err := v.BindEnv(append([]string{key}, envs...)...); err != nil {
			return fmt.Errorf("bind env %s: %w", key, err)
		}
	}
	return nil
}

func decode(v *viper.Viper) (*AppConfig, error) {
	var cfg AppConfig
	if err := v.Unmarshal(&cfg, func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.Storage.Bucket == "" {
		cfg.Storage.Bucket = DefaultBucket(cfg.Environment)
	}
	if cfg.Storage.Region == "" {
		cfg.Storage.Region = cfg.AWS.Region
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// DefaultBucket derives the bucket name used when none is configured.
func DefaultBucket(environment string) string {
	return fmt.Sprintf("%s-%s", defaultBucketPrefix, environment)
}

func (c *AppConfig) Validate() error {
	var errs []error

	if c.Upload.MaxFileSize <= 0 {
		errs = append(errs, fmt.Errorf("upload.maxfilesize must be positive, got %d", c.Upload.MaxFileSize))
	}
	if !oneOf(c.Pipeline.Mode, "none", "probe", "guardrail") {
		errs = append(errs, fmt.Errorf("unknown pipeline.mode %q", c.Pipeline.Mode))
	}
	if !oneOf(c.Storage.Backend, "s3", "minio", "memory") {
		errs = append(errs, fmt.Errorf("unknown storage.backend %q", c.Storage.Backend))
	}
	if !oneOf(c.Guardrail.Backend, "bedrock", "redis", "memory") {
		errs = append(errs, fmt.Errorf("unknown guardrail.backend %q", c.Guardrail.Backend))
	}
	if c.Storage.Backend == "minio" && c.Storage.Endpoint == "" {
		errs = append(errs, errors.New("storage.endpoint is required for the minio backend"))
	}
	if c.Models.Cat == "" {
		errs = append(errs, errors.New("models.cat is required"))
	}
	if c.Pipeline.Mode == "probe" && c.Models.Safety == "" {
		errs = append(errs, errors.New("models.safety is required in probe mode"))
	}

	return errors.Join(errs...)
}

func oneOf(value string, allowed ...string) bool {
	for _, a := range allowed {
		if value == a {
			return true
		}
	}
	return false
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", "dev")

	v.SetDefault("http.host", "0.0.0.0")
	v.SetDefault("http.port", 8080)
	v.SetDefault("http.readtimeout", "30s")
	v.SetDefault("http.writetimeout", "90s")
	v.SetDefault("http.idletimeout", "60s")

	v.SetDefault("allowcorsorigins", "")

	v.SetDefault("upload.maxfilesize", 1048576) // 1MB

	v.SetDefault("pipeline.mode", "probe")
	v.SetDefault("pipeline.moderationtimeout", "10s")
	v.SetDefault("pipeline.classifiertimeout", "30s")
	v.SetDefault("pipeline.storetimeout", "30s")

	v.SetDefault("models.safety", "anthropic.claude-3-5-sonnet-20240620-v1:0")
	v.SetDefault("models.cat", "amazon.nova-lite-v1:0")

	v.SetDefault("aws.region", "us-east-1")
	v.SetDefault("aws.accesskey", "")
	v.SetDefault("aws.secretkey", "")
	v.SetDefault("aws.endpoint", "")

	v.SetDefault("storage.backend", "s3")
	v.SetDefault("storage.bucket", "")
	v.SetDefault("storage.endpoint", "")
	v.SetDefault("storage.accesskey", "")
	v.SetDefault("storage.secretkey", "")
	v.SetDefault("storage.usessl", false)
	v.SetDefault("storage.region", "")

	v.SetDefault("guardrail.backend", "bedrock")
	v.SetDefault("guardrail.name", "cat-validator-guardrail")
	v.SetDefault("guardrail.version", "DRAFT")
	v.SetDefault("guardrail.description", "Content filter for cat image validator")

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.prefix", "catvalidator")
}
