package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	NATS     NATSConfig     `yaml:"nats"`
	MinIO    MinIOConfig    `yaml:"minio"`
	Firebase FirebaseConfig `yaml:"firebase"`
	Analyzer AnalyzerConfig `yaml:"analyzer"`
	Vision   VisionConfig   `yaml:"vision"`
	Janitor  JanitorConfig  `yaml:"janitor"`
	Logging  LoggingConfig  `yaml:"logging"`
}

type ServerConfig struct {
	Port   int    `yaml:"port"`
	APIKey string `yaml:"api_key"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	MaxConns int    `yaml:"max_conns"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		d.User, d.Password, d.Host, d.Port, d.Name)
}

type NATSConfig struct {
	URL string `yaml:"url"`
}

type MinIOConfig struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Bucket    string `yaml:"bucket"`
	UseSSL    bool   `yaml:"use_ssl"`
}

type FirebaseConfig struct {
	// CredentialsFile points at a service account JSON file. When empty,
	// push notifications are disabled and a noop sender is used.
	CredentialsFile string `yaml:"credentials_file"`
}

type AnalyzerConfig struct {
	BatchSize     int           `yaml:"batch_size"`
	PollInterval  time.Duration `yaml:"poll_interval"`
	Tolerance     float64       `yaml:"tolerance"`
	WorkerTimeout time.Duration `yaml:"worker_timeout"`
}

type VisionConfig struct {
	ModelsDir          string  `yaml:"models_dir"`
	DetectionThreshold float64 `yaml:"detection_threshold"`
}

type JanitorConfig struct {
	SweepInterval time.Duration `yaml:"sweep_interval"`
	Retention     time.Duration `yaml:"retention"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads config from YAML file and applies environment variable overrides.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	applyEnvOverrides(cfg)
	setDefaults(cfg)

	return cfg, nil
}

func setDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.MaxConns == 0 {
		cfg.Database.MaxConns = 20
	}
	if cfg.Analyzer.BatchSize == 0 {
		cfg.Analyzer.BatchSize = 5
	}
	if cfg.Analyzer.PollInterval == 0 {
		cfg.Analyzer.PollInterval = 5 * time.Second
	}
	if cfg.Analyzer.Tolerance == 0 {
		cfg.Analyzer.Tolerance = 0.6
	}
	if cfg.Analyzer.WorkerTimeout == 0 {
		cfg.Analyzer.WorkerTimeout = 2 * time.Minute
	}
	if cfg.Vision.DetectionThreshold == 0 {
		cfg.Vision.DetectionThreshold = 0.5
	}
	if cfg.Janitor.SweepInterval == 0 {
		cfg.Janitor.SweepInterval = time.Hour
	}
	if cfg.Janitor.Retention == 0 {
		cfg.Janitor.Retention = 7 * 24 * time.Hour
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("WD_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("WD_API_KEY"); v != "" {
		cfg.Server.APIKey = v
	}
	if v := os.Getenv("WD_DB_HOST"); v != "" {
		cfg.Database.Host = v
	}
	if v := os.Getenv("WD_DB_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Database.Port = port
		}
	}
	if v := os.Getenv("WD_DB_NAME"); v != "" {
		cfg.Database.Name = v
	}
	if v := os.Getenv("WD_DB_USER"); v != "" {
		cfg.Database.User = v
	}
	if v := os.Getenv("WD_DB_PASSWORD"); v != "" {
		cfg.Database.Password = v
	}
	if v := os.Getenv("WD_NATS_URL"); v != "" {
		cfg.NATS.URL = v
	}
	if v := os.Getenv("WD_MINIO_ENDPOINT"); v != "" {
		cfg.MinIO.Endpoint = v
	}
	if v := os.Getenv("WD_MINIO_ACCESS_KEY"); v != "" {
		cfg.MinIO.AccessKey = v
	}
	if v := os.Getenv("WD_MINIO_SECRET_KEY"); v != "" {
		cfg.MinIO.SecretKey = v
	}
	if v := os.Getenv("WD_MINIO_BUCKET"); v != "" {
		cfg.MinIO.Bucket = v
	}
	if v := os.Getenv("WD_FIREBASE_CREDENTIALS"); v != "" {
		cfg.Firebase.CredentialsFile = v
	}
	if v := os.Getenv("WD_MODELS_DIR"); v != "" {
		cfg.Vision.ModelsDir = v
	}
	if v := os.Getenv("WD_BATCH_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Analyzer.BatchSize = n
		}
	}
	if v := os.Getenv("WD_POLL_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Analyzer.PollInterval = d
		}
	}
	if v := os.Getenv("WD_TOLERANCE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Analyzer.Tolerance = f
		}
	}
}
