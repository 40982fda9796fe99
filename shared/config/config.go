package config

import (
	"fmt"
	"os"
	"path"
	"time"

	"gopkg.in/yaml.v2"
)

type Config struct {
	Public  Public
	Private Private
}

type Public struct {
	LogLevel      string `yaml:"log_level"`
	LogJSON       bool   `yaml:"log_json"`
	SecureCookies bool   `yaml:"secure_cookies"`

	APIAddr      string `yaml:"api_addr"`
	WebAddr      string `yaml:"web_addr"`
	WebOrigin    string `yaml:"web_origin"`     // browser-facing origin of the web process, for CORS
	APIBaseURL   string `yaml:"api_base_url"`   // where the frontend reaches the backend
	MediaBaseURL string `yaml:"media_base_url"` // public prefix for filesystem-stored media

	JwtTTL time.Duration `yaml:"jwt_ttl"`

	BuildingsPerPage  int `yaml:"buildings_per_page"`
	WorkOrdersPerPage int `yaml:"work_orders_per_page"`
	DeadlineSoonDays  int `yaml:"deadline_soon_days"` // window for deadline notifications

	Attachments Attachments `yaml:"attachments"`
	Storage     Storage     `yaml:"storage"`
}

// Attachments is the validation-gate policy for work order uploads.
// MaxSizeBytes caps one file; MaxRequestBytes caps the whole multipart
// request so a single batch cannot exhaust the server.
type Attachments struct {
	MaxSizeBytes    int64    `yaml:"max_size_bytes"`
	MaxRequestBytes int64    `yaml:"max_request_bytes"`
	AllowedTypes    []string `yaml:"allowed_types"`
	AllowedPrefixes []string `yaml:"allowed_prefixes"`
}

// Storage selects and parameterizes the object storage backend.
// Credentials for s3 live in Private.
type Storage struct {
	Backend string `yaml:"backend"` // "fs" or "s3"
	FSRoot  string `yaml:"fs_root"`

	S3Endpoint string `yaml:"s3_endpoint"`
	S3Region   string `yaml:"s3_region"`
	S3Bucket   string `yaml:"s3_bucket"`
}

type Private struct {
	Pg          Pg     `yaml:"pg"`
	JwtKey      string `yaml:"jwt_key"`
	S3AccessKey string `yaml:"s3_access_key"`
	S3SecretKey string `yaml:"s3_secret_key"`
}

type Pg struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Dbname   string `yaml:"dbname"`
}

func (p Pg) ConnString() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		p.Host, p.Port, p.User, p.Password, p.Dbname)
}

func (c *Config) JwtKey() string {
	return c.Private.JwtKey
}

func (c *Config) JwtTTL() time.Duration {
	return c.Public.JwtTTL
}

func mustLoadPath(configPath string, output interface{}) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		panic("config file does not exist: " + configPath)
	}
	configFile, err := os.ReadFile(configPath)
	if err != nil {
		panic("can't read config file: " + configPath)
	}
	if err := yaml.Unmarshal(configFile, output); err != nil {
		panic("can't unmarshal config file: " + configPath)
	}
}

// MustLoad reads public.yaml and private.yaml from configFolder,
// applies defaults and panics on any problem. Call once at startup.
func MustLoad(configFolder string) *Config {
	var public Public
	mustLoadPath(path.Join(configFolder, "public.yaml"), &public)

	var private Private
	mustLoadPath(path.Join(configFolder, "private.yaml"), &private)

	cfg := &Config{public, private}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		panic(err.Error())
	}
	return cfg
}

func (c *Config) applyDefaults() {
	p := &c.Public
	if p.LogLevel == "" {
		p.LogLevel = "info"
	}
	if p.WebOrigin == "" {
		p.WebOrigin = "http://localhost:8081"
	}
	if p.JwtTTL == 0 {
		p.JwtTTL = 24 * time.Hour
	}
	if p.BuildingsPerPage == 0 {
		p.BuildingsPerPage = 20
	}
	if p.WorkOrdersPerPage == 0 {
		p.WorkOrdersPerPage = 10
	}
	if p.DeadlineSoonDays == 0 {
		p.DeadlineSoonDays = 7
	}
	if p.Attachments.MaxSizeBytes == 0 {
		p.Attachments.MaxSizeBytes = 10 << 20
	}
	if p.Attachments.MaxRequestBytes == 0 {
		p.Attachments.MaxRequestBytes = 20*p.Attachments.MaxSizeBytes + 1<<20
	}
	if len(p.Attachments.AllowedTypes) == 0 {
		p.Attachments.AllowedTypes = []string{
			"application/pdf",
			"application/msword",
			"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
			"application/vnd.ms-excel",
			"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
			"application/vnd.ms-powerpoint",
			"application/vnd.openxmlformats-officedocument.presentationml.presentation",
			"text/csv",
			"application/zip",
			"application/x-zip-compressed",
			"application/x-7z-compressed",
			"application/x-tar",
			"application/gzip",
		}
	}
	if len(p.Attachments.AllowedPrefixes) == 0 {
		p.Attachments.AllowedPrefixes = []string{"image/", "application/zip", "application/x-7z", "application/x-gzip"}
	}
	if p.Storage.Backend == "" {
		p.Storage.Backend = "fs"
	}
	if p.Storage.FSRoot == "" {
		p.Storage.FSRoot = "media"
	}
}

func (c *Config) validate() error {
	if c.Public.Attachments.MaxSizeBytes <= 0 {
		return fmt.Errorf("attachments.max_size_bytes must be positive, got %d", c.Public.Attachments.MaxSizeBytes)
	}
	switch c.Public.Storage.Backend {
	case "fs", "s3":
	default:
		return fmt.Errorf("storage.backend must be fs or s3, got %q", c.Public.Storage.Backend)
	}
	if c.Public.Storage.Backend == "s3" && c.Public.Storage.S3Bucket == "" {
		return fmt.Errorf("storage.s3_bucket is required for the s3 backend")
	}
	return nil
}
