package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// Config holds application configuration
type Config struct {
	ServerPort      string        `yaml:"port"            envconfig:"PORT"`
	StaticFilesPath string        `yaml:"staticPath"      envconfig:"STATIC_PATH"`
	Debug           bool          `yaml:"debug"           envconfig:"DEBUG"`
	SessionDuration time.Duration `yaml:"sessionDuration" envconfig:"SESSION_DURATION"`
	AuthTimeout     time.Duration `yaml:"authTimeout"     envconfig:"AUTH_TIMEOUT"`

	DatabaseType string `yaml:"databaseType" envconfig:"DATABASE_TYPE"`
	DatabasePath string `yaml:"databasePath" envconfig:"DB_PATH"`
	DatabaseURL  string `yaml:"databaseUrl"  envconfig:"DATABASE_URL"`

	// RosterPath replaces the embedded base roster when set
	RosterPath  string   `yaml:"rosterPath"  envconfig:"ROSTER_PATH"`
	AdminEmails []string `yaml:"adminEmails" envconfig:"ADMIN_EMAILS"`

	VAPIDPublicKey  string        `yaml:"vapidPublicKey"  envconfig:"VAPID_PUBLIC_KEY"`
	VAPIDPrivateKey string        `yaml:"vapidPrivateKey" envconfig:"VAPID_PRIVATE_KEY"`
	VAPIDSubject    string        `yaml:"vapidSubject"    envconfig:"VAPID_SUBJECT"`
	PushTTL         time.Duration `yaml:"pushTtl"         envconfig:"PUSH_TTL"`

	AWSRegion    string `yaml:"awsRegion"    envconfig:"AWS_REGION"`
	SESFromEmail string `yaml:"sesFromEmail" envconfig:"SES_FROM_EMAIL"`
	SESFromName  string `yaml:"sesFromName"  envconfig:"SES_FROM_NAME"`
	AppBaseURL   string `yaml:"appBaseUrl"   envconfig:"APP_BASE_URL"`

	GoogleClientID       string `yaml:"googleClientId"       envconfig:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret   string `yaml:"googleClientSecret"   envconfig:"GOOGLE_CLIENT_SECRET"`
	OAuthRedirectBaseURL string `yaml:"oauthRedirectBaseUrl" envconfig:"OAUTH_REDIRECT_BASE_URL"`

	CSRFSecret      string        `yaml:"csrfSecret"      envconfig:"CSRF_SECRET"`
	LoginRateLimit  int           `yaml:"loginRateLimit"  envconfig:"LOGIN_RATE_LIMIT"`
	LoginRateWindow time.Duration `yaml:"loginRateWindow" envconfig:"LOGIN_RATE_WINDOW"`
}

// EnvPrefix is prepended to every environment variable name
const EnvPrefix = "REPORTHUB"

var globalConfig = &Config{
	ServerPort:      "8080",
	StaticFilesPath: "./web/dist",
	SessionDuration: 24 * time.Hour,
	AuthTimeout:     7 * time.Second,
	DatabaseType:    "sqlite",
	DatabasePath:    "./reporthub.db",
	VAPIDSubject:    "mailto:admin@example.com",
	PushTTL:         24 * time.Hour,
	AWSRegion:       "us-east-1",
	SESFromName:     "Informes",
	AppBaseURL:      "http://localhost:8080",
	LoginRateLimit:  10,
	LoginRateWindow: time.Minute,
}

// Load reads the optional YAML config file and then applies environment overrides
func Load(configFile string) (*Config, error) {
	cfg := *globalConfig
	if configFile != "" {
		buf, err := os.ReadFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		if err := yaml.Unmarshal(buf, &cfg); err != nil {
			return nil, fmt.Errorf("error parsing config file: %w", err)
		}
	}
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("error processing environment: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch strings.ToLower(c.DatabaseType) {
	case "sqlite", "sqlite3", "":
	case "postgres", "postgresql", "mysql":
		if c.DatabaseURL == "" {
			return fmt.Errorf("database url is required for %s", c.DatabaseType)
		}
	default:
		return fmt.Errorf("unsupported database type: %s", c.DatabaseType)
	}
	if c.AuthTimeout <= 0 {
		return errors.New("auth timeout must be positive")
	}
	if (c.VAPIDPublicKey == "") != (c.VAPIDPrivateKey == "") {
		return errors.New("vapid public and private keys must be set together")
	}
	return nil
}

// PushEnabled reports whether VAPID keys are configured
func (c *Config) PushEnabled() bool {
	return c.VAPIDPublicKey != "" && c.VAPIDPrivateKey != ""
}
