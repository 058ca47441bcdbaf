package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gorm.io/gorm"
)

var (
	DB  *gorm.DB
	App *Config
)

// Config holds all configuration for the application
type Config struct {
	Env           string `mapstructure:"env"`
	Port          string `mapstructure:"port"`
	JWTSecret     string `mapstructure:"jwt_secret"`
	SessionSecret string `mapstructure:"session_secret"`
	FrontendURL   string `mapstructure:"frontend_url"`

	DB        DBConfig        `mapstructure:"db"`
	Admin     AdminConfig     `mapstructure:"admin"`
	SMTP      SMTPConfig      `mapstructure:"smtp"`
	Razorpay  RazorpayConfig  `mapstructure:"razorpay"`
	Google    GoogleConfig    `mapstructure:"google"`
	Redis     RedisConfig     `mapstructure:"redis"`
	RabbitMQ  RabbitMQConfig  `mapstructure:"rabbitmq"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`

	// PackageValidityDays sets the expiry of issued packages; 0 means they never expire
	PackageValidityDays int `mapstructure:"package_validity_days"`

	// ReviewerEmails receive a notice whenever a discount approval request is filed
	ReviewerEmails []string `mapstructure:"reviewer_emails"`
}

type DBConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
}

// DSN returns the postgres connection string
func (c DBConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode)
}

// AdminConfig seeds the first administrator account
type AdminConfig struct {
	Username string `mapstructure:"username"`
	Email    string `mapstructure:"email"`
	Password string `mapstructure:"password"`
	FullName string `mapstructure:"full_name"`
}

type SMTPConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
}

// Enabled reports whether outgoing mail is configured
func (c SMTPConfig) Enabled() bool {
	return c.Host != "" && c.From != ""
}

type RazorpayConfig struct {
	Key    string `mapstructure:"key"`
	Secret string `mapstructure:"secret"`
}

type GoogleConfig struct {
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
	RedirectURL  string `mapstructure:"redirect_url"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type RabbitMQConfig struct {
	URL   string `mapstructure:"url"`
	Queue string `mapstructure:"queue"`
}

type RateLimitConfig struct {
	Enabled        bool          `mapstructure:"enabled"`
	Capacity       int           `mapstructure:"capacity"`
	RefillTokens   int           `mapstructure:"refill_tokens"`
	RefillInterval time.Duration `mapstructure:"refill_interval"`
	TTL            time.Duration `mapstructure:"ttl"`
	Prefix         string        `mapstructure:"prefix"`
}

// LoadConfig loads configuration from the environment. A .env file in the
// working directory is read first when present.
func LoadConfig() (*Config, error) {
	// .env is optional; real environment variables still apply
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	// AutomaticEnv only applies to keys viper already knows about
	for _, key := range v.AllKeys() {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("error binding %s: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error decoding config: %w", err)
	}
	if raw := v.GetString("reviewer_emails"); raw != "" {
		cfg.ReviewerEmails = splitList(raw)
	}
	if cfg.RateLimit.Capacity < 1 {
		cfg.RateLimit.Capacity = 1
	}
	if cfg.RateLimit.RefillTokens < 1 {
		cfg.RateLimit.RefillTokens = 1
	}
	if cfg.RateLimit.RefillInterval <= 0 {
		cfg.RateLimit.RefillInterval = time.Second
	}
	if minTTL := 5 * cfg.RateLimit.RefillInterval; cfg.RateLimit.TTL < minTTL {
		cfg.RateLimit.TTL = minTTL
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "development")
	v.SetDefault("port", "8080")
	v.SetDefault("jwt_secret", "")
	v.SetDefault("session_secret", "change-me")
	v.SetDefault("frontend_url", "http://localhost:3000")
	v.SetDefault("reviewer_emails", "")
	v.SetDefault("package_validity_days", 180)

	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", "5432")
	v.SetDefault("db.user", "postgres")
	v.SetDefault("db.password", "postgres")
	v.SetDefault("db.name", "infusedesk")
	v.SetDefault("db.sslmode", "disable")

	v.SetDefault("admin.username", "admin")
	v.SetDefault("admin.email", "")
	v.SetDefault("admin.password", "")
	v.SetDefault("admin.full_name", "Administrator")

	v.SetDefault("smtp.host", "")
	v.SetDefault("smtp.port", 587)
	v.SetDefault("smtp.username", "")
	v.SetDefault("smtp.password", "")
	v.SetDefault("smtp.from", "")

	v.SetDefault("razorpay.key", "")
	v.SetDefault("razorpay.secret", "")

	v.SetDefault("google.client_id", "")
	v.SetDefault("google.client_secret", "")
	v.SetDefault("google.redirect_url", "")

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("rabbitmq.url", "")
	v.SetDefault("rabbitmq.queue", "infusedesk.events")

	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.capacity", 60)
	v.SetDefault("rate_limit.refill_tokens", 1)
	v.SetDefault("rate_limit.refill_interval", time.Second)
	v.SetDefault("rate_limit.ttl", 10*time.Minute)
	v.SetDefault("rate_limit.prefix", "rl")
}

// PackageValidity is the lifetime of a newly issued package
func (c *Config) PackageValidity() time.Duration {
	if c.PackageValidityDays <= 0 {
		return 0
	}
	return time.Duration(c.PackageValidityDays) * 24 * time.Hour
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if s := strings.TrimSpace(part); s != "" {
			out = append(out, s)
		}
	}
	return out
}
