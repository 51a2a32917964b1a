package config

import (
	"log"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env         string `env:"ENV" env-required:"true" env-description:"environment name, development or production"`
	LogLevel    string `env:"LOG_LEVEL" env-default:"info" env-description:"logging level, debug, info, etc."`
	FrontendURL string `env:"FRONTEND_URL" env-required:"true" env-description:"origin of the single page client"`
	HttpServer  HttpServer
	Database    Database
	Limiter     Limiter
	Auth        AuthConfig
	Cookie      CookieConfig
	Google      GoogleConfig
	SMTP        SMTPConfig
	Email       EmailConfig
	Cache       Cache
	Queue       QueueConfig
}

// IsProduction reports whether cookies must carry the Secure attribute.
func (c *Config) IsProduction() bool {
	return c.Env == EnvProduction
}

type HttpServer struct {
	Port           string        `env:"HTTP_PORT" env-required:"true"`
	Timeout        time.Duration `env:"HTTP_TIMEOUT" env-default:"4s"`
	IdleTimeout    time.Duration `env:"HTTP_IDLE_TIMEOUT" env-default:"60s"`
	SwaggerEnabled bool          `env:"HTTP_SWAGGER_ENABLED" env-default:"false"`
}

type Database struct {
	Net                string        `env:"DB_NET" env-default:"tcp"`
	Server             string        `env:"DB_SERVER" env-required:"true"`
	DBName             string        `env:"DB_NAME" env-required:"true"`
	User               string        `env:"DB_USER" env-required:"true"`
	Password           string        `env:"DB_PASSWORD" env-required:"true"`
	TimeZone           string        `env:"DB_TIMEZONE" env-default:"UTC"`
	Timeout            time.Duration `env:"DB_TIMEOUT" env-default:"2s"`
	MaxIdleConnections int           `env:"DB_MAX_IDLE_CONNECTIONS" env-default:"40"`
	MaxOpenConnections int           `env:"DB_MAX_OPEN_CONNECTIONS" env-default:"40"`
	AutoMigrate        bool          `env:"DB_AUTO_MIGRATE" env-default:"true"`
}

type Limiter struct {
	RPS   int           `env:"LIMITER_RPS" env-default:"10"`
	Burst int           `env:"LIMITER_BURST" env-default:"20"`
	TTL   time.Duration `env:"LIMITER_TTL" env-default:"10m"`
}

type AuthConfig struct {
	JWT             JWTConfig
	VerificationTTL time.Duration `env:"AUTH_VERIFICATION_TTL" env-default:"15m"`
	ResendCooldown  time.Duration `env:"AUTH_RESEND_COOLDOWN" env-default:"60s"`
}

type JWTConfig struct {
	SessionTokenTTL time.Duration `env:"JWT_SESSION_TOKEN_TTL" env-default:"24h"`
	ClockSkew       time.Duration `env:"JWT_CLOCK_SKEW" env-default:"0s"`
	SigningKey      string        `env:"JWT_SIGNING_KEY" env-required:"true"`
}

type CookieConfig struct {
	VerificationName string `env:"VERIFICATION_COOKIE_NAME" env-required:"true"`
	AuthName         string `env:"AUTH_COOKIE_NAME" env-required:"true"`
	OAuthStateName   string `env:"OAUTH_STATE_COOKIE_NAME" env-default:"oauth_state"`
}

type GoogleConfig struct {
	ClientID     string        `env:"GOOGLE_CLIENT_ID" env-required:"true"`
	ClientSecret string        `env:"GOOGLE_CLIENT_SECRET" env-required:"true"`
	RedirectURI  string        `env:"GOOGLE_REDIRECT_URI" env-required:"true"`
	UserInfoURL  string        `env:"GOOGLE_USERINFO_URL" env-default:"https://openidconnect.googleapis.com/v1/userinfo"`
	StateTTL     time.Duration `env:"GOOGLE_STATE_TTL" env-default:"10m"`
}

type SMTPConfig struct {
	Host string `env:"SMTP_HOST" env-default:"localhost"`
	Port int    `env:"SMTP_PORT" env-default:"587"`
	From string `env:"SMTP_FROM" env-default:""`
	Pass string `env:"SMTP_PASS" env-default:""`
}

type EmailConfig struct {
	Enabled   bool `env:"EMAIL_ENABLED" env-default:"false"`
	Templates EmailTemplates
}

type EmailTemplates struct {
	Dir          string `env:"EMAIL_TEMPLATES_DIR" env-default:"./templates"`
	Verification string `env:"EMAIL_TEMPLATE_VERIFICATION" env-default:"verification_code.html"`
}

type QueueConfig struct {
	Concurrency int    `env:"QUEUE_CONCURRENCY" env-default:"10"`
	CleanupCron string `env:"QUEUE_CLEANUP_CRON" env-default:"@hourly"`
}

type Cache struct {
	Type  string `env:"REDIS_TYPE" env-required:"true" env-description:"specifies provider, one of redis/redisCluster"`
	Redis struct {
		Address  string `env:"REDIS_ADDR" env-default:"" env-description:"redis host:port single instance"`
		Password string `env:"REDIS_PASSWORD" env-default:"" env-description:"redis password if exists"`
		PoolSize int    `env:"REDIS_POOL_SIZE" env-default:"70" env-description:"max tcp connections pool size"`
	}
	RedisCluster struct {
		Addresses []string `env:"REDIS_CLUSTER_ADDRS" env-default:"" env-description:"redis cluster nodes: ['172.27.29.90:7000','172.27.29.91:7001'', '172.27.29.92:7002'']"`
		Password  string   `env:"REDIS_PASSWORD" env-default:"" env-description:"redis password if exists"`
		PoolSize  int      `env:"REDIS_POOL_SIZE" env-default:"70" env-description:"max tcp connections pool size"`
	}
}

func Load() (*Config, error) {
	var cfg Config

	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("cannot read config from environment: %s", err)
	}

	return cfg
}
