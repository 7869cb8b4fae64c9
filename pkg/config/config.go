package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix is the envconfig prefix shared by every setting.
const EnvPrefix = "tandur"

// Environment names recognized by AppConfig.
const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

// Environment variable names shared with tests and tooling.
const (
	EnvAppEnv     = "TANDUR_APP_ENV"
	EnvPort       = "TANDUR_APP_PORT"
	EnvDBDSN      = "TANDUR_DB_DSN"
	EnvDBHost     = "TANDUR_DB_HOST"
	EnvDBUser     = "TANDUR_DB_USER"
	EnvDBName     = "TANDUR_DB_NAME"
	EnvRedisURL   = "TANDUR_REDIS_URL"
	EnvJWTSecret  = "TANDUR_JWT_SECRET"
	EnvJWTIssuer  = "TANDUR_JWT_ISSUER"
	EnvJWTExpMins = "TANDUR_JWT_EXPIRATION_MINUTES"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	Verification  VerificationConfig
	Groq          GroqConfig
	FeatureFlags  FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"TANDUR_APP_ENV" required:"true"`
	Port         string `envconfig:"TANDUR_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"TANDUR_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"TANDUR_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"TANDUR_DB_DSN"`
	Driver string `envconfig:"TANDUR_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"TANDUR_DB_HOST"`
	LegacyPort     int    `envconfig:"TANDUR_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"TANDUR_DB_USER"`
	LegacyPassword string `envconfig:"TANDUR_DB_PASSWORD"`
	LegacyName     string `envconfig:"TANDUR_DB_NAME"`
	LegacySSLMode  string `envconfig:"TANDUR_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"TANDUR_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"TANDUR_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"TANDUR_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"TANDUR_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"TANDUR_REDIS_URL" required:"true"`
	Address      string        `envconfig:"TANDUR_REDIS_ADDR"`
	Password     string        `envconfig:"TANDUR_REDIS_PASSWORD"`
	DB           int           `envconfig:"TANDUR_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"TANDUR_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"TANDUR_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"TANDUR_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"TANDUR_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"TANDUR_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"TANDUR_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"TANDUR_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"TANDUR_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"TANDUR_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"TANDUR_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"TANDUR_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"TANDUR_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"TANDUR_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"TANDUR_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"TANDUR_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"TANDUR_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"TANDUR_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"TANDUR_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"TANDUR_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"TANDUR_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type VerificationConfig struct {
	CodeTTL time.Duration `envconfig:"TANDUR_VERIFICATION_CODE_TTL" default:"15m"`
}

type GroqConfig struct {
	APIKey  string        `envconfig:"TANDUR_GROQ_API_KEY"`
	Model   string        `envconfig:"TANDUR_GROQ_MODEL" default:"llama3-8b-8192"`
	Timeout time.Duration `envconfig:"TANDUR_GROQ_TIMEOUT" default:"30s"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"TANDUR_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
