package config

import (
	"errors"
	"net/url"
	"regexp"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type Config struct {
	Port          string
	DBDriver      string // sqlite | pgx
	DBDSN         string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	OTPTTL        time.Duration
	LogFile       string
	LogLevel      string
	TemplatesDir  string
	CookieSecure  bool
}

// Load reads .env (if present), an optional application.yml and the process
// environment, in increasing order of precedence.
func Load() Config {
	v, err := newViper("")
	if err != nil {
		log.Warn().Err(err).Msg("config file ignored")
	}
	return fromViper(v)
}

// LoadFile is Load with an explicit config file path.
func LoadFile(path string) (Config, error) {
	v, err := newViper(path)
	if err != nil {
		return Config{}, err
	}
	return fromViper(v), nil
}

func newViper(path string) (*viper.Viper, error) {
	if err := godotenv.Load(); err != nil {
		log.Debug().Err(err).Msg(".env not loaded")
	}

	v := viper.New()
	v.SetDefault("port", "8080")
	v.SetDefault("db_driver", "sqlite")
	v.SetDefault("db_dsn", "petcare.db")
	v.SetDefault("redis_addr", "localhost:6379")
	v.SetDefault("redis_password", "")
	v.SetDefault("redis_db", 0)
	v.SetDefault("otp_ttl", "5m")
	v.SetDefault("log_file", "")
	v.SetDefault("log_level", "info")
	v.SetDefault("templates_dir", "./web/templates")
	v.SetDefault("cookie_secure", false)
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		return v, v.ReadInConfig()
	}
	v.SetConfigName("application")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return v, err
		}
	}
	return v, nil
}

func fromViper(v *viper.Viper) Config {
	cfg := Config{
		Port:          v.GetString("port"),
		DBDriver:      v.GetString("db_driver"),
		DBDSN:         v.GetString("db_dsn"),
		RedisAddr:     v.GetString("redis_addr"),
		RedisPassword: v.GetString("redis_password"),
		RedisDB:       v.GetInt("redis_db"),
		OTPTTL:        v.GetDuration("otp_ttl"),
		LogFile:       v.GetString("log_file"),
		LogLevel:      v.GetString("log_level"),
		TemplatesDir:  v.GetString("templates_dir"),
		CookieSecure:  v.GetBool("cookie_secure"),
	}
	if cfg.OTPTTL <= 0 {
		cfg.OTPTTL = 5 * time.Minute
	}
	log.Info().
		Str("port", cfg.Port).
		Str("db_driver", cfg.DBDriver).
		Str("db_dsn", cfg.RedactedDSN()).
		Str("redis_addr", cfg.RedisAddr).
		Str("log_file", cfg.LogFile).
		Msg("config loaded")
	return cfg
}

var dsnPassword = regexp.MustCompile(`(?i)(password=)\S+`)

// RedactedDSN is DBDSN with any password masked, safe to log.
func (c Config) RedactedDSN() string {
	if u, err := url.Parse(c.DBDSN); err == nil && u.User != nil {
		return u.Redacted()
	}
	return dsnPassword.ReplaceAllString(c.DBDSN, "${1}xxxxx")
}
