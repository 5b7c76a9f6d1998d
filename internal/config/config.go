package config

import (
	"errors"
	"flag"
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	RunAddress    string `env:"RUN_ADDRESS"`
	DatabaseDSN   string `env:"DATABASE_URI"`
	MigrationsDir string `env:"MIGRATIONS_DIR"`
	RedisAddress  string `env:"REDIS_ADDRESS"`

	// Секреты процесса. Задаются на старте, в коде глобалов нет.
	JWTUserSecret string `env:"JWT_USER_SECRET"`
	QRSecret      string `env:"QR_SECRET"`

	// Окно валидности подписанного QR пейлоада в секундах.
	QRTokenTTLSeconds int `env:"QR_TOKEN_TTL_SECONDS"`
}

func LoadConfig() (*Config, error) {
	// .env опционален, используется только в дев окружении.
	_ = godotenv.Load()

	var flagsConfig, envConfig Config

	if envParseErr := env.Parse(&envConfig); envParseErr != nil {
		return nil, fmt.Errorf("parse env config: %s", envParseErr.Error())
	}

	loadFlags(&flagsConfig)

	conf := mergeConfig(&envConfig, &flagsConfig)
	if conf.DatabaseDSN == "" {
		return nil, errors.New("database DSN is not set")
	}
	if conf.JWTUserSecret == "" || conf.QRSecret == "" {
		return nil, errors.New("signing secrets are not set")
	}
	return conf, nil
}

func MustLoadConfig() *Config {
	config, err := LoadConfig()
	if err != nil {
		panic(err)
	}
	return config
}

func loadFlags(flagConfig *Config) {
	flag.StringVar(&flagConfig.RunAddress, "a", "localhost:8080", "Run address in format host:port")
	flag.StringVar(&flagConfig.DatabaseDSN, "d", "", "Database DSN")
	flag.StringVar(&flagConfig.MigrationsDir, "m", "internal/db/migrations", "Database migrations directory")
	flag.StringVar(&flagConfig.RedisAddress, "r", "localhost:6379", "Redis address in format host:port")
	flag.StringVar(&flagConfig.JWTUserSecret, "jwt-secret", "", "User JWT signing secret")
	flag.StringVar(&flagConfig.QRSecret, "qr-secret", "", "QR payload signing secret")
	flag.IntVar(&flagConfig.QRTokenTTLSeconds, "qr-ttl", 300, "QR payload TTL in seconds")

	flag.Parse()
}

func mergeConfig(envConfig, flagsConfig *Config) *Config {
	ttl := envConfig.QRTokenTTLSeconds
	if ttl == 0 {
		ttl = flagsConfig.QRTokenTTLSeconds
	}
	return &Config{
		RunAddress:        defaultIfBlank(envConfig.RunAddress, flagsConfig.RunAddress),
		DatabaseDSN:       defaultIfBlank(envConfig.DatabaseDSN, flagsConfig.DatabaseDSN),
		MigrationsDir:     defaultIfBlank(envConfig.MigrationsDir, flagsConfig.MigrationsDir),
		RedisAddress:      defaultIfBlank(envConfig.RedisAddress, flagsConfig.RedisAddress),
		JWTUserSecret:     defaultIfBlank(envConfig.JWTUserSecret, flagsConfig.JWTUserSecret),
		QRSecret:          defaultIfBlank(envConfig.QRSecret, flagsConfig.QRSecret),
		QRTokenTTLSeconds: ttl,
	}
}

func defaultIfBlank(value string, defaultValue string) string {
	if value == "" {
		return defaultValue
	}
	return value
}
