package config

import (
	"fmt"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	Debug bool `env:"DEBUG" envDefault:"false"`

	Server struct {
		Port   int    `env:"PORT" envDefault:"8080"`
		Origin string `env:"ORIGIN" envDefault:"http://localhost:3000"`
	}

	Database struct {
		Host     string `env:"DB_HOST" envDefault:"localhost"`
		Port     int    `env:"DB_PORT" envDefault:"5432"`
		User     string `env:"DB_USER" envDefault:"postgres"`
		Password string `env:"DB_PASSWORD" envDefault:""`
		Name     string `env:"DB_NAME" envDefault:"rifas_el_negro"`
		SSLMode  string `env:"DB_SSL_MODE" envDefault:"disable"`
		MaxConns int    `env:"DB_MAX_CONNS" envDefault:"25"`
		MinConns int    `env:"DB_MIN_CONNS" envDefault:"5"`
	}

	Redis struct {
		Host     string `env:"REDIS_HOST" envDefault:"localhost"`
		Port     int    `env:"REDIS_PORT" envDefault:"6379"`
		Password string `env:"REDIS_PASSWORD" envDefault:""`
		DB       int    `env:"REDIS_DB" envDefault:"0"`
	}

	Auth struct {
		JWTSecret string `env:"JWT_SECRET,required"`
		// Token lifetime in hours. The site keeps sessions for a week.
		TokenTTLHours int `env:"TOKEN_TTL_HOURS" envDefault:"168"`
	}

	Raffle struct {
		// How long a number selection is held before it silently expires.
		ReservationTTLSeconds int `env:"RESERVATION_TTL_SECONDS" envDefault:"600"`
		// TTL for the cached availability map; short on purpose, the cache
		// is also invalidated on every ledger mutation.
		AvailabilityCacheSeconds int `env:"AVAILABILITY_CACHE_SECONDS" envDefault:"5"`
		StatsCacheSeconds        int `env:"STATS_CACHE_SECONDS" envDefault:"15"`
	}
}

func Load() *Config {
	// No .env file is fine, variables may be set directly in the
	// environment (containers, CI).
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		panic(err)
	}

	return cfg
}

func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host, c.Database.Port, c.Database.User, c.Database.Password, c.Database.Name, c.Database.SSLMode)
}

func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}
