package config

import "fmt"

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host     string `env:"INSPECTION_PG_HOST" env-default:"localhost"`
	Port     uint16 `env:"INSPECTION_PG_PORT" env-default:"5432"`
	Database string `env:"INSPECTION_PG_DATABASE" env-default:"inspection_db"`
	User     string `env:"INSPECTION_PG_USER" env-default:"inspection"`
	Password string `env:"INSPECTION_PG_PASSWORD" env-default:"pwd"`
	Schema   string `env:"INSPECTION_PG_SCHEMA" env-default:"public"`
	MaxConns int32  `env:"INSPECTION_PG_MAX_CONNS" env-default:"10"`
}

// ToDatabaseURL converts the config to a PostgreSQL connection URL.
func (d DatabaseConfig) ToDatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable&search_path=%s,public&pool_max_conns=%d",
		d.User, d.Password, d.Host, d.Port, d.Database, d.Schema, d.MaxConns)
}

type RedisConfig struct {
	Addr      string `env:"REDIS_ADDR" env-default:"localhost:6379"`
	Password  string `env:"REDIS_PASSWORD" env-default:""`
	DB        int    `env:"REDIS_DB" env-default:"0"`
	KeyPrefix string `env:"REDIS_KEY_PREFIX" env-default:"inspection:"`
}
