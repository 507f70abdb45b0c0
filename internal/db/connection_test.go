package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfigDSN(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "host=localhost port=5432 user=postgres password=admin dbname=liftdesk sslmode=disable", cfg.DSN())
}

func TestConfigMigrationURL(t *testing.T) {
	cfg := Config{Host: "db", Port: 6543, User: "lift", Password: "p@ss/word", DBName: "lifts", SSLMode: "require"}
	assert.Equal(t, "pgx5://lift:p%40ss%2Fword@db:6543/lifts?sslmode=require", cfg.MigrationURL())
}

func TestRedisConfigEnabled(t *testing.T) {
	assert.False(t, RedisConfig{}.Enabled())
	assert.True(t, RedisConfig{Addr: "localhost:6379"}.Enabled())
}
