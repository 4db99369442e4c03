package postgres

import (
	"testing"

	"github.com/andresuchdata/filedrop/internal/config"
	"github.com/stretchr/testify/assert"
)

func TestDataSourcePrefersURL(t *testing.T) {
	driver, dsn := dataSource(&config.DatabaseConfig{URL: "postgres://u:p@db:5432/filedrop"})
	assert.Equal(t, "pgx", driver)
	assert.Equal(t, "postgres://u:p@db:5432/filedrop", dsn)
}

func TestDataSourceFromFields(t *testing.T) {
	driver, dsn := dataSource(&config.DatabaseConfig{
		Host: "localhost", Port: "5432", User: "postgres", Password: "pw", DBName: "filedrop", SSLMode: "disable",
	})
	assert.Equal(t, "postgres", driver)
	assert.Equal(t, "host=localhost port=5432 user=postgres password=pw dbname=filedrop sslmode=disable", dsn)
}
