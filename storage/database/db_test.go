package database

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/trezcool/schoolops/core"
)

func TestDSN(t *testing.T) {
	conf := core.NewTestConfig()
	conf.Database = core.DatabaseConfig{
		Engine:        "postgres",
		Host:          "db",
		Port:          "5432",
		Name:          "schoolops",
		User:          "app",
		Password:      "p@ss",
		AdminUser:     "postgres",
		AdminPassword: "root",
		DisableTLS:    true,
	}

	assert.Equal(t, "postgres://app:p%40ss@db:5432/schoolops?sslmode=disable&timezone=utc", dsn(conf.Database.Name, false, conf))
	assert.Equal(t, "postgres://postgres:root@db:5432/postgres?sslmode=disable&timezone=utc", dsn("postgres", true, conf))

	conf.Database.DisableTLS = false
	conf.Database.AdminUser = ""
	assert.Equal(t, "postgres://app:p%40ss@db:5432/postgres?sslmode=require&timezone=utc", dsn("postgres", true, conf))
}
