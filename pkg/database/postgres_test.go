package database

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/sma-finance-mirror/pkg/config"
)

func TestDSNIsReadOnly(t *testing.T) {
	dsn := DSN(config.DatabaseConfig{Host: "db", Port: 5432, User: "mirror", Password: "secret", Name: "school", SSLMode: "disable"})

	assert.Equal(t, "host=db port=5432 user=mirror password=secret dbname=school sslmode=disable application_name=finance-mirror default_transaction_read_only=on", dsn)
}

func TestDSNQuotesPassword(t *testing.T) {
	assert.Equal(t, "''", quote(""))
	assert.Equal(t, "plain", quote("plain"))
	assert.Equal(t, `'with space'`, quote("with space"))
	assert.Equal(t, `'it\'s\\x'`, quote(`it's\x`))
}
