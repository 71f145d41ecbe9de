// internal/common/config/loader_test.go
package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyDefaults(t *testing.T) {
	var cfg Config
	applyDefaults(&cfg)

	assert.Equal(t, "clearance-portal", cfg.App.Name)
	assert.Equal(t, "localhost", cfg.Database.Postgres.Host)
	assert.Equal(t, 5432, cfg.Database.Postgres.Port)
	assert.Equal(t, "root", cfg.Database.Postgres.User)
	assert.Equal(t, "masvingo_clearance", cfg.Database.Postgres.Database)
	assert.Equal(t, "disable", cfg.Database.Postgres.SSLMode)
	assert.Equal(t, ":8080", cfg.Portal.MetricsAddress)
	assert.Equal(t, time.Now().UTC().Year(), cfg.Portal.ReferenceEpoch)
	assert.Equal(t, 60, cfg.Sessions.TTLMinutes)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestApplyDefaults_DoesNotOverrideConfigured(t *testing.T) {
	var cfg Config
	cfg.Database.Postgres.Host = "db.internal"
	cfg.Database.Postgres.Port = 6432
	cfg.Portal.ReferenceEpoch = 2024

	applyDefaults(&cfg)

	assert.Equal(t, "db.internal", cfg.Database.Postgres.Host)
	assert.Equal(t, 6432, cfg.Database.Postgres.Port)
	assert.Equal(t, 2024, cfg.Portal.ReferenceEpoch)
}

func TestValidateConfig(t *testing.T) {
	var cfg Config
	applyDefaults(&cfg)
	require.NoError(t, validateConfig(&cfg))

	bad := cfg
	bad.Portal.ReferenceEpoch = 1999
	assert.Error(t, validateConfig(&bad))

	bad = cfg
	bad.Notifications.Email.Enabled = true
	assert.Error(t, validateConfig(&bad), "from_email is required when email is enabled")

	bad = cfg
	bad.Notifications.SMS.Enabled = true
	assert.Error(t, validateConfig(&bad), "aws region is required when notifications are enabled")

	ok := cfg
	ok.Notifications.Email.Enabled = true
	ok.Notifications.Email.FromEmail = "noreply@masvingocity.gov.zw"
	ok.Notifications.AWS.Region = "af-south-1"
	assert.NoError(t, validateConfig(&ok))
}

func TestGetDSN(t *testing.T) {
	p := PostgresConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "portal",
		Password: "secret",
		Database: "masvingo_clearance",
		SSLMode:  "disable",
	}
	assert.Equal(t,
		"host=localhost port=5432 user=portal password=secret dbname=masvingo_clearance sslmode=disable",
		p.GetDSN())
}

func TestSessionTTL(t *testing.T) {
	assert.Equal(t, 90*time.Minute, SessionConfig{TTLMinutes: 90}.SessionTTL())
}
