package providers

import (
	"minelens/internal/structures"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func validConfig() *structures.Config {
	return &structures.Config{
		WebServer: structures.Server{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Persistence: structures.Persistence{
			FilePath:     "/tmp/minelens.dat",
			SaveInterval: 30 * time.Second,
		},
		Logger: structures.LoggerConfig{
			Level: "info",
			Mode:  0644,
			Dir:   "/tmp/logs",
		},
		Ledger: structures.LedgerConfig{
			Endpoints:  []string{"http://127.0.0.1:8899"},
			ProgramID:  "11111111111111111111111111111111",
			Commitment: "confirmed",
		},
		Storage: structures.StorageConfig{DbPath: "/tmp/minelens.db"},
	}
}

func TestConfigValidator_ValidConfig(t *testing.T) {
	v := NewCnfValidator(validConfig())
	assert.NoError(t, v.Validate())
}

func TestConfigValidator_EmptyHost(t *testing.T) {
	c := validConfig()
	c.WebServer.Host = ""
	assert.Error(t, NewCnfValidator(c).Validate())
}

func TestConfigValidator_ZeroPort(t *testing.T) {
	c := validConfig()
	c.WebServer.Port = 0
	assert.Error(t, NewCnfValidator(c).Validate())
}

func TestConfigValidator_EmptyLogLevel(t *testing.T) {
	c := validConfig()
	c.Logger.Level = ""
	assert.Error(t, NewCnfValidator(c).Validate())
}

func TestConfigValidator_InvalidLogLevel(t *testing.T) {
	c := validConfig()
	c.Logger.Level = "verbose"
	assert.Error(t, NewCnfValidator(c).Validate())
}

func TestConfigValidator_InvalidEndpoint(t *testing.T) {
	c := validConfig()
	c.Ledger.Endpoints = []string{"not a url"}
	assert.Error(t, NewCnfValidator(c).Validate())
}

func TestConfigValidator_InvalidProgramID(t *testing.T) {
	c := validConfig()
	c.Ledger.ProgramID = "0OIl"
	assert.Error(t, NewCnfValidator(c).Validate())
}

func TestConfigValidator_RecomputeNeedsInterval(t *testing.T) {
	c := validConfig()
	c.Recompute.Enabled = true
	assert.Error(t, NewCnfValidator(c).Validate())

	c.Recompute.Interval = time.Hour
	assert.NoError(t, NewCnfValidator(c).Validate())
}
