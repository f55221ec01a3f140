package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	. "github.com/onsi/gomega"
	"github.com/stretchr/testify/assert"
)

func TestGetDefaultConfig(t *testing.T) {
	cfg := GetDefaultConfig()

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "3001", cfg.Server.Port)
	assert.Equal(t, "http://localhost:3000", cfg.Server.CORSOrigin)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "sqlite3", cfg.Database.Driver)
	assert.True(t, cfg.Database.AutoMigrate)
	assert.False(t, cfg.RateLimit.Enabled)
	assert.Equal(t, "memory", cfg.RateLimit.Backend)
	assert.Equal(t, "http://localhost:3001", cfg.Web.APIURL)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	RegisterTestingT(t)

	t.Setenv("USERDIR_SERVER_PORT", "8088")
	t.Setenv("USERDIR_DATABASE_DRIVER", "postgres")
	t.Setenv("USERDIR_RATE_LIMIT_ENABLED", "true")
	t.Setenv("USERDIR_RATE_LIMIT_WINDOW", "30s")
	t.Setenv("CONFIG_FILE", "")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))

	Expect(err).To(BeNil())
	Expect(cfg.Server.Port).To(Equal("8088"))
	Expect(cfg.Database.Driver).To(Equal("postgres"))
	Expect(cfg.RateLimit.Enabled).To(BeTrue())
	Expect(cfg.RateLimit.Window).To(Equal(30 * time.Second))
}

func TestLoad_YAMLFile(t *testing.T) {
	RegisterTestingT(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := []byte(`
environment: staging
server:
  cors_origin: "http://example.test:3000"
database:
  driver: mysql
  dsn: "root:@tcp(localhost:3306)/user_management"
`)
	Expect(os.WriteFile(path, content, 0o600)).To(Succeed())

	cfg, err := Load(path)

	Expect(err).To(BeNil())
	Expect(cfg.Environment).To(Equal("staging"))
	Expect(cfg.Server.CORSOrigin).To(Equal("http://example.test:3000"))
	Expect(cfg.Database.Driver).To(Equal("mysql"))
	Expect(cfg.Server.Port).To(Equal("3001"))
}

func TestLoad_ReleaseModeIsProduction(t *testing.T) {
	t.Setenv("GIN_MODE", "release")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))

	assert.NoError(t, err)
	assert.True(t, cfg.IsProduction())
}
