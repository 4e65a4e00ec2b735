package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	t.Setenv("WQ_CONFIG", "")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ":8000", cfg.Server.Addr)
	assert.Equal(t, "mysql", cfg.Database.Driver)
	assert.Equal(t, 200, cfg.Training.NumTrees)
	assert.Equal(t, int64(42), cfg.Training.Seed)
	assert.True(t, cfg.Training.Bootstrap)
	assert.InDelta(t, 0.2, cfg.Training.TestRatio, 1e-12)
	assert.Equal(t, "model.wqm", cfg.Artifacts.ModelFile)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wq.yaml")
	content := `
server:
  addr: ":9000"
  recent_readings_ttl: 30s
database:
  driver: sqlite
  path: ":memory:"
artifacts:
  dir: /var/lib/wq
training:
  trees: 50
  seed: 7
  max_depth: 12
  test_ratio: 0.25
  run_interval: 6h
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.Server.Addr)
	assert.Equal(t, 30*time.Second, cfg.Server.RecentReadingsTTL)
	assert.Equal(t, 10, cfg.Server.RecentLimit)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, ":memory:", cfg.Database.DSN())
	assert.Equal(t, "/var/lib/wq", cfg.Artifacts.Dir)
	assert.Equal(t, "encoder.wqe", cfg.Artifacts.EncoderFile)
	assert.Equal(t, 50, cfg.Training.NumTrees)
	assert.Equal(t, int64(7), cfg.Training.Seed)
	assert.Equal(t, 12, cfg.Training.MaxDepth)
	assert.Equal(t, 2, cfg.Training.MinSamplesSplit)
	assert.Equal(t, 6*time.Hour, cfg.Training.RunInterval)
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "env.yaml")
	require.NoError(t, os.WriteFile(path, []byte("database:\n  password: from-file\n"), 0o644))
	t.Setenv("WQ_CONFIG", path)
	t.Setenv("WQ_DB_PASSWORD", "from-env")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Database.Password)
}

func TestLoad_RejectsBadValues(t *testing.T) {
	dir := t.TempDir()
	for name, content := range map[string]string{
		"driver": "database:\n  driver: postgres\n",
		"ratio":  "training:\n  test_ratio: 1.5\n",
		"yaml":   "server: [unterminated\n",
	} {
		path := filepath.Join(dir, name+".yaml")
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
		_, err := Load(path)
		assert.Error(t, err, name)
	}
}

func TestDSN_MySQL(t *testing.T) {
	c := DatabaseConfig{Driver: "mysql", User: "wq", Password: "pw", Host: "db", Port: 3307, DBName: "water"}
	assert.Equal(t, "wq:pw@tcp(db:3307)/water?charset=utf8mb4&parseTime=true&loc=UTC", c.DSN())
}

func TestConnectDatabase_SQLite(t *testing.T) {
	db, err := ConnectDatabase(DatabaseConfig{Driver: "sqlite", Path: ":memory:"})
	require.NoError(t, err)
	defer CloseDatabase(db)

	var one int
	require.NoError(t, db.QueryRow("SELECT 1").Scan(&one))
	assert.Equal(t, 1, one)
}
