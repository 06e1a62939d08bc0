package config

import (
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBindFlags_AllFlags(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	cfg := BindFlags(fs)

	err := fs.Parse([]string{
		"-c", "/etc/vaultkv.json",
		"--tag", "Profiles",
		"--salt", "s3cret",
		"--cipher", "none",
		"--cipher-policy", "strict",
		"--max-record-size", "1024",
		"--max-payload-size", "2048",
		"--parallel-partitions",
		"-s", "sqlite",
		"-d", "file:vault.db",
		"--memory-file", "/tmp/vault.json",
		"--badger-dir", "/var/lib/vault",
		"--badger-in-memory",
		"--gc-interval", "1m",
		"--metrics-namespace", "kv",
		"--log-file", "/tmp/vaultkv.log",
	})
	require.NoError(t, err)

	assert.Equal(t, "/etc/vaultkv.json", cfg.JSONFilePath)
	assert.Equal(t, App{
		StorageTag:         "Profiles",
		Salt:               "s3cret",
		Cipher:             "none",
		CipherPolicy:       "strict",
		MaxRecordSize:      1024,
		MaxPayloadSize:     2048,
		ParallelPartitions: true,
	}, cfg.App)
	assert.Equal(t, Storage{
		Driver: "sqlite",
		DB:     DB{DSN: "file:vault.db"},
		Memory: Memory{Path: "/tmp/vault.json"},
		Badger: Badger{Dir: "/var/lib/vault", InMemory: true},
	}, cfg.Storage)
	assert.Equal(t, time.Minute, cfg.Workers.GCInterval)
	assert.Equal(t, "kv", cfg.Metrics.Namespace)
	assert.Equal(t, "/tmp/vaultkv.log", cfg.Log.File)
}

func TestBindFlags_UnsetFlagsStayZero(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	cfg := BindFlags(fs)

	require.NoError(t, fs.Parse(nil))
	assert.Equal(t, &StructuredConfig{}, cfg)
}

func TestBindFlags_InvalidValue(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	BindFlags(fs)

	err := fs.Parse([]string{"--max-record-size", "huge"})
	assert.Error(t, err)
}
