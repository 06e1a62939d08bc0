package config

import (
	"github.com/spf13/pflag"
)

// BindFlags registers all configuration flags on fs and returns the config
// they populate once fs is parsed. Unset flags keep zero values, so they do
// not shadow later sources during the merge.
//
// Flags:
//
//	-c/--config            json file path with configs
//	--tag                  storage tag (namespace)
//	--salt                 secret identity for key derivation
//	--cipher               aes-gcm | xchacha20 | none
//	--cipher-policy        fallback | strict
//	--max-record-size      largest encoded record per backend key
//	--max-payload-size     largest serialized value
//	--parallel-partitions  write and read partitions concurrently
//	-s/--driver            memory | sqlite | badger
//	-d/--dsn               sqlite DSN
//	--memory-file          JSON file backing the memory driver
//	--badger-dir           badger directory
//	--badger-in-memory     run badger without disk
//	--gc-interval          badger value-log GC interval (e.g. "5m")
//	--metrics-namespace    prometheus namespace
//	--log-file             write logs to this file
func BindFlags(fs *pflag.FlagSet) *StructuredConfig {
	cfg := &StructuredConfig{}

	fs.StringVarP(&cfg.JSONFilePath, "config", "c", "", "JSON config file path")

	fs.StringVar(&cfg.App.StorageTag, "tag", "", "Storage tag (namespace), default "+DefaultStorageTag)
	fs.StringVar(&cfg.App.Salt, "salt", "", "Secret identity for key derivation, defaults to the tag")
	fs.StringVar(&cfg.App.Cipher, "cipher", "", "Cipher: aes-gcm, xchacha20 or none")
	fs.StringVar(&cfg.App.CipherPolicy, "cipher-policy", "", "On cipher init failure: fallback or strict")
	fs.IntVar(&cfg.App.MaxRecordSize, "max-record-size", 0, "Largest encoded record per backend key")
	fs.IntVar(&cfg.App.MaxPayloadSize, "max-payload-size", 0, "Largest serialized value in bytes")
	fs.BoolVar(&cfg.App.ParallelPartitions, "parallel-partitions", false, "Write and read partitions concurrently")

	fs.StringVarP(&cfg.Storage.Driver, "driver", "s", "", "Storage driver: memory, sqlite or badger")
	fs.StringVarP(&cfg.Storage.DB.DSN, "dsn", "d", "", "SQLite DSN")
	fs.StringVar(&cfg.Storage.Memory.Path, "memory-file", "", "JSON file backing the memory driver")
	fs.StringVar(&cfg.Storage.Badger.Dir, "badger-dir", "", "Badger directory")
	fs.BoolVar(&cfg.Storage.Badger.InMemory, "badger-in-memory", false, "Run badger without disk")

	fs.DurationVar(&cfg.Workers.GCInterval, "gc-interval", 0, "Badger value-log GC interval (e.g., 5m)")
	fs.StringVar(&cfg.Metrics.Namespace, "metrics-namespace", "", "Prometheus namespace")
	fs.StringVar(&cfg.Log.File, "log-file", "", "Write logs to this file instead of stdout")

	return cfg
}
