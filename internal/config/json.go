package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

type StructuredJSONConfig struct {
	App struct {
		StorageTag         string `json:"storage_tag"`
		Salt               string `json:"salt"`
		Cipher             string `json:"cipher"`
		CipherPolicy       string `json:"cipher_policy"`
		MaxRecordSize      int    `json:"max_record_size"`
		MaxPayloadSize     int    `json:"max_payload_size"`
		ParallelPartitions bool   `json:"parallel_partitions"`
	} `json:"app,omitempty"`

	Storage struct {
		Driver string `json:"driver"`
		DB     struct {
			DSN string `json:"dsn"`
		} `json:"db,omitempty"`
		Memory struct {
			Path string `json:"path"`
		} `json:"memory,omitempty"`
		Badger struct {
			Dir      string `json:"dir"`
			InMemory bool   `json:"in_memory"`
		} `json:"badger,omitempty"`
	} `json:"storage,omitempty"`

	Workers struct {
		GCInterval     Duration `json:"gc_interval"`
		GCDiscardRatio float64  `json:"gc_discard_ratio"`
	} `json:"workers,omitempty"`

	Metrics struct {
		Namespace string `json:"namespace"`
	} `json:"metrics,omitempty"`

	Log struct {
		File string `json:"file"`
	} `json:"log,omitempty"`
}

func parseJSON(jsonFilePath string) (*StructuredConfig, error) {
	jsonFile, err := os.Open(jsonFilePath)
	if err != nil {
		return nil, fmt.Errorf("error reading a json file: %w", err)
	}
	defer jsonFile.Close()

	var jsonCfg StructuredJSONConfig
	if err := json.NewDecoder(jsonFile).Decode(&jsonCfg); err != nil {
		return nil, fmt.Errorf("error decoding json configs: %w", err)
	}

	cfg := &StructuredConfig{
		App: App{
			StorageTag:         jsonCfg.App.StorageTag,
			Salt:               jsonCfg.App.Salt,
			Cipher:             jsonCfg.App.Cipher,
			CipherPolicy:       jsonCfg.App.CipherPolicy,
			MaxRecordSize:      jsonCfg.App.MaxRecordSize,
			MaxPayloadSize:     jsonCfg.App.MaxPayloadSize,
			ParallelPartitions: jsonCfg.App.ParallelPartitions,
		},
		Storage: Storage{
			Driver: jsonCfg.Storage.Driver,
			DB: DB{
				DSN: jsonCfg.Storage.DB.DSN,
			},
			Memory: Memory{
				Path: jsonCfg.Storage.Memory.Path,
			},
			Badger: Badger{
				Dir:      jsonCfg.Storage.Badger.Dir,
				InMemory: jsonCfg.Storage.Badger.InMemory,
			},
		},
		Workers: Workers{
			GCInterval:     time.Duration(jsonCfg.Workers.GCInterval),
			GCDiscardRatio: jsonCfg.Workers.GCDiscardRatio,
		},
		Metrics: Metrics{
			Namespace: jsonCfg.Metrics.Namespace,
		},
		Log: Log{
			File: jsonCfg.Log.File,
		},
		JSONFilePath: "",
	}

	return cfg, nil
}

// Duration is a wrapper around time.Duration that supports JSON unmarshaling from strings like "1h", "30s"
type Duration time.Duration

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	switch value := v.(type) {
	case float64:
		*d = Duration(time.Duration(value))
		return nil
	case string:
		tmp, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		*d = Duration(tmp)
		return nil
	default:
		return json.Unmarshal(b, (*time.Duration)(d))
	}
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}
