// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package main

import (
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/MKhiriev/go-vault-store/internal/config"
	"github.com/MKhiriev/go-vault-store/internal/crypto"
	"github.com/MKhiriev/go-vault-store/internal/logger"
	"github.com/MKhiriev/go-vault-store/internal/metrics"
	"github.com/MKhiriev/go-vault-store/internal/persistence"
	"github.com/MKhiriev/go-vault-store/internal/store"
	"github.com/MKhiriev/go-vault-store/internal/workers"
)

var errOperationFailed = errors.New("operation failed, see log for details")

type buildInfo struct {
	Version string
	Date    string
	Commit  string
}

// app is the state shared by the subcommands for one invocation.
type app struct {
	flags       *config.StructuredConfig
	metricsFile string

	cfg      *config.StructuredConfig
	log      *logger.Logger
	registry *prometheus.Registry
	workers  *workers.Workers
	store    *persistence.Facade
}

// newRootCommand wires the subcommands to a. The caller must call a.close
// once the command has run, whether it failed or not.
func newRootCommand(a *app, build buildInfo) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "vaultkv",
		Short:         "Encrypted typed key-value store",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Annotations["offline"] == "true" {
				return nil
			}
			return a.open(cmd)
		},
	}

	a.flags = config.BindFlags(cmd.PersistentFlags())
	cmd.PersistentFlags().StringVar(&a.metricsFile, "metrics-file", "", "Write Prometheus metrics in text format to this file on exit")

	cmd.AddCommand(
		newPutCommand(a),
		newGetCommand(a),
		newDeleteCommand(a),
		newDeletePrefixCommand(a),
		newPurgeCommand(a),
		newKeysCommand(a),
		newCountCommand(a),
		newVersionCommand(build),
	)
	return cmd
}

func (a *app) open(cmd *cobra.Command) error {
	cfg, err := config.GetStructuredConfig(a.flags)
	if err != nil {
		return fmt.Errorf("error getting configs: %w", err)
	}
	a.cfg = cfg
	a.log = logger.NewFileLogger("vaultkv", cfg.Log.File)
	a.log.Debug().Any("config", redacted(cfg)).Msg("received configs")

	ctx := a.log.WithContext(cmd.Context())
	cmd.SetContext(ctx)

	backend, err := store.NewBackend(ctx, cfg.Storage, a.log)
	if err != nil {
		return fmt.Errorf("error creating backend: %w", err)
	}

	a.registry = prometheus.NewRegistry()
	m, err := metrics.NewMetrics(a.registry, cfg.Metrics.Namespace)
	if err != nil {
		_ = backend.Close()
		return fmt.Errorf("error creating metrics: %w", err)
	}

	policy, err := crypto.ParseInitPolicy(cfg.App.CipherPolicy)
	if err != nil {
		_ = backend.Close()
		return err
	}

	f, err := persistence.NewBuilder(backend, cfg.App.StorageTag).
		WithSalt(cfg.App.Salt).
		WithCipherName(cfg.App.Cipher).
		WithCipherPolicy(policy).
		WithMaxRecordSize(cfg.App.MaxRecordSize).
		WithParallelPartitions(cfg.App.ParallelPartitions).
		WithMaxPayloadSize(cfg.App.MaxPayloadSize).
		WithLogger(a.log).
		WithMetrics(m).
		Build()
	if err != nil {
		_ = backend.Close()
		return fmt.Errorf("error building store: %w", err)
	}
	a.store = f

	a.workers = workers.ForBackend(backend, cfg.Workers, a.log)
	a.workers.Start(ctx)
	return nil
}

func (a *app) close() error {
	if a.store == nil {
		return nil
	}
	a.workers.Stop()

	var errs []error
	if a.metricsFile != "" {
		if err := prometheus.WriteToTextfile(a.metricsFile, a.registry); err != nil {
			errs = append(errs, fmt.Errorf("write metrics: %w", err))
		}
	}
	if err := a.store.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close store: %w", err))
	}
	a.store = nil
	return errors.Join(errs...)
}

// redacted returns a copy of cfg safe to log.
func redacted(cfg *config.StructuredConfig) config.StructuredConfig {
	c := *cfg
	if c.App.Salt != "" {
		c.App.Salt = "***"
	}
	return c
}
