package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/MKhiriev/go-vault-store/models"
)

func newPutCommand(a *app) *cobra.Command {
	var valueType string
	cmd := &cobra.Command{
		Use:   "put KEY VALUE",
		Short: "Store a value under a key",
		Example: "  vaultkv put greeting hello\n" +
			"  vaultkv put answer 42 --type int\n" +
			"  vaultkv put langs go,sql --type set\n" +
			"  vaultkv put limits cpu=2,mem=4 --type map",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			value, err := parseValue(valueType, args[1])
			if err != nil {
				return err
			}
			if !a.store.Put(cmd.Context(), args[0], value) {
				return errOperationFailed
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&valueType, "type", "t", typeString, "Value type: string, int, float, bool, list, set or map")
	return cmd
}

func newGetCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get KEY",
		Short: "Print the value stored under a key as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := a.store.GetE(cmd.Context(), args[0])
			if errors.Is(err, models.ErrKeyNotFound) {
				return fmt.Errorf("key %q not found", args[0])
			}
			if err != nil {
				return err
			}
			out, err := json.Marshal(printable(v))
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return err
		},
	}
}

func newDeleteCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete KEY",
		Short: "Delete a key and all of its partitions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !a.store.Delete(cmd.Context(), args[0]) {
				return errOperationFailed
			}
			return nil
		},
	}
}

func newDeletePrefixCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete-prefix PREFIX",
		Short: "Delete every key starting with PREFIX (case-sensitive)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !a.store.DeleteKeysWithPrefix(cmd.Context(), args[0]) {
				return errOperationFailed
			}
			return nil
		},
	}
}

func newPurgeCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "purge",
		Short: "Delete every key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !a.store.DeleteAll(cmd.Context()) {
				return errOperationFailed
			}
			return nil
		},
	}
}

func newKeysCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "keys",
		Short: "List stored keys",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			keys, err := a.store.Keys(cmd.Context())
			if err != nil {
				return err
			}
			for _, k := range keys {
				if _, err := fmt.Fprintln(cmd.OutOrStdout(), k); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func newCountCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "count",
		Short: "Print the number of stored keys",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			n := a.store.Count(cmd.Context())
			if n < 0 {
				return errOperationFailed
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), n)
			return err
		},
	}
}

func newVersionCommand(build buildInfo) *cobra.Command {
	return &cobra.Command{
		Use:         "version",
		Short:       "Print build version information",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{"offline": "true"},
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(),
				"Build version: %s\nBuild date: %s\nBuild commit: %s\n",
				orNA(build.Version), orNA(build.Date), orNA(build.Commit))
			return err
		},
	}
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

// printable turns sets into sorted lists so they render as JSON arrays.
func printable(v any) any {
	if set, ok := v.(map[string]struct{}); ok {
		out := make([]string, 0, len(set))
		for k := range set {
			out = append(out, k)
		}
		sort.Strings(out)
		return out
	}
	return v
}
