package commands

import (
	"fmt"
	"sort"
	"strings"

	"github.com/de-tools/growth-atlas/pkg/store/warehouse"
	"github.com/spf13/cobra"
)

func NewBackendsCmd(registry warehouse.Registry) *cobra.Command {
	return &cobra.Command{
		Use:   "backends",
		Short: "List available warehouse backends",
		RunE: func(cmd *cobra.Command, _ []string) error {
			backends := registry.ListBackends()
			if len(backends) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No warehouse backends registered")
				return nil
			}
			sort.Strings(backends)
			fmt.Fprintf(cmd.OutOrStdout(), "Available backends:\n%s\n", strings.Join(backends, "\n"))
			return nil
		},
	}
}
