package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/QuietWire-Civic-AI/dbom-core/schema"
)

func newVersionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version and schema identifier",
		Args:  cobra.NoArgs,
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Fprintf(a.stdout, "dbom %s\nschema %s\n", version, schema.ID)
		},
	}
}
