// Command spdx2dbom converts an SPDX JSON document into a DBoM attestation on stdout.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/QuietWire-Civic-AI/dbom-core/internal/domain/entities"
	"github.com/QuietWire-Civic-AI/dbom-core/internal/domain/services"
	"github.com/QuietWire-Civic-AI/dbom-core/internal/external-adapters/yaml"
)

func main() {
	os.Exit(execute(os.Args[1:], os.Stdout, os.Stderr))
}

func execute(args []string, stdout, stderr io.Writer) int {
	cmd := newCommand(stdout)
	cmd.SetArgs(args)

	err := cmd.Execute()
	switch {
	case err == nil:
		return 0
	case errors.Is(err, entities.ErrUsage):
		fmt.Fprintf(stderr, "%v\nUsage: %s\n", err, cmd.UseLine())
		return 2
	default:
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
}

func newCommand(stdout io.Writer) *cobra.Command {
	var pkg, policyPath string

	cmd := &cobra.Command{
		Use:   "spdx2dbom <spdx-file>",
		Short: "Convert an SPDX document into a DBoM attestation",
		Long: `Convert an SPDX JSON document into a DBoM attestation printed on stdout.

The subject is the package selected with --pkg; an empty or unknown SPDXID
selects the first package.`,
		Args: func(_ *cobra.Command, args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("%w: an SPDX file argument is required", entities.ErrUsage)
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(_ *cobra.Command, args []string) error {
			var opts []services.MapperOption
			if policyPath != "" {
				policy, err := yaml.NewPolicyParser().ParseFile(policyPath)
				if err != nil {
					return err
				}
				opts = append(opts, services.WithPolicy(policy))
			}

			mapper, err := services.NewSPDXMapper(opts...)
			if err != nil {
				return err
			}

			//nolint:gosec // G304: path is a user-supplied document
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", args[0], err)
			}

			attestation, err := mapper.MapSPDXBytes(data, pkg)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(attestation)
		},
	}
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return fmt.Errorf("%w: %v", entities.ErrUsage, err)
	})

	cmd.Flags().StringVar(&pkg, "pkg", "", "SPDXID of the package to use as the subject")
	cmd.Flags().StringVar(&policyPath, "policy", "", "YAML mapping policy")
	return cmd
}
