package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newConvertCmd(a *app) *cobra.Command {
	var (
		pkg      string
		validate bool
		output   string
	)

	cmd := &cobra.Command{
		Use:   "convert <spdx-file>",
		Short: "Convert an SPDX document into an attestation",
		Long: `Convert an SPDX JSON document into a DBoM attestation.

The subject is the package selected with --pkg, or the first package when
--pkg is empty or unknown. Claims are derived from the relationships whose
source is that package.`,
		Example: `  dbom convert sbom.spdx.json
  dbom convert sbom.spdx.json --pkg SPDXRef-Package-app --validate -o app.dbom.json`,
		Args: fileArg,
		RunE: func(cmd *cobra.Command, args []string) error {
			//nolint:gosec // G304: path is a user-supplied document
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", args[0], err)
			}

			orch, _, err := a.orchestrator()
			if err != nil {
				return err
			}

			result, err := orch.Convert(cmd.Context(), data, pkg, validate)
			if err != nil {
				return err
			}

			out, err := json.MarshalIndent(result.Attestation, "", "  ")
			if err != nil {
				return err
			}
			out = append(out, '\n')

			if output == "" {
				_, _ = a.stdout.Write(out)
			} else {
				if err := os.WriteFile(output, out, 0o600); err != nil {
					return fmt.Errorf("failed to write %s: %w", output, err)
				}
				fmt.Fprintf(a.stdout, "wrote %s (%s)\n", output, result.Digest)
			}

			if !result.Valid {
				fmt.Fprintf(a.stderr, "✗ converted attestation is invalid: %s\n", formatErrors(result.Errors))
				return &exitError{code: exitFailure}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&pkg, "pkg", "", "SPDXID of the package to use as the subject")
	cmd.Flags().BoolVar(&validate, "validate", false, "Validate the converted attestation against the schema")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the attestation to a file instead of stdout")
	return cmd
}
