package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	orchestrators "github.com/QuietWire-Civic-AI/dbom-core/internal/domain-orchestrators"
	"github.com/QuietWire-Civic-AI/dbom-core/internal/domain/services"
	"github.com/QuietWire-Civic-AI/dbom-core/internal/external-adapters/gpg"
	"github.com/QuietWire-Civic-AI/dbom-core/internal/external-adapters/yaml"
)

func newSignCmd(a *app) *cobra.Command {
	var (
		keyPath string
		outDir  string
	)

	cmd := &cobra.Command{
		Use:   "sign <file>",
		Short: "Sign an attestation with an OpenPGP key",
		Long: `Canonicalize an attestation (sorted keys, no whitespace) and write it
together with an ASCII-armored detached OpenPGP signature.

Output files are named after the attestation id, or after the input file
when the attestation has no id. The passphrase of an encrypted key is read
from DBOM_PASSPHRASE.`,
		Example: `  dbom sign examples/left-pad.json --key release.asc --out signed/`,
		Args:    fileArg,
		RunE: func(cmd *cobra.Command, args []string) error {
			if keyPath == "" {
				return usageError(cmd, "--key is required")
			}

			data, err := yaml.ReadDocumentFile(args[0])
			if err != nil {
				return err
			}

			signer, err := gpg.NewSignerFromFile(keyPath, []byte(a.v.GetString(keyPassphrase)))
			if err != nil {
				return err
			}

			orch := orchestrators.NewDBoMOrchestrator(nil, nil, services.NewQueryService(), a.logger())
			signed, err := orch.Sign(cmd.Context(), data, signer)
			if err != nil {
				return err
			}

			base := outputBase(signed.Attestation.ID, args[0])
			docPath := filepath.Join(outDir, base+".json")
			sigPath := docPath + ".asc"

			if err := os.MkdirAll(outDir, 0o750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
			if err := os.WriteFile(docPath, signed.Canonical, 0o600); err != nil {
				return fmt.Errorf("failed to write %s: %w", docPath, err)
			}
			if err := os.WriteFile(sigPath, signed.Signature, 0o600); err != nil {
				return fmt.Errorf("failed to write %s: %w", sigPath, err)
			}

			fmt.Fprintf(a.stdout, "digest: %s\n", signed.Digest)
			fmt.Fprintf(a.stdout, "key: %s\n", signed.KeyID)
			fmt.Fprintf(a.stdout, "wrote %s\n", docPath)
			fmt.Fprintf(a.stdout, "wrote %s\n", sigPath)
			return nil
		},
	}

	cmd.Flags().StringVar(&keyPath, "key", "", "Armored or binary OpenPGP private key")
	cmd.Flags().StringVar(&outDir, "out", ".", "Directory for the canonical attestation and signature")
	return cmd
}

// outputBase derives a file name from the attestation id, falling back to the input name
func outputBase(id, inputPath string) string {
	if id != "" {
		return strings.NewReplacer("/", "_", "\\", "_", ":", "_").Replace(id)
	}
	name := filepath.Base(inputPath)
	return strings.TrimSuffix(name, filepath.Ext(name))
}
