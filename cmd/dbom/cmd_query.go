package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	orchestrators "github.com/QuietWire-Civic-AI/dbom-core/internal/domain-orchestrators"
	"github.com/QuietWire-Civic-AI/dbom-core/internal/domain/entities"
	"github.com/QuietWire-Civic-AI/dbom-core/internal/domain/services"
	"github.com/QuietWire-Civic-AI/dbom-core/internal/external-adapters/yaml"
)

func newQueryCmd(a *app) *cobra.Command {
	var q entities.ClaimQuery

	cmd := &cobra.Command{
		Use:   "query <file>",
		Short: "Print the claims of an attestation",
		Long: `Print the claims of an attestation, optionally filtered by predicate
and by package URL. A purl matches the subject artifact or a claim object.`,
		Example: `  dbom query examples/webapp-release.json --predicate=depends_on
  dbom query examples/left-pad.json --purl=pkg:npm/left-pad@1.0.0`,
		Args: fileArg,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := yaml.ReadDocumentFile(args[0])
			if err != nil {
				return err
			}

			// Querying needs no schema, so the orchestrator is built without the registry
			orch := orchestrators.NewDBoMOrchestrator(nil, nil, services.NewQueryService(), a.logger())
			result, err := orch.Query(cmd.Context(), data, q)
			if err != nil {
				return err
			}

			if result.Count == 0 {
				fmt.Fprintln(a.stdout, "(no matches)")
				return nil
			}
			for _, claim := range result.Claims {
				fmt.Fprintln(a.stdout, formatClaim(claim))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&q.Predicate, "predicate", "", "Only claims with this predicate")
	cmd.Flags().StringVar(&q.Purl, "purl", "", "Only claims about this package URL")
	return cmd
}

func formatClaim(c entities.Claim) string {
	conf := ""
	if c.Confidence != nil {
		conf = strconv.FormatFloat(*c.Confidence, 'f', -1, 64)
	}
	return fmt.Sprintf("- predicate: %s | object: %s | label: %s | conf: %s",
		c.Predicate, c.Object.String(), c.Label, conf)
}
