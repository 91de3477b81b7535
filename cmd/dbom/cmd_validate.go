package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	orchestrators "github.com/QuietWire-Civic-AI/dbom-core/internal/domain-orchestrators"
	"github.com/QuietWire-Civic-AI/dbom-core/internal/domain/entities"
	"github.com/QuietWire-Civic-AI/dbom-core/internal/external-adapters/yaml"
)

const defaultExamplesDir = "examples"

func newValidateCmd(a *app) *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "validate [files...]",
		Short: "Validate attestations against the schema",
		Long: `Validate attestation documents against the DBoM JSON Schema.

Without file arguments every .json, .yaml and .yml file in the examples
directory is validated. Exits 1 if any document is invalid.`,
		Example: `  dbom validate
  dbom validate examples/left-pad.json
  dbom validate --dir attestations/`,
		RunE: func(cmd *cobra.Command, args []string) error {
			orch, _, err := a.orchestrator()
			if err != nil {
				return err
			}
			return runValidate(cmd.Context(), a, orch, dir, args)
		},
	}

	cmd.Flags().StringVar(&dir, "dir", defaultExamplesDir, "Directory validated when no files are given")
	return cmd
}

func runValidate(ctx context.Context, a *app, orch *orchestrators.DBoMOrchestrator, dir string, files []string) error {
	var reports []orchestrators.DocumentReport

	if len(files) == 0 {
		var err error
		reports, err = orch.ValidateRepository(ctx, yaml.NewDocumentRepository(dir))
		if err != nil {
			return err
		}
	} else {
		repo := yaml.NewDocumentRepository("")
		for _, file := range files {
			reports = append(reports, orch.ValidateDocument(ctx, repo, file))
		}
	}

	ok := true
	for _, report := range reports {
		switch {
		case report.Err != nil:
			ok = false
			fmt.Fprintf(a.stderr, "✗ %s %v\n", report.Path, report.Err)
		case !report.Result.Valid:
			ok = false
			fmt.Fprintf(a.stderr, "✗ %s %s\n", report.Path, formatErrors(report.Result.Errors))
		default:
			fmt.Fprintf(a.stdout, "✓ %s valid\n", report.Path)
		}
	}

	if !ok {
		return &exitError{code: exitFailure}
	}
	return nil
}

// formatErrors renders violations as "<path> <message>" joined by " | "
func formatErrors(errs []entities.ValidationError) string {
	parts := make([]string, 0, len(errs))
	for _, e := range errs {
		path := e.Path
		if path == "" {
			path = "/"
		}
		parts = append(parts, path+" "+e.Message)
	}
	return strings.Join(parts, " | ")
}
