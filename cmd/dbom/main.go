// Command dbom validates, queries, converts and signs DBoM attestations.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/QuietWire-Civic-AI/dbom-core/internal/domain/entities"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

// Exit codes
const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

func main() {
	os.Exit(execute(os.Args[1:], os.Stdout, os.Stderr))
}

func execute(args []string, stdout, stderr io.Writer) int {
	root := newRootCmd(newApp(stdout, stderr))
	root.SetArgs(args)
	return exitCode(root.Execute(), stderr)
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "dbom",
		Short: "Validate, query, convert and sign DBoM attestations",
		Long: `dbom works with DBoM attestation documents.

Attestations are validated against the published JSON Schema, queried for
claims, produced from SPDX documents and signed with OpenPGP keys.

Settings can also be given as environment variables prefixed with DBOM_,
for example DBOM_SCHEMA or DBOM_LOG_LEVEL.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)
	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return usageError(cmd, err.Error())
	})

	root.PersistentFlags().String(keySchema, "", "Path to the attestation JSON Schema (default \"schema/dbom-v0.schema.json\")")
	root.PersistentFlags().Bool(keyEmbeddedSchema, false, "Use the schema compiled into the binary")
	root.PersistentFlags().String(keyLogLevel, "", "Log level: debug, info, warn or error (default \"info\")")
	root.PersistentFlags().String(keyPolicy, "", "YAML mapping policy for SPDX conversion")
	a.bindFlags(root, keySchema, keyEmbeddedSchema, keyLogLevel, keyPolicy)

	root.AddCommand(
		newValidateCmd(a),
		newQueryCmd(a),
		newConvertCmd(a),
		newSignCmd(a),
		newServeCmd(a),
		newVersionCmd(a),
	)
	return root
}

// exitError carries an exit code. A nil err means the command already reported the failure.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit status %d", e.code)
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error {
	return e.err
}

// usageError reports bad arguments together with the command's usage line
func usageError(cmd *cobra.Command, msg string) error {
	return &exitError{
		code: exitUsage,
		err:  fmt.Errorf("%w: %s\nUsage: %s", entities.ErrUsage, msg, cmd.UseLine()),
	}
}

// exitCode prints err, if any, and returns the process exit code for it
func exitCode(err error, stderr io.Writer) int {
	if err == nil {
		return exitOK
	}

	code := exitFailure
	var exitErr *exitError
	if errors.As(err, &exitErr) {
		code = exitErr.code
		if exitErr.err == nil {
			return code
		}
	} else if errors.Is(err, entities.ErrUsage) {
		code = exitUsage
	}

	fmt.Fprintf(stderr, "Error: %v\n", err)
	return code
}

// fileArg requires exactly one positional file argument
func fileArg(cmd *cobra.Command, args []string) error {
	if len(args) != 1 {
		return usageError(cmd, "exactly one file argument is required")
	}
	return nil
}
