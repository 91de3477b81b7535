package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/QuietWire-Civic-AI/dbom-core/internal/domain-adapters/gateways"
	orchestrators "github.com/QuietWire-Civic-AI/dbom-core/internal/domain-orchestrators"
	"github.com/QuietWire-Civic-AI/dbom-core/internal/domain/interfaces"
	servicesif "github.com/QuietWire-Civic-AI/dbom-core/internal/domain/interfaces/services"
	"github.com/QuietWire-Civic-AI/dbom-core/internal/domain/services"
	"github.com/QuietWire-Civic-AI/dbom-core/internal/external-adapters/logging"
	"github.com/QuietWire-Civic-AI/dbom-core/internal/external-adapters/yaml"
	"github.com/QuietWire-Civic-AI/dbom-core/schema"
)

// Configuration keys. Each is settable by flag or by DBOM_<KEY> (dashes become underscores).
const (
	keySchema         = "schema"
	keyEmbeddedSchema = "embedded-schema"
	keyLogLevel       = "log-level"
	keyPolicy         = "policy"
	keyAddr           = "addr"
	keyPort           = "port"
	keyPassphrase     = "passphrase"
)

const defaultPort = 8787

// app carries process configuration and output streams into subcommands
type app struct {
	v      *viper.Viper
	stdout io.Writer
	stderr io.Writer
}

func newApp(stdout, stderr io.Writer) *app {
	v := viper.New()
	v.SetEnvPrefix("DBOM")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault(keySchema, schema.DefaultPath)
	v.SetDefault(keyLogLevel, "info")
	v.SetDefault(keyPort, defaultPort)
	_ = v.BindEnv(keyPort, "DBOM_PORT", "PORT")

	return &app{v: v, stdout: stdout, stderr: stderr}
}

// bindFlags exposes the named flags of cmd through viper
func (a *app) bindFlags(cmd *cobra.Command, names ...string) {
	for _, name := range names {
		flag := cmd.Flags().Lookup(name)
		if flag == nil {
			flag = cmd.PersistentFlags().Lookup(name)
		}
		if flag != nil {
			_ = a.v.BindPFlag(name, flag)
		}
	}
}

func (a *app) logger() interfaces.Logger {
	return logging.New(a.stderr, a.v.GetString(keyLogLevel))
}

// listenAddr returns the configured address, falling back to all interfaces on the port
func (a *app) listenAddr() string {
	if addr := a.v.GetString(keyAddr); addr != "" {
		return addr
	}
	return ":" + strconv.Itoa(a.v.GetInt(keyPort))
}

// registry loads the attestation schema. Failure here is fatal for every command.
func (a *app) registry(logger interfaces.Logger) (*gateways.SchemaRegistry, error) {
	registry := gateways.NewSchemaRegistry(
		gateways.WithSchemaPath(a.v.GetString(keySchema)),
		gateways.WithRegistryLogger(logger),
	)

	if a.v.GetBool(keyEmbeddedSchema) {
		if err := registry.LoadEmbedded(); err != nil {
			return nil, err
		}
	} else if err := registry.Load(); err != nil {
		return nil, err
	}

	// Compile eagerly so a broken schema stops the process before any input is read
	if _, err := registry.Validator(); err != nil {
		return nil, err
	}
	return registry, nil
}

func (a *app) mapper() (servicesif.MappingService, error) {
	var opts []services.MapperOption

	if path := a.v.GetString(keyPolicy); path != "" {
		policy, err := yaml.NewPolicyParser().ParseFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load mapping policy: %w", err)
		}
		opts = append(opts, services.WithPolicy(policy))
	}

	return services.NewSPDXMapper(opts...)
}

// orchestrator wires the full stack; schemaID is returned for metadata output
func (a *app) orchestrator() (*orchestrators.DBoMOrchestrator, string, error) {
	logger := a.logger()

	registry, err := a.registry(logger)
	if err != nil {
		return nil, "", err
	}

	mapper, err := a.mapper()
	if err != nil {
		return nil, "", err
	}

	orch := orchestrators.NewDBoMOrchestrator(
		services.NewValidationService(registry),
		mapper,
		services.NewQueryService(),
		logger,
	)
	return orch, registry.SchemaID(), nil
}
