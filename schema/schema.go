// Package schema embeds the published DBoM attestation schema.
package schema

import _ "embed"

// ID is the identifier the attestation schema is registered under
const ID = "https://quietwire.ai/schemas/dbom-v0.schema.json"

// DefaultPath is where the schema is read from, relative to the working directory
const DefaultPath = "schema/dbom-v0.schema.json"

// Default is the schema document shipped with this module
//
//go:embed dbom-v0.schema.json
var Default []byte
