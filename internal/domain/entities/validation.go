package entities

// ValidationResult is the outcome of validating a document against the schema.
// A failed validation is a normal result, not an error.
type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors"`
}

// ValidationError describes a single schema violation
type ValidationError struct {
	Path       string `json:"path"`       // JSON pointer into the document
	Rule       string `json:"rule"`       // violated keyword, e.g. "required"
	SchemaPath string `json:"schemaPath"` // JSON pointer into the schema
	Message    string `json:"message"`
}

// ClaimQuery filters claims. Empty fields are not applied.
type ClaimQuery struct {
	Predicate string
	Purl      string
}
