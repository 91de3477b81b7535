package entities

import "github.com/package-url/packageurl-go"

// IsPurl reports whether s parses as a package URL (scheme "pkg:")
func IsPurl(s string) bool {
	if s == "" {
		return false
	}
	_, err := packageurl.FromString(s)
	return err == nil
}
