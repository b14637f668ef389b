package models

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

const (
	schemaBaseLength   = 50
	tenantIDBaseLength = 30
	maxNameAttempts    = 9999
)

// TakenFunc reports whether a candidate identifier is already in use.
type TakenFunc func(candidate string) (bool, error)

// Slugify folds a display name to lowercase ASCII words joined by sep.
// Accents are dropped, every other non alphanumeric run becomes one separator.
func Slugify(name string, sep rune) string {
	var b strings.Builder
	pending := false
	for _, r := range norm.NFKD.String(name) {
		switch {
		case r > unicode.MaxASCII:
			continue
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if pending && b.Len() > 0 {
				b.WriteRune(sep)
			}
			pending = false
			b.WriteRune(unicode.ToLower(r))
		default:
			pending = true
		}
	}
	return b.String()
}

func schemaBase(name string) string {
	base := Slugify(name, '_')
	if base == "" {
		return "tenant_unnamed"
	}
	if unicode.IsDigit(rune(base[0])) || strings.HasPrefix(base, "pg_") {
		base = "tenant_" + base
	}
	if len(base) > schemaBaseLength {
		base = strings.TrimRight(base[:schemaBaseLength], "_")
	}
	return base
}

// GenerateSchemaName derives a unique schema name from a tenant name,
// appending _N on collision while staying within 63 characters. Reserved
// names count as taken.
func GenerateSchemaName(name string, taken TakenFunc) (string, error) {
	base := schemaBase(name)
	candidate := base
	for counter := 1; ; counter++ {
		exists := IsReservedSchemaName(candidate)
		if !exists {
			var err error
			if exists, err = taken(candidate); err != nil {
				return "", err
			}
		}
		if !exists {
			return candidate, nil
		}
		if counter > maxNameAttempts {
			return "", Error{Field: "schema_name", Message: "Could not generate a unique schema name, try a different name.", Validation: true}
		}
		suffix := fmt.Sprintf("_%d", counter)
		trimmed := base
		if len(trimmed) > MaxSchemaNameLength-len(suffix) {
			trimmed = trimmed[:MaxSchemaNameLength-len(suffix)]
		}
		candidate = trimmed + suffix
	}
}

func tenantIDBase(name string) string {
	base := Slugify(name, '_')
	if len(base) > tenantIDBaseLength {
		base = base[:tenantIDBaseLength]
	}
	if base == "" {
		return "tenant_unnamed"
	}
	if unicode.IsDigit(rune(base[0])) {
		base = "t_" + base
	}
	return base
}

// GenerateTenantID derives the business tenant id, <slug>_001 with the
// counter increased until it is unused.
func GenerateTenantID(name string, taken TakenFunc) (string, error) {
	base := tenantIDBase(name)
	for counter := 1; counter <= maxNameAttempts; counter++ {
		candidate := fmt.Sprintf("%s_%03d", base, counter)
		exists, err := taken(candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
	}
	return "", Error{Field: "tenant_id", Message: "Could not generate a unique tenant id, try a different name.", Validation: true}
}

// DomainCandidate returns the nth candidate for a tenant's primary domain:
// <subdomain>.<base> first, then <subdomain>N.<base>.
func DomainCandidate(subdomain, baseDomain string, attempt int) string {
	if attempt == 0 {
		return fmt.Sprintf("%s.%s", subdomain, baseDomain)
	}
	return fmt.Sprintf("%s%d.%s", subdomain, attempt, baseDomain)
}
