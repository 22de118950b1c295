package validation

import "regexp"

// Reglas para el nombre de una app interna (identificador estable, no el display name):
// - Solo minúsculas.
// - Empieza y termina con [a-z0-9].
// - En el medio admite [a-z0-9_.-].
// - Largo 1..64.
//
// Válidos: crm, billing-v2, data.warehouse, a
// Inválidos: CRM, "my app", -crm, crm., "", 65+ chars.
var appNameRe = regexp.MustCompile(`^[a-z0-9](?:[a-z0-9_\.-]{0,62}[a-z0-9])?$`)

// ValidAppName reporta si name cumple el patrón.
func ValidAppName(name string) bool {
	return appNameRe.MatchString(name)
}
