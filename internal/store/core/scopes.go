package core

import "strings"

// JoinScopes serializa scopes como lista separada por comas (orden preservado).
func JoinScopes(s []string) string { return strings.Join(s, ",") }

// SplitScopes es la inversa de JoinScopes; ignora vacíos.
func SplitScopes(s string) []string {
	if strings.TrimSpace(s) == "" {
		return []string{}
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
