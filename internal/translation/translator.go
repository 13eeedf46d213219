// Package translation drafts target-language segment payloads from their
// English source through a batch translator.
package translation

import (
	"strings"
)

// Reconcile enforces the "same keys back" contract on a translator reply:
// keys missing or blank in translated keep their source text and keys not
// present in source are dropped.
func Reconcile(source, translated map[string]string) map[string]string {
	out := make(map[string]string, len(source))
	for key, text := range source {
		if value, ok := translated[key]; ok && strings.TrimSpace(value) != "" {
			out[key] = value
			continue
		}
		out[key] = text
	}
	return out
}
