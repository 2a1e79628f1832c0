// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package kb

import "strings"

var stringEscaper = strings.NewReplacer(`\`, `\\`, `'`, `''`)

// quoteString renders s as a single-quoted SQL literal.
func quoteString(s string) string {
	return "'" + stringEscaper.Replace(s) + "'"
}

// quoteIdent renders a validated identifier in backticks.
func quoteIdent(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}
