// Package util holds shell quoting for commands run on a remote host.
package util

import "strings"

// ShellQuote wraps s in single quotes so the shell treats it literally.
// Embedded single quotes become '\''.
func ShellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// ShellQuotePreserveTilde quotes a path but leaves a leading ~ or ~/
// unquoted, so the remote shell expands it to that user's home. Other
// forms, including ~user, are quoted whole.
func ShellQuotePreserveTilde(path string) string {
	switch {
	case path == "~":
		return path
	case strings.HasPrefix(path, "~/"):
		return "~/" + ShellQuote(path[2:])
	default:
		return ShellQuote(path)
	}
}
