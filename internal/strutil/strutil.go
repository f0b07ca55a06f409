package strutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ShellEscape returns a single-quoted shell literal for value.
func ShellEscape(value string) string {
	if value == "" {
		return "''"
	}
	return "'" + strings.ReplaceAll(value, "'", `'"'"'`) + "'"
}

// JoinArgs renders an argument vector as a copy-pasteable command line.
// Arguments made only of safe characters are left unquoted.
func JoinArgs(program string, args []string) string {
	parts := make([]string, 0, len(args)+1)
	if program != "" {
		parts = append(parts, quoteIfNeeded(program))
	}
	for _, arg := range args {
		parts = append(parts, quoteIfNeeded(arg))
	}
	return strings.Join(parts, " ")
}

func quoteIfNeeded(value string) string {
	if value == "" {
		return "''"
	}
	for _, r := range value {
		if !isPlainRune(r) {
			return ShellEscape(value)
		}
	}
	return value
}

func isPlainRune(r rune) bool {
	return r >= 'a' && r <= 'z' ||
		r >= 'A' && r <= 'Z' ||
		r >= '0' && r <= '9' ||
		strings.ContainsRune("-_./:=@,+%", r)
}

// ExpandPath replaces a leading "~/" with the current user's home directory.
func ExpandPath(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to resolve home directory: %w", err)
		}
		return filepath.Join(home, strings.TrimPrefix(path[1:], "/")), nil
	}
	return path, nil
}

// LastLine returns the last non-empty line of s, trimmed.
func LastLine(s string) string {
	s = strings.TrimRight(s, "\r\n\t ")
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	}
	return strings.TrimSpace(s)
}
