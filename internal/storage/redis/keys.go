package redis

import "fmt"

// documentKey returns the key holding the JSON account document
func documentKey(prefix string) string {
	return fmt.Sprintf("%s:accounts:document", prefix)
}

// revisionKey returns the key counting committed replacements
func revisionKey(prefix string) string {
	return fmt.Sprintf("%s:accounts:revision", prefix)
}
