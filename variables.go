package main

import "strings"

// expandRefs replaces {{name}} placeholders with values from vars. Unknown
// placeholders are left as they are.
func expandRefs(s string, vars map[string]string) string {
	for name, val := range vars {
		s = strings.ReplaceAll(s, "{{"+name+"}}", val)
	}
	return s
}
