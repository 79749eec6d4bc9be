package bt

import (
	"strings"
)

// Format renders the tree one node per line, indented by depth.
func Format(root Task) string {
	var b strings.Builder
	Walk(root, func(n Task, depth int) bool {
		b.WriteString(strings.Repeat("  ", depth))
		b.WriteString(n.String())
		b.WriteByte('\n')
		return true
	})
	return b.String()
}
