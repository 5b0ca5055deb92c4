package cli

import (
	"fmt"
	"strings"
)

// joinArgs склеивает аргументы так же, как fmt.Println
func joinArgs(a []any) string {
	parts := make([]string, len(a))
	for i, v := range a {
		parts[i] = fmt.Sprint(v)
	}
	return strings.Join(parts, " ")
}

func sprintf(format string, a ...any) string {
	return fmt.Sprintf(format, a...)
}
