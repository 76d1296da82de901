package output

import (
	"fmt"
	"io"

	"github.com/jwalton/go-supportscolor"
)

var (
	green  = "\033[32m"
	red    = "\033[31m"
	yellow = "\033[33m"
	reset  = "\033[0m"
)

func init() {
	if !supportscolor.Stdout().SupportsColor {
		green, red, yellow, reset = "", "", "", ""
	}
}

// PrintCandidate writes one line of the escalation executable lookup.
func PrintCandidate(w io.Writer, path string, found, selected bool) {
	switch {
	case selected:
		fmt.Fprintf(w, "%s[USE]%s     %s\n", green, reset, path)
	case found:
		fmt.Fprintf(w, "%s[FOUND]%s   %s\n", yellow, reset, path)
	default:
		fmt.Fprintf(w, "%s[MISSING]%s %s\n", red, reset, path)
	}
}

// PrintStatus writes the outcome of an elevated command.
func PrintStatus(w io.Writer, command string, exitCode int) {
	if exitCode == 0 {
		fmt.Fprintf(w, "%s[OK]%s %s\n", green, reset, command)
		return
	}
	fmt.Fprintf(w, "%s[FAIL]%s %s\n", red, reset, command)
	fmt.Fprintf(w, "      exit code: %d\n", exitCode)
}
