// Package console renders operator-facing status lines, colored when the
// terminal supports it and plain otherwise.
package console

import (
	"fmt"
	"os"

	supportscolor "github.com/jwalton/go-supportscolor"
)

const (
	Reset  = "\033[0m"
	Red    = "\033[31m"
	Green  = "\033[32m"
	Yellow = "\033[33m"
)

func InfoF(format string, args ...any) {
	fmt.Printf(format+"\n", args...)
}

func DoneF(format string, args ...any) {
	fmt.Printf(colorString("[√] "+format+"\n", Green), args...)
}

func WarnF(format string, args ...any) {
	fmt.Printf(colorString("[!] "+format+"\n", Yellow), args...)
}

// ErrorF writes to stderr so fatal messages survive stdout redirection
func ErrorF(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorStringErr("[X] "+format+"\n", Red), args...)
}

func colorString(str, colour string) string {
	if supportscolor.Stdout().SupportsColor {
		return colour + str + Reset
	}
	return str
}

func colorStringErr(str, colour string) string {
	if supportscolor.Stderr().SupportsColor {
		return colour + str + Reset
	}
	return str
}
