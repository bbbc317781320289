package display

import "os"

// Terminal color codes
const (
	Reset   = "\033[0m"
	Red     = "\033[31m"
	Green   = "\033[32m"
	Yellow  = "\033[33m"
	Blue    = "\033[34m"
	Magenta = "\033[35m"
	Cyan    = "\033[36m"
	White   = "\033[37m"
)

// NoColor is set from the NO_COLOR environment variable
var NoColor = os.Getenv("NO_COLOR") != ""

// Paint wraps text in a color unless colors are disabled
func Paint(color, text string) string {
	if NoColor {
		return text
	}
	return color + text + Reset
}

// Prompt returns a colored prompt string
func Prompt(text string) string {
	if NoColor {
		return text + " > "
	}
	return Yellow + text + Yellow + " > " + Reset
}
