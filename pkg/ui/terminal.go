package ui

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"awsdash/pkg/cloud"
)

// Banner is printed by interactive commands
const Banner = `
  ┌─────────────────────────────────────┐
  │  awsdash  ·  EC2 status dashboard   │
  └─────────────────────────────────────┘
`

// Output is where the Print helpers write
var Output io.Writer = os.Stdout

var colorEnabled = true

// SetColor enables or disables ANSI colors
func SetColor(enabled bool) {
	colorEnabled = enabled
}

// Color functions for terminal output
var (
	Cyan   = colorize("\033[36m%s\033[0m")
	Yellow = colorize("\033[33m%s\033[0m")
	Red    = colorize("\033[31m%s\033[0m")
	Green  = colorize("\033[32m%s\033[0m")
	Dim    = colorize("\033[2m%s\033[0m")
)

// colorize returns a function that wraps text with ANSI color codes
func colorize(colorString string) func(string) string {
	return func(text string) string {
		if !colorEnabled {
			return text
		}
		return fmt.Sprintf(colorString, text)
	}
}

// PrintBanner prints the banner
func PrintBanner() {
	fmt.Fprint(Output, Cyan(Banner))
}

// PrintError prints an error message in red
func PrintError(msg string, args ...interface{}) {
	if len(args) > 0 {
		fmt.Fprintln(Output, Red(msg+": "+fmt.Sprintf("%v", args[0])))
	} else {
		fmt.Fprintln(Output, Red(msg))
	}
}

// PrintSuccess prints a success message in green
func PrintSuccess(msg string) {
	fmt.Fprintln(Output, Green(msg))
}

// PrintInfo prints a label and value
func PrintInfo(label string, value string) {
	fmt.Fprintf(Output, "%s: %s\n", Cyan(label), Yellow(value))
}

// PrintWarning prints a warning message in yellow
func PrintWarning(msg string, args ...interface{}) {
	if len(args) > 0 {
		fmt.Fprintln(Output, Yellow(msg+": "+fmt.Sprintf("%v", args[0])))
	} else {
		fmt.Fprintln(Output, Yellow(msg))
	}
}

// PrintInstances prints instances as an aligned table
func PrintInstances(instances []cloud.Instance) {
	if len(instances) == 0 {
		fmt.Fprintln(Output, Dim("no instances"))
		return
	}

	tw := tabwriter.NewWriter(Output, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tSTATE")
	for _, inst := range instances {
		name := inst.Name
		if name == "" {
			name = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", inst.ID, name, stateColor(inst.State))
	}
	_ = tw.Flush()
}

func stateColor(state string) string {
	switch state {
	case "running":
		return Green(state)
	case "stopped", "terminated":
		return Red(state)
	default:
		return Yellow(state)
	}
}
