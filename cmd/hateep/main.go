// Command hateep builds and inspects HAT ID EEPROM images.
//
// Usage:
//
//	hateep build [--template-dir DIR] [--serial N] [--edate YYYY-MM-DD|today] [--mac MAC] CONFIG [OUTPUT]
//	hateep inspect [--strict] IMAGE
//	hateep uuid --pid N --pver N --prev N --serial N
//
// glog flags (-v, --logtostderr, ...) are accepted by every command.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/golang/glog"
	"github.com/spf13/cobra"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	keyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))
)

func main() {
	code := run(os.Args[1:])
	glog.Flush()
	os.Exit(code)
}

func run(args []string) int {
	root := newRootCmd()
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("ERROR: "+err.Error()))
		return 1
	}
	return 0
}

// globalOptions are the flags shared by all subcommands.
type globalOptions struct {
	checksum checksumValue
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	// Warnings go to stderr unless the user asks for log files.
	_ = flag.Set("logtostderr", "true")

	root := &cobra.Command{
		Use:           "hateep",
		Short:         "Build and inspect HAT ID EEPROM images",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// glog reads its flags from the go flag set, which cobra has
			// already filled in; mark it parsed.
			_ = flag.CommandLine.Parse(nil)
		},
	}
	root.PersistentFlags().AddGoFlagSet(flag.CommandLine)
	root.PersistentFlags().Var(&opts.checksum, "checksum", "atom checksum: xmodem or arc")

	root.AddCommand(
		newBuildCmd(opts),
		newInspectCmd(opts),
		newUUIDCmd(),
	)
	return root
}

// glogLogger adapts glog to builder.Logger.
type glogLogger struct{}

func (glogLogger) Debug(msg string, keysAndValues ...interface{}) {
	if glog.V(1) {
		glog.InfoDepth(1, formatKV(msg, keysAndValues))
	}
}

func (glogLogger) Info(msg string, keysAndValues ...interface{}) {
	glog.InfoDepth(1, formatKV(msg, keysAndValues))
}

func (glogLogger) Error(msg string, keysAndValues ...interface{}) {
	glog.ErrorDepth(1, formatKV(msg, keysAndValues))
}

func formatKV(msg string, keysAndValues []interface{}) string {
	var b strings.Builder
	b.WriteString(msg)
	for i := 0; i < len(keysAndValues); i += 2 {
		if i+1 < len(keysAndValues) {
			fmt.Fprintf(&b, " %v=%v", keysAndValues[i], keysAndValues[i+1])
		} else {
			fmt.Fprintf(&b, " %v", keysAndValues[i])
		}
	}
	return b.String()
}
