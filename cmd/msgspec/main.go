package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// version is set at build time via -ldflags "-X main.version=x.y.z".
var version = "dev"

const toolName = "msgspec"

// exitErr carries a numeric exit code through the cobra error path.
// Convention: 1 means the run completed and found validation errors,
// 2 means the run could not be carried out (usage, config, or I/O).
type exitErr struct {
	code int
	msg  string
}

func (e *exitErr) Error() string { return e.msg }

// codeError returns an exitErr for the given code.
func codeError(code int, format string, args ...any) error {
	return &exitErr{code: code, msg: fmt.Sprintf(format, args...)}
}

func initLogger(verbose, quiet bool) {
	output := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
	}
	level := zerolog.InfoLevel
	switch {
	case verbose:
		level = zerolog.DebugLevel
	case quiet:
		level = zerolog.ErrorLevel
	}
	log.Logger = zerolog.New(output).With().Timestamp().Str("app", toolName).Logger().Level(level)
}

func newRootCmd() *cobra.Command {
	var verbose, quiet bool
	root := &cobra.Command{
		Use:   "msgspec",
		Short: "Build, lay out, and verify fixed-width message specifications",
		Long: "msgspec turns flat specification sheets into canonical message models,\n" +
			"computes exact byte offsets for every field, checks payloads against the\n" +
			"hard-coded value rules, and cross-checks downstream artifacts against the\n" +
			"one model they were generated from.",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			initLogger(verbose, quiet)
		},
	}
	root.PersistentFlags().BoolVar(&verbose, "verbose", false, "Print processing steps to stderr")
	root.PersistentFlags().BoolVar(&quiet, "quiet", false, "Only print errors to stderr")

	root.AddCommand(newBuildCmd())
	root.AddCommand(newLayoutCmd())
	root.AddCommand(newVerifyCmd())
	root.AddCommand(newCheckCmd())
	root.AddCommand(newVersionCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", toolName, version)
		},
	}
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		var ee *exitErr
		if errors.As(err, &ee) {
			fmt.Fprintln(os.Stderr, "Error:", ee.msg)
			os.Exit(ee.code)
		}
		// cobra already printed the error
		os.Exit(2)
	}
}

// writeOutput sends rendered report bytes to a file or stdout.
func writeOutput(out string, data []byte) error {
	if out != "" {
		if err := os.WriteFile(out, data, 0o644); err != nil {
			return codeError(2, "writing output file: %s", err)
		}
		return nil
	}
	if _, err := os.Stdout.Write(data); err != nil {
		return codeError(2, "writing output: %s", err)
	}
	// Ensure output ends with a newline for terminal friendliness.
	if len(data) > 0 && data[len(data)-1] != '\n' {
		fmt.Fprintln(os.Stdout)
	}
	return nil
}
