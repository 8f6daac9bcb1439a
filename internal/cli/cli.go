// Package cli parses command-line arguments, validates user input, and owns
// process-level concerns like exit codes and result formatting. It
// translates flags into the application's internal options; the core
// packages never print.
package cli

import (
	"flag"
	"fmt"
	"io"
	"strings"
)

// ExitError is an error carrying a specific process exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Options is the validated result of argument parsing.
type Options struct {
	Command string

	ConfigPath string
	CacheDir   string
	LogFormat  string
	LogLevel   string

	// bench
	Iterations int
	Warmup     int

	// init
	Shell string
}

var commands = []string{"compile", "lint", "init", "bench", "profile", "status"}

const usageText = `pzsh - a compiler for fast shell startup.

Usage:
  pzsh [options] <command> [command options] [CONFIG_PATH]

Commands:
  compile   Lint, resolve, and compile the configuration to an artifact.
  lint      Report problems without compiling.
  init      Write a starter configuration file.
  bench     Measure the startup path against the compiled artifact.
  profile   Attribute one startup's time to its stages.
  status    Summarize the most recent compiled artifact.

Options:
`

// Parse processes command-line arguments. It returns the populated options,
// a boolean indicating the program should exit cleanly (help or no
// command), or an ExitError with code 2 for invalid usage.
func Parse(args []string, output io.Writer) (*Options, bool, error) {
	flagSet := flag.NewFlagSet("pzsh", flag.ContinueOnError)
	flagSet.SetOutput(output)
	flagSet.Usage = func() {
		fmt.Fprint(output, usageText)
		flagSet.PrintDefaults()
	}

	configFlag := flagSet.String("config", "", "Path to the configuration file or directory.")
	cacheDirFlag := flagSet.String("cache-dir", "", "Directory for compiled artifacts. Defaults to the user cache directory.")
	logFormatFlag := flagSet.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "warn", "Logging level. Options: 'debug', 'info', 'warn', 'error'.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	if flagSet.NArg() == 0 {
		flagSet.Usage()
		return nil, true, nil
	}
	command := flagSet.Arg(0)
	if !knownCommand(command) {
		return nil, false, &ExitError{
			Code:    2,
			Message: fmt.Sprintf("unknown command %q; expected one of: %s", command, strings.Join(commands, ", ")),
		}
	}

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}
	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}

	opts := &Options{
		Command:    command,
		ConfigPath: *configFlag,
		CacheDir:   *cacheDirFlag,
		LogFormat:  logFormat,
		LogLevel:   logLevel,
		Iterations: 100,
		Shell:      "zsh",
	}
	if err := parseCommandArgs(opts, flagSet.Args()[1:], output); err != nil {
		return nil, false, err
	}
	return opts, false, nil
}

// parseCommandArgs handles the per-command flags and the optional trailing
// configuration path.
func parseCommandArgs(opts *Options, rest []string, output io.Writer) error {
	sub := flag.NewFlagSet(opts.Command, flag.ContinueOnError)
	sub.SetOutput(output)

	var iterations, warmup *int
	var shell *string
	switch opts.Command {
	case "bench":
		iterations = sub.Int("iterations", 100, "Number of measured iterations.")
		warmup = sub.Int("warmup", 0, "Warmup iterations before measurement.")
	case "init":
		shell = sub.String("shell", "zsh", "Target shell for the starter config. Options: 'zsh' or 'bash'.")
	}

	if err := sub.Parse(rest); err != nil {
		return &ExitError{Code: 2, Message: err.Error()}
	}

	if iterations != nil {
		if *iterations <= 0 {
			return &ExitError{Code: 2, Message: "invalid iterations: must be positive"}
		}
		opts.Iterations = *iterations
		opts.Warmup = *warmup
	}
	if shell != nil {
		s := strings.ToLower(*shell)
		if s != "zsh" && s != "bash" {
			return &ExitError{Code: 2, Message: "invalid shell: must be 'zsh' or 'bash'"}
		}
		opts.Shell = s
	}

	if sub.NArg() > 1 {
		return &ExitError{Code: 2, Message: "too many arguments: expected at most one configuration path"}
	}
	if sub.NArg() == 1 {
		opts.ConfigPath = sub.Arg(0)
	}
	return nil
}

func knownCommand(name string) bool {
	for _, c := range commands {
		if c == name {
			return true
		}
	}
	return false
}
