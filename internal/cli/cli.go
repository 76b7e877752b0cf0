package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/specialistvlad/metaxml/internal/app"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Parse processes command-line arguments. It returns a populated Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("metaxml", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
metaxml - Renders HCL document descriptions as tab-indented pseudo-XML.

Usage:
  metaxml [options] [DOC_PATH]

Arguments:
  DOC_PATH
    Path to a single .hcl document or a directory containing .hcl documents.

Options:
`)
		flagSet.PrintDefaults()
	}

	configFlag := flagSet.String("config", "", "Path to a YAML config file; flags given explicitly override it.")
	docFlag := flagSet.String("doc", "", "Path to the document file or directory.")
	dFlag := flagSet.String("d", "", "Path to the document file or directory (shorthand).")
	outFlag := flagSet.String("out", "", "Write the rendering to this file instead of stdout.")
	logFormatFlag := flagSet.String("log-format", "auto", "Log output format. Options: 'text', 'json' or 'auto'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	indentFlag := flagSet.Int("indent", 0, "Tab level the rendering starts at.")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	var cfg app.Config
	if *configFlag != "" {
		fileCfg, err := app.LoadConfigFile(*configFlag)
		if err != nil {
			return nil, false, &ExitError{Code: 2, Message: err.Error()}
		}
		cfg = fileCfg
		slog.Debug("Config file loaded.", "path", *configFlag)
	}

	set := make(map[string]bool)
	flagSet.Visit(func(f *flag.Flag) { set[f.Name] = true })

	if set["out"] || cfg.OutPath == "" {
		cfg.OutPath = *outFlag
	}
	if set["log-format"] || cfg.LogFormat == "" {
		cfg.LogFormat = *logFormatFlag
	}
	if set["log-level"] || cfg.LogLevel == "" {
		cfg.LogLevel = *logLevelFlag
	}
	// Values from the file are as case-insensitive as the flags.
	cfg.LogFormat = strings.ToLower(cfg.LogFormat)
	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	if set["indent"] {
		cfg.Indent = *indentFlag
	}

	if *docFlag != "" {
		cfg.DocPath = *docFlag
	} else if *dFlag != "" {
		cfg.DocPath = *dFlag
	} else if flagSet.NArg() > 0 {
		cfg.DocPath = flagSet.Arg(0)
	}
	slog.Debug("Document path determined.", "path", cfg.DocPath)

	if cfg.DocPath == "" {
		slog.Debug("No document path provided, printing usage and exiting.")
		flagSet.Usage()
		return nil, true, nil
	}

	config, err := app.NewConfig(cfg)
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "config", config)
	return config, false, nil
}
