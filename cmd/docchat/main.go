// Command docchat is a terminal client for chatting with documents.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/custodia-labs/docchat/internal/adapters/driven/config/file"
	"github.com/custodia-labs/docchat/internal/adapters/driving/cli"
	"github.com/custodia-labs/docchat/internal/logger"
)

// version is injected at build time via -ldflags.
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	path := configPathFromArgs(os.Args[1:])
	if path == "" {
		var err error
		path, err = file.DefaultPath()
		if err != nil {
			return err
		}
	}

	cfg, err := file.Load(path)
	if err != nil {
		return err
	}

	services, cleanup, err := buildServices(cfg)
	if err != nil {
		// Leave the services unset so settings and version still work.
		// Commands that need them report the configuration problem.
		logger.Debug("services unavailable: %v", err)
		fmt.Fprintf(os.Stderr, "Warning: %v\nRun 'docchat settings' to configure providers.\n", err)
	} else {
		defer cleanup()
		cli.SetServices(services.Session, services.Chat, services.Summary)
	}

	return cli.Execute(version)
}

// configPathFromArgs extracts --config before cobra parses flags, since the
// services are built from the config ahead of command dispatch.
func configPathFromArgs(args []string) string {
	for i, arg := range args {
		switch {
		case arg == "--config":
			if i+1 < len(args) {
				return args[i+1]
			}
		case strings.HasPrefix(arg, "--config="):
			return strings.TrimPrefix(arg, "--config=")
		}
	}
	return ""
}
