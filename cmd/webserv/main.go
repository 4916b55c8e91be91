// Command webserv compiles an nginx-style configuration file and serves
// HTTP/1.1 requests from a single-threaded, select()-based event loop.
package main

import (
	"errors"
	"fmt"
	"os"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ivanlilla/webserv/internal/applog"
	"github.com/ivanlilla/webserv/internal/config"
	"github.com/ivanlilla/webserv/internal/eventloop"
	"github.com/ivanlilla/webserv/internal/listener"
	"github.com/ivanlilla/webserv/internal/response"
)

const defaultConfigPath = "configs/default.conf"

func main() {
	os.Exit(run())
}

func run() int {
	applog.Init(os.Stderr, zerolog.InfoLevel)

	var dumpConfig bool

	root := &cobra.Command{
		Use:           "webserv [config-path]",
		Short:         "an nginx-style HTTP/1.1 origin server",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := defaultConfigPath
			if len(args) == 1 {
				path = args[0]
			}

			servers, err := config.ParseFile(path)
			if err != nil {
				return err
			}

			if dumpConfig {
				out, err := config.ExportYAML(servers)
				if err != nil {
					return err
				}
				fmt.Fprint(cmd.OutOrStdout(), out)
				return nil
			}

			table, err := listener.Bind(servers)
			if err != nil {
				return err
			}
			defer table.Close()

			applog.L().Info().Int("listeners", len(table.FDs())).Msg("ready")

			loop := eventloop.New(table, response.StubPipeline{})
			return loop.Run()
		},
	}

	root.Flags().BoolVar(&dumpConfig, "dump-config", false, "parse and validate the config, print it as YAML, and exit")

	if err := root.Execute(); err != nil {
		var sigErr *eventloop.SignalExit
		if errors.As(err, &sigErr) {
			applog.L().Info().Str("signal", sigErr.Signal.String()).Msg("shutting down")
			if sig, ok := sigErr.Signal.(syscall.Signal); ok {
				return int(sig)
			}
			return 1
		}
		applog.L().Error().Err(err).Msg("fatal")
		return 1
	}

	return 0
}
