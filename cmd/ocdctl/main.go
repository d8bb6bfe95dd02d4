// ocdctl is a command-line client for OpenOCD's Tcl RPC service.
//
// It talks to one daemon selected either by --host/--port flags or by a
// named entry in a TOML config file, and offers one-shot commands plus an
// interactive shell.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/arloliu/go-openocd/logger"
	"github.com/arloliu/go-openocd/ocd"
)

var (
	flagHost    string
	flagPort    int
	flagTimeout time.Duration
	flagConfig  string
	flagDaemon  string
	flagDebug   bool
)

var rootCmd = &cobra.Command{
	Use:   "ocdctl",
	Short: "Control an OpenOCD daemon over its Tcl RPC port",
	Long: `ocdctl talks to the Tcl RPC service of a running OpenOCD daemon
(default 127.0.0.1:6666). Commands are wrapped so that per-command
success or failure is reported reliably.

Several daemons can be declared in a TOML config file and selected
with --daemon:

    [daemons.board-a]
    host = "10.0.0.5"
    port = 6666
    timeout = "10s"`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if flagDebug {
			logger.SetLevel(logger.DebugLevel)
		}
	},
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagHost, "host", ocd.DefaultHost, "OpenOCD host")
	rootCmd.PersistentFlags().IntVar(&flagPort, "port", ocd.DefaultPort, "OpenOCD Tcl RPC port")
	rootCmd.PersistentFlags().DurationVar(&flagTimeout, "timeout", ocd.DefaultRecvTimeout, "default command timeout")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "path to a TOML config file declaring daemons")
	rootCmd.PersistentFlags().StringVar(&flagDaemon, "daemon", "", "named daemon from the config file")
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "enable debug logging")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(stateCmd)
	rootCmd.AddCommand(haltCmd)
	rootCmd.AddCommand(resumeCmd)
	rootCmd.AddCommand(stepCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(shellCmd)
}

// connect dials the selected daemon. The caller must Disconnect the
// returned client.
func connect() (*ocd.Client, error) {
	spec := daemonSpec{Host: flagHost, Port: flagPort, Timeout: flagTimeout}

	if flagConfig != "" {
		daemons, err := loadConfig(flagConfig)
		if err != nil {
			return nil, err
		}

		registry, err := buildRegistry(daemons)
		if err != nil {
			return nil, err
		}

		client, err := selectDaemon(registry, daemons, flagDaemon)
		if err != nil {
			return nil, err
		}

		if err := client.Connect(); err != nil {
			return nil, err
		}

		return client, nil
	}

	if flagDaemon != "" {
		return nil, fmt.Errorf("--daemon %q requires --config", flagDaemon)
	}

	cfg, err := ocd.NewConnectionConfig(spec.Host, spec.Port, ocd.WithDefaultTimeout(spec.Timeout))
	if err != nil {
		return nil, err
	}

	return ocd.Dial(cfg)
}
