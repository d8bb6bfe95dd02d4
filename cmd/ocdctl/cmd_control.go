package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arloliu/go-openocd/ocd"
)

// withClient runs fn against a freshly connected client and releases the
// connection on every return path.
func withClient(fn func(client *ocd.Client) error) error {
	client, err := connect()
	if err != nil {
		return err
	}
	defer client.Disconnect()

	return fn(client)
}

var stateCmd = &cobra.Command{
	Use:   "state",
	Short: "Print the run state of the current target",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(func(client *ocd.Client) error {
			state, err := client.CurState()
			if err != nil {
				return err
			}
			fmt.Println(state)

			return nil
		})
	},
}

var haltCmd = &cobra.Command{
	Use:   "halt",
	Short: "Halt the current target",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(func(client *ocd.Client) error {
			return client.Halt()
		})
	},
}

var resumeCmd = &cobra.Command{
	Use:   "resume",
	Short: "Resume the current target",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(func(client *ocd.Client) error {
			return client.Resume()
		})
	},
}

var stepCmd = &cobra.Command{
	Use:   "step",
	Short: "Single-step the current target",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(func(client *ocd.Client) error {
			return client.Step()
		})
	},
}

var resetCmd = &cobra.Command{
	Use:       "reset [run|halt|init]",
	Short:     "Reset the current target",
	Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"run", "halt", "init"},
	RunE: func(cmd *cobra.Command, args []string) error {
		mode := "run"
		if len(args) == 1 {
			mode = args[0]
		}

		return withClient(func(client *ocd.Client) error {
			switch mode {
			case "halt":
				return client.ResetHalt()
			case "init":
				return client.ResetInit()
			default:
				return client.ResetRun()
			}
		})
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the OpenOCD version",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(func(client *ocd.Client) error {
			version, err := client.Version()
			if err != nil {
				return err
			}
			fmt.Println(version)

			return nil
		})
	},
}
