package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/arloliu/go-openocd/ocd"
)

var flagRunCapture bool

var runCmd = &cobra.Command{
	Use:   "run <tcl command>...",
	Short: "Execute one Tcl command and print its output",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := connect()
		if err != nil {
			return err
		}
		defer client.Disconnect()

		opts := []ocd.CmdOption{ocd.AllowFailure()}
		if flagRunCapture {
			opts = append(opts, ocd.WithCapture())
		}

		result, err := client.Cmd(strings.Join(args, " "), opts...)
		if err != nil {
			return err
		}

		if result.Out != "" {
			fmt.Println(result.Out)
		}

		if result.Retcode != 0 {
			return fmt.Errorf("command failed with code %d", result.Retcode)
		}

		return nil
	},
}

func init() {
	runCmd.Flags().BoolVar(&flagRunCapture, "capture", false, "capture logged output as well")
}
