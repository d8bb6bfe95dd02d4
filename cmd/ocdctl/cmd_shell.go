package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ergochat/readline"
	"github.com/spf13/cobra"

	"github.com/arloliu/go-openocd/ocd"
)

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Open an interactive Tcl command shell",
	Long: `shell opens an interactive prompt. Every line is sent to OpenOCD as
one Tcl command, wrapped so that logged output is captured and failures
are reported with their error code. Leave with "exit" or Ctrl-D.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := connect()
		if err != nil {
			return err
		}
		defer client.Disconnect()

		rl, err := readline.NewFromConfig(&readline.Config{
			Prompt:                 "ocd> ",
			HistoryLimit:           500,
			DisableAutoSaveHistory: true,
		})
		if err != nil {
			return fmt.Errorf("init readline: %w", err)
		}
		defer rl.Close()

		return runShell(client, rl)
	},
}

func runShell(client *ocd.Client, rl *readline.Instance) error {
	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		rl.SaveToHistory(line)

		if line == "exit" || line == "quit" {
			return nil
		}

		execShellLine(client, line)
	}
}

func execShellLine(client *ocd.Client, line string) {
	result, err := client.Cmd(line, ocd.WithCapture(), ocd.AllowFailure())
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)

		// A transport or timeout error invalidates the connection; try to
		// get a fresh one so the shell stays usable.
		if !client.IsConnected() {
			if err := client.Reconnect(); err != nil {
				fmt.Fprintln(os.Stderr, "reconnect failed:", err)
			} else {
				fmt.Fprintln(os.Stderr, "reconnected")
			}
		}

		return
	}

	if result.Out != "" {
		fmt.Println(result.Out)
	}
	if result.Retcode != 0 {
		fmt.Fprintf(os.Stderr, "command failed with code %d\n", result.Retcode)
	}
}
