// SPDX-FileCopyrightText: 2026 Deutsche Telekom AG
//
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"io"
	"os"

	"github.com/spf13/cobra"
)

// Config customises the root command, mostly for tests.
type Config struct {
	OutputWriter io.Writer
}

func DefaultConfig() Config {
	return Config{OutputWriter: os.Stdout}
}

func NewRootCommand(cfg Config) *cobra.Command {
	root := &cobra.Command{
		Use:           "formrelay",
		Short:         "Relay JSON form submissions to a mailbox over SMTP",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	if cfg.OutputWriter != nil {
		root.SetOut(cfg.OutputWriter)
	}

	root.AddCommand(
		NewServeCommand(),
		NewVersionCommand(),
	)
	return root
}
