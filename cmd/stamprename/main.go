// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/walteh/stamprename/cmd/stamprename/commands"
	"github.com/walteh/stamprename/cmd/stamprename/opts"
)

func main() {
	// Interrupts cancel the run; items already started still finish
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	o := opts.NewRootOpts()

	// Create root command
	rootCmd := &cobra.Command{
		Use:   "stamprename",
		Short: "Batch rename, stamp, and export files",
		Long: `stamprename renames batches of files from their metadata fields,
optionally stamps a metadata layer onto each file, and moves or copies
the result into an export directory.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			log := setupLogging(o)
			cmd.SetContext(log.WithContext(cmd.Context()))
		},
	}

	// Add shared flags
	addRootFlags(rootCmd, o)

	// Add commands
	rootCmd.AddCommand(
		commands.NewRunCmd(o),
		commands.NewUndoCmd(o),
		newVersionCmd(),
	)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
