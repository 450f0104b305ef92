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

package commands

import (
	"github.com/spf13/cobra"
	"github.com/walteh/stamprename/cmd/stamprename/opts"
	"github.com/walteh/stamprename/pkg/journal"
	"github.com/walteh/stamprename/pkg/status"
	"gitlab.com/tozd/go/errors"
)

// ↩️ NewUndoCmd creates the undo command
func NewUndoCmd(o *opts.RootOpts) *cobra.Command {
	var export string

	cmd := &cobra.Command{
		Use:   "undo [export]",
		Short: "Revert the most recent journaled run",
		Long: `Undo reads the journal in the export directory and reverts its latest run.
It will:
1. Move exported files back to their source location
2. Delete exported copies when the run copied
3. Keep entries that could not be reverted for a later retry`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			console := o.NewConsole()

			switch {
			case len(args) > 0:
				export = args[0]
			case export == "":
				cfg, err := o.LoadConfig(ctx)
				if err != nil {
					return err
				}
				export = cfg.Export
			}
			if export == "" {
				return errors.Errorf("export directory is required")
			}

			result, err := journal.Undo(ctx, export, status.NewManager())
			if err != nil && result == nil {
				console.Errorf("undo failed: %v", err)
				return err
			}

			if len(result.Failed) > 0 {
				console.Warningf("run %s: %s restored, %s left in the journal", result.RunID, plural(result.Restored, "file"), plural(len(result.Failed), "file"))
				return err
			}
			console.Successf("run %s: %s restored", result.RunID, plural(result.Restored, "file"))
			return nil
		},
	}

	cmd.Flags().StringVarP(&export, "export", "e", "", "export directory holding the journal")

	return cmd
}
