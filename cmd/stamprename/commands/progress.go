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
	"context"
	"fmt"

	"github.com/pterm/pterm"
	"github.com/walteh/stamprename/pkg/config"
	"github.com/walteh/stamprename/pkg/log"
	"github.com/walteh/stamprename/pkg/workitem"
)

// 📊 progressBar renders run progress with pterm
type progressBar struct {
	bar *pterm.ProgressbarPrinter
}

func newProgressBar(total int) *progressBar {
	p := &progressBar{}
	if total == 0 {
		return p
	}
	bar, err := pterm.DefaultProgressbar.
		WithTotal(total).
		WithTitle("Renaming").
		WithRemoveWhenDone(true).
		Start()
	if err == nil {
		p.bar = bar
	}
	return p
}

func (p *progressBar) OnProgress(ctx context.Context, ev workitem.ProgressEvent) {
	if p.bar == nil {
		return
	}
	if ev.CurrentItem != nil {
		p.bar.UpdateTitle(ev.CurrentItem.OriginalName)
	}
	p.bar.Increment()
}

func (p *progressBar) OnComplete(ctx context.Context, o *workitem.Outcome) {
	if p.bar == nil {
		return
	}
	_, _ = p.bar.Stop()
}

// renderFailures prints a table of the failed files
func renderFailures(o *workitem.Outcome) error {
	data := pterm.TableData{{"File", "Error"}}
	for _, item := range o.FailedItems {
		data = append(data, []string{item.OriginalName, item.ErrorMessage})
	}
	pterm.Println()
	return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

func consoleRun(cfg *config.Config, items int) log.RunInfo {
	return log.RunInfo{
		Source: cfg.Source,
		Export: cfg.Export,
		Copy:   cfg.Copy,
		Items:  items,
	}
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}
