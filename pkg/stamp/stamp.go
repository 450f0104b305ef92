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

// Package stamp provides the layer-stamping capability used to enrich files
// with a metadata layer before they are renamed.
package stamp

import (
	"bytes"
	"context"
	"os/exec"
	"strings"

	"github.com/walteh/stamprename/pkg/workitem"
	"gitlab.com/tozd/go/errors"
)

// ErrNotStamped is returned by adapters whose underlying tool reported failure without an error
var ErrNotStamped = errors.Base("layer was not stamped")

// 🎨 Stamper writes a copy of sourcePath carrying the layer to destPath.
// Stamping is best-effort: callers treat an error as non-fatal.
type Stamper interface {
	Stamp(ctx context.Context, sourcePath, destPath string, layer workitem.LayerDescriptor) error
}

// Func adapts a boolean stamping function to Stamper
type Func func(ctx context.Context, sourcePath, destPath string, layer workitem.LayerDescriptor) bool

func (f Func) Stamp(ctx context.Context, sourcePath, destPath string, layer workitem.LayerDescriptor) error {
	if !f(ctx, sourcePath, destPath, layer) {
		return ErrNotStamped
	}
	return nil
}

// Noop never stamps and never fails. It writes nothing, so items are exported
// without a layer.
type Noop struct{}

func (Noop) Stamp(context.Context, string, string, workitem.LayerDescriptor) error {
	return nil
}

// 🛠️ CommandStamper runs an external tool for each item. Arguments may use the
// placeholders {src}, {dst}, {layer}, and {text}.
type CommandStamper struct {
	Command []string
}

// NewCommandStamper creates a stamper for the given command line
func NewCommandStamper(command []string) (*CommandStamper, error) {
	if len(command) == 0 || command[0] == "" {
		return nil, errors.Errorf("stamp command is required")
	}
	return &CommandStamper{Command: command}, nil
}

// Args expands the placeholders for one invocation
func (c *CommandStamper) Args(sourcePath, destPath string, layer workitem.LayerDescriptor) []string {
	r := strings.NewReplacer(
		"{src}", sourcePath,
		"{dst}", destPath,
		"{layer}", layer.Name,
		"{text}", layer.Text,
	)
	args := make([]string, len(c.Command))
	for i, a := range c.Command {
		args[i] = r.Replace(a)
	}
	return args
}

func (c *CommandStamper) Stamp(ctx context.Context, sourcePath, destPath string, layer workitem.LayerDescriptor) error {
	args := c.Args(sourcePath, destPath, layer)

	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return errors.Errorf("running %s: %w: %s", args[0], err, msg)
		}
		return errors.Errorf("running %s: %w", args[0], err)
	}
	return nil
}
