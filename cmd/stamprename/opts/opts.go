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

package opts

import (
	"context"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/walteh/stamprename/pkg/config"
	"github.com/walteh/stamprename/pkg/log"
	"gitlab.com/tozd/go/errors"
)

// DefaultConfigFile is read when present and no --config flag is given
const DefaultConfigFile = ".stamprename.yaml"

// 🎛️ RootOpts holds the shared flags and dependencies of every command
type RootOpts struct {
	ConfigFile string
	Debug      bool
	Console    io.Writer
}

// 🏭 NewRootOpts creates root options writing to stdout
func NewRootOpts() *RootOpts {
	return &RootOpts{Console: os.Stdout}
}

// Level returns the log level selected by the debug flag
func (o *RootOpts) Level() zerolog.Level {
	if o.Debug {
		return zerolog.DebugLevel
	}
	return zerolog.InfoLevel
}

// NewConsole creates the colored console logger
func (o *RootOpts) NewConsole() *log.Logger {
	return log.New(o.Console, o.Level())
}

// LoadConfig reads the config file, if any. A missing default config file
// yields an empty config for flags to fill in.
func (o *RootOpts) LoadConfig(ctx context.Context) (*config.Config, error) {
	path := o.ConfigFile
	if path == "" {
		if _, err := os.Stat(DefaultConfigFile); err != nil {
			return &config.Config{}, nil
		}
		path = DefaultConfigFile
	}

	cfg, err := config.Load(ctx, path)
	if err != nil {
		return nil, errors.Errorf("loading config: %w", err)
	}
	return cfg, nil
}
