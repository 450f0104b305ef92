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

package config

import (
	"context"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/walteh/stamprename/pkg/naming"
	"github.com/walteh/stamprename/pkg/workitem"
	"github.com/zclconf/go-cty/cty"
	"gitlab.com/tozd/go/errors"
)

func init() {
	Register(&HCLParser{})
}

// 🔧 HCLParser implements the Parser interface for HCL files
type HCLParser struct{}

// 🔍 CanParse checks if this parser can handle the given file
func (p *HCLParser) CanParse(filename string) bool {
	return strings.HasSuffix(strings.ToLower(filename), ".hcl")
}

// HCL schema. Groups and replacements are repeated blocks.
type hclConfig struct {
	Source         string            `hcl:"source"`
	Include        []string          `hcl:"include,optional"`
	Ignore         []string          `hcl:"ignore,optional"`
	Export         string            `hcl:"export"`
	Copy           bool              `hcl:"copy,optional"`
	Separator      string            `hcl:"separator,optional"`
	BatchSize      int               `hcl:"batch_size,optional"`
	MaxParallelism int               `hcl:"max_parallelism,optional"`
	Regex          string            `hcl:"regex,optional"`
	Defaults       map[string]string `hcl:"defaults,optional"`
	Overrides      map[string]string `hcl:"overrides,optional"`
	Journal        bool              `hcl:"journal,optional"`
	Naming         *struct {
		Fields       []string             `hcl:"fields,optional"`
		Replacements []naming.Replacement `hcl:"replacement,block"`
	} `hcl:"naming,block"`
	Preserve *struct {
		Enabled      bool              `hcl:"enabled,optional"`
		TokenMarkers map[string]string `hcl:"token_markers,optional"`
		Groups       []struct {
			Name      string   `hcl:"name,label"`
			Fields    []string `hcl:"fields"`
			Preserved bool     `hcl:"preserved,optional"`
		} `hcl:"group,block"`
	} `hcl:"preserve,block"`
	Stamp *struct {
		Command []string `hcl:"command"`
	} `hcl:"stamp,block"`
}

// 📝 Parse parses the config from HCL
func (p *HCLParser) Parse(ctx context.Context, data []byte) (*Config, error) {
	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCL(data, "config.hcl")
	if diags.HasErrors() {
		return nil, errors.Errorf("parsing HCL: %s", diags.Error())
	}

	// Create evaluation context
	evalCtx := &hcl.EvalContext{
		Variables: map[string]cty.Value{},
	}

	var hclCfg hclConfig
	diags = gohcl.DecodeBody(hclFile.Body, evalCtx, &hclCfg)
	if diags.HasErrors() {
		return nil, errors.Errorf("decoding HCL: %s", diags.Error())
	}

	// Convert to model
	cfg := &Config{
		Source:         hclCfg.Source,
		Include:        hclCfg.Include,
		Ignore:         hclCfg.Ignore,
		Export:         hclCfg.Export,
		Copy:           hclCfg.Copy,
		Separator:      hclCfg.Separator,
		BatchSize:      hclCfg.BatchSize,
		MaxParallelism: hclCfg.MaxParallelism,
		Regex:          hclCfg.Regex,
		Defaults:       hclCfg.Defaults,
		Overrides:      hclCfg.Overrides,
		Journal:        hclCfg.Journal,
	}

	if hclCfg.Naming != nil {
		cfg.Naming = NamingArgs{
			Fields:       hclCfg.Naming.Fields,
			Replacements: hclCfg.Naming.Replacements,
		}
	}

	if hclCfg.Preserve != nil {
		cfg.Preserve = PreserveArgs{
			Enabled:      hclCfg.Preserve.Enabled,
			TokenMarkers: hclCfg.Preserve.TokenMarkers,
		}
		for _, g := range hclCfg.Preserve.Groups {
			cfg.Preserve.Groups = append(cfg.Preserve.Groups, workitem.EventGroupConfig{
				Name:        g.Name,
				Fields:      g.Fields,
				IsPreserved: g.Preserved,
			})
		}
	}

	if hclCfg.Stamp != nil {
		cfg.Stamp = &StampArgs{Command: hclCfg.Stamp.Command}
	}

	return cfg, nil
}
