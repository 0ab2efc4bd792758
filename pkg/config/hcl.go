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

// 📝 Parse parses the config from HCL. Categories are labeled blocks:
//
//	item "【财务】水电费" {
//	  rename = "{YYYY}{MM}-{orig}{ext}"
//	  exts   = [".pdf"]
//	  present_rule {
//	    mode = "count_at_least"
//	    n    = 2
//	  }
//	}
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

	// Define HCL schema
	type hclPresence struct {
		Mode string `hcl:"mode,optional"`
		N    int    `hcl:"n,optional"`
	}
	type hclItem struct {
		Key          string       `hcl:"key,label"`
		Rename       string       `hcl:"rename"`
		PathTemplate string       `hcl:"path_template,optional"`
		DestSubdir   string       `hcl:"dest_subdir,optional"`
		Exts         []string     `hcl:"exts,optional"`
		PresentRule  *hclPresence `hcl:"present_rule,block"`
	}
	type hclConfig struct {
		OutRoot             string    `hcl:"out_root,optional"`
		DefaultPathTemplate string    `hcl:"default_path_template,optional"`
		IgnorePatterns      []string  `hcl:"ignore_patterns,optional"`
		Locale              string    `hcl:"locale,optional"`
		Items               []hclItem `hcl:"item,block"`
	}

	var hclCfg hclConfig
	diags = gohcl.DecodeBody(hclFile.Body, evalCtx, &hclCfg)
	if diags.HasErrors() {
		return nil, errors.Errorf("decoding HCL: %s", diags.Error())
	}

	// Convert to model
	cfg := &Config{
		OutRoot:             hclCfg.OutRoot,
		DefaultPathTemplate: hclCfg.DefaultPathTemplate,
		IgnorePatterns:      hclCfg.IgnorePatterns,
		Locale:              hclCfg.Locale,
	}
	for _, it := range hclCfg.Items {
		rule := CategoryRule{
			Key:          it.Key,
			Rename:       it.Rename,
			PathTemplate: it.PathTemplate,
			DestSubdir:   it.DestSubdir,
			Exts:         it.Exts,
		}
		if it.PresentRule != nil {
			rule.PresentRule = &PresenceRule{
				Mode: PresenceMode(it.PresentRule.Mode),
				N:    it.PresentRule.N,
			}
		}
		cfg.Items = append(cfg.Items, rule)
	}

	return cfg, nil
}
