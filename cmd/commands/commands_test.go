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
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/pterm/pterm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/classifyrc/cmd/opts"
	"github.com/walteh/classifyrc/pkg/console"
)

func init() {
	pterm.DisableStyling()
	color.NoColor = true
}

var testTool = opts.Tool{
	Name:         "classify",
	Short:        "test",
	Port:         0,
	Shell:        console.Classify,
	AcceptsFiles: true,
}

func writeConfig(t *testing.T) (dir, path string) {
	dir = t.TempDir()
	doc := map[string]any{
		"out_root":              filepath.Join(dir, "out"),
		"default_path_template": filepath.Join(dir, "out", "{YYYY}", "{MM}"),
		"locale":                "en",
		"items": []map[string]any{
			{"key": "【财务】rent", "rename": "{YYYYMM}-{orig}{ext}"},
			{"key": "misc", "rename": "{orig}{ext}", "dest_subdir": "misc"},
		},
	}
	data, err := json.Marshal(doc)
	require.NoError(t, err)
	path = filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(path, data, 0644))
	return dir, path
}

func execute(t *testing.T, tool opts.Tool, args ...string) (int, string) {
	var out, errOut bytes.Buffer
	code := Execute(context.Background(), tool, args, strings.NewReader(""), &out, &errOut)
	return code, out.String() + errOut.String()
}

func TestStatus(t *testing.T) {
	dir, path := writeConfig(t)
	misc := filepath.Join(dir, "out")

	tests := []struct {
		name string
		args []string
		env  string
		want []string
	}{
		{
			name: "explicit_config",
			args: []string{"status", "--config", path},
			want: []string{"Refreshed: 0/2 categories satisfied", "—— 财务 ——", "⬜[0]"},
		},
		{
			name: "config_from_env",
			args: []string{"status", "-p", "2024-12"},
			env:  path,
			want: []string{filepath.Join(misc, "2024", "12"), "Refreshed: 0/2"},
		},
		{
			name: "locale_flag",
			args: []string{"status", "--config", path, "--locale", "zh"},
			want: []string{"刷新成功：0/2 类满足"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.env != "" {
				t.Setenv("CLASSIFY_CONFIG", tt.env)
			}
			code, out := execute(t, testTool, tt.args...)
			require.Equal(t, 0, code, out)
			for _, w := range tt.want {
				assert.Contains(t, out, w)
			}
		})
	}

	assert.FileExists(t, filepath.Join(dir, "classify.log"))
}

func TestStatusBadPeriod(t *testing.T) {
	_, path := writeConfig(t)
	code, out := execute(t, testTool, "status", "--config", path, "--period", "2025-13")
	assert.Equal(t, 1, code)
	assert.Contains(t, out, "--period")
}

func TestConfigErrorIsFatal(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"items": []}`), 0644))

	for _, path := range []string{bad, filepath.Join(dir, "missing.json")} {
		code, out := execute(t, testTool, "status", "--config", path)
		assert.Equal(t, 1, code)
		assert.Contains(t, out, "classify cannot start")
		assert.Contains(t, out, "invalid configuration")
		assert.Equal(t, 1, strings.Count(out, "cannot start"), "config errors are shown once")
	}
}

func TestVersion(t *testing.T) {
	code, out := execute(t, testTool, "version")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "🚀 classify version info:")
	assert.Contains(t, out, "Go:")

	info := &VersionInfo{Version: "v1.2.3", Revision: "abc", Modified: true}
	assert.Contains(t, FormatVersion("checklist", info), "Revision:  abc (modified)")
}

func TestChecklistTakesNoFiles(t *testing.T) {
	_, path := writeConfig(t)
	tool := testTool
	tool.Name = "checklist"
	tool.Shell = console.Checklist
	tool.AcceptsFiles = false

	code, _ := execute(t, tool, "--config", path, "a.pdf")
	assert.Equal(t, 1, code)
}

func TestToolNames(t *testing.T) {
	assert.Equal(t, "classifyrc-classify", testTool.LockName())
	assert.Equal(t, "classify.log", testTool.LogFile())
}

func TestFlagsAndEnvAreBound(t *testing.T) {
	_, path := writeConfig(t)
	t.Setenv("CLASSIFY_DEBUG", "true")
	t.Setenv("CLASSIFY_LOCALE", "zh")

	root, ro := NewRootCmd(testTool)
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs([]string{"status", "-c", path, "--locale", "en"})

	require.NoError(t, root.ExecuteContext(context.Background()))
	t.Cleanup(func() { assert.NoError(t, ro.Close()) })

	assert.Equal(t, path, ro.ConfigFile)
	assert.True(t, ro.Debug, "CLASSIFY_DEBUG is read when the flag is not given")
	assert.Equal(t, "en", ro.Locale, "a flag wins over the environment")
	assert.Contains(t, out.String(), "Refreshed: 0/2")
	assert.NotEmpty(t, errOut.String(), "debug output goes to stderr")
}
