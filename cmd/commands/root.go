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
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/walteh/classifyrc/cmd/opts"
	"github.com/walteh/classifyrc/pkg/config"
	"github.com/walteh/classifyrc/pkg/log"
	"github.com/walteh/classifyrc/pkg/template"
	"gitlab.com/tozd/go/errors"
)

// EnvPrefix namespaces the environment variables both tools read.
const EnvPrefix = "CLASSIFY"

// 🌱 NewRootCmd builds the command tree of tool. Running the root without a
// subcommand is the same as run.
func NewRootCmd(tool opts.Tool) (*cobra.Command, *opts.RootOpts) {
	ro := &opts.RootOpts{Tool: tool}
	v := viper.New()

	runCmd := NewRunCmd(ro)

	root := &cobra.Command{
		Use:           tool.Name,
		Short:         tool.Short,
		Args:          runCmd.Args,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := v.BindPFlags(cmd.Root().PersistentFlags()); err != nil {
				return errors.Errorf("binding flags: %w", err)
			}
			ro.ConfigFile = v.GetString("config")
			ro.Debug = v.GetBool("debug")
			ro.Locale = v.GetString("locale")
			return setup(cmd, ro)
		},
		RunE: runCmd.RunE,
	}
	if tool.AcceptsFiles {
		root.Use = tool.Name + " [FILE...]"
	}

	flags := root.PersistentFlags()
	flags.StringP("config", "c", "", "config file path (default: config.json next to the executable or in the working directory)")
	flags.BoolP("debug", "d", false, "log debug output to stderr")
	flags.String("locale", "", "override the status line language (zh, en)")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	root.AddCommand(
		runCmd,
		NewStatusCmd(ro),
		NewVersionCmd(tool),
	)

	return root, ro
}

// setup locates and loads the configuration and builds the loggers. Any
// configuration failure is fatal.
func setup(cmd *cobra.Command, ro *opts.RootOpts) error {
	ctx := cmd.Context()

	path, err := config.Locate(ctx, ro.ConfigFile, config.SearchDirs())
	if err != nil {
		return err
	}

	logger, closer, err := log.Setup(log.Options{
		Path:    filepath.Join(filepath.Dir(path), ro.Tool.LogFile()),
		Debug:   ro.Debug,
		Console: cmd.ErrOrStderr(),
	})
	if err != nil {
		// a read-only config dir still gets a usable tool
		logger = zerolog.New(zerolog.ConsoleWriter{Out: cmd.ErrOrStderr()}).Level(zerolog.WarnLevel)
		logger.Warn().Err(err).Msg("opening log file")
	} else {
		ro.AddCloser(closer)
	}
	logger = logger.With().Str("tool", ro.Tool.Name).Logger()
	ctx = logger.WithContext(ctx)

	ro.UserLogger = log.NewUserLogger(ctx, cmd.OutOrStdout())
	ctx = log.NewContext(ctx, ro.UserLogger)
	cmd.SetContext(ctx)

	cfg, err := config.Load(ctx, path)
	if err != nil {
		return err
	}
	if ro.Locale != "" {
		cfg.Locale = strings.ToLower(ro.Locale)
	}
	ro.Config = cfg

	logger.Info().Str("config", cfg.Location()).Msg("starting")
	return nil
}

// IsConfigError reports whether err should be shown as a startup failure.
func IsConfigError(err error) bool {
	return errors.Is(err, config.ErrConfig)
}

func parsePeriod(s string) (template.Period, error) {
	p, err := template.ParsePeriod(s)
	if err != nil {
		return template.Period{}, errors.Errorf("--period: %w", err)
	}
	return p, nil
}
