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
	"github.com/walteh/classifyrc/cmd/opts"
	"github.com/walteh/classifyrc/pkg/console"
	"github.com/walteh/classifyrc/pkg/operation"
	"gitlab.com/tozd/go/errors"
)

// NewStatusCmd prints the checklist once without claiming the instance.
func NewStatusCmd(ro *opts.RootOpts) *cobra.Command {
	var (
		period string
		dirs   bool
	)

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Print the checklist for a month and exit",
		Long: `Status evaluates every category for the month and prints the checklist.
It will:
1. Count the matching files of each category
2. Apply the saved "not applicable" marks
3. Drop marks of categories that are now satisfied
4. Report how many categories are satisfied`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			sess, err := operation.New(ctx, operation.Options{Config: ro.Config})
			if err != nil {
				return errors.Errorf("creating session: %w", err)
			}

			if period != "" {
				p, err := parsePeriod(period)
				if err != nil {
					return err
				}
				sess.SetPeriod(p)
			}

			return console.Report(ctx, sess, ro.UserLogger, dirs)
		},
	}

	cmd.Flags().StringVarP(&period, "period", "p", "", "month to evaluate as YYYY-MM (default: current month)")
	cmd.Flags().BoolVar(&dirs, "dirs", false, "show target directories")

	return cmd
}
