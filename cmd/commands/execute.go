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
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/walteh/classifyrc/cmd/opts"
	"github.com/walteh/classifyrc/pkg/log"
)

// 🚀 Execute runs tool with args and returns the process exit code.
func Execute(ctx context.Context, tool opts.Tool, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	root, ro := NewRootCmd(tool)
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	if cerr := ro.Close(); cerr != nil && err == nil {
		err = cerr
	}
	if err == nil {
		return 0
	}

	user := ro.UserLogger
	if user == nil {
		user = log.NewUserLogger(ctx, stderr)
	}
	if IsConfigError(err) {
		user.Failure(fmt.Sprintf("%s cannot start", tool.Name), err)
	} else {
		user.Failure(err.Error(), nil)
	}
	return 1
}
