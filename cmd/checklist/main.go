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

package main

import (
	"context"
	"os"

	"github.com/walteh/classifyrc/cmd/commands"
	"github.com/walteh/classifyrc/cmd/opts"
	"github.com/walteh/classifyrc/pkg/console"
	"github.com/walteh/classifyrc/pkg/instance"
)

var tool = opts.Tool{
	Name:  "checklist",
	Short: "📋 Show which monthly document categories are complete",
	Port:  instance.ChecklistPort,
	Shell: console.Checklist,
}

func main() {
	os.Exit(commands.Execute(context.Background(), tool, os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}
