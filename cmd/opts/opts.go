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
	"io"

	"github.com/walteh/classifyrc/pkg/config"
	"github.com/walteh/classifyrc/pkg/console"
	"github.com/walteh/classifyrc/pkg/log"
)

// Tool describes one of the two binaries.
type Tool struct {
	// Name is the command name, the lock name suffix and the log file stem.
	Name  string
	Short string
	// Port is the loopback port live instances listen on for hand-offs.
	Port int
	// Shell picks the console command set.
	Shell console.Tool
	// AcceptsFiles reports whether positional arguments are files to classify.
	AcceptsFiles bool
}

// LockName is the machine-wide name of the tool's exclusive lock.
func (t Tool) LockName() string { return "classifyrc-" + t.Name }

// LogFile is the log file name kept next to the configuration.
func (t Tool) LogFile() string { return t.Name + ".log" }

// RootOpts carries what every subcommand needs once startup has succeeded.
type RootOpts struct {
	Tool       Tool
	ConfigFile string
	Debug      bool
	Locale     string

	Config     *config.Config
	UserLogger *log.UserLogger

	closers []io.Closer
}

// AddCloser registers c to be closed by Close.
func (o *RootOpts) AddCloser(c io.Closer) {
	o.closers = append(o.closers, c)
}

// Close releases everything registered with AddCloser, last first.
func (o *RootOpts) Close() error {
	var first error
	for i := len(o.closers) - 1; i >= 0; i-- {
		if err := o.closers[i].Close(); err != nil && first == nil {
			first = err
		}
	}
	o.closers = nil
	return first
}
