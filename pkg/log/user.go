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

package log

import (
	"context"
	"io"
	"os"

	"github.com/pterm/pterm"
	"github.com/rs/zerolog"
)

// 📢 UserLogger prints the status line and mirrors it to zerolog
type UserLogger struct {
	log zerolog.Logger
	out io.Writer
}

// 🎯 NewUserLogger creates a user logger that writes to out, stdout when nil
func NewUserLogger(ctx context.Context, out io.Writer) *UserLogger {
	if out == nil {
		out = os.Stdout
	}
	return &UserLogger{
		log: *zerolog.Ctx(ctx),
		out: out,
	}
}

// 🔑 contextKey is the type for context values
type contextKey struct{}

// 🎯 FromContext gets the user logger from context, a stdout one when absent
func FromContext(ctx context.Context) *UserLogger {
	if u, ok := ctx.Value(contextKey{}).(*UserLogger); ok {
		return u
	}
	return NewUserLogger(ctx, nil)
}

// 🎯 NewContext adds the user logger to context
func NewContext(ctx context.Context, u *UserLogger) context.Context {
	return context.WithValue(ctx, contextKey{}, u)
}

// Writer is where the user logger prints.
func (u *UserLogger) Writer() io.Writer { return u.out }

// 📊 Status prints a neutral status line
func (u *UserLogger) Status(msg string) {
	pterm.Info.WithPrefix(pterm.Prefix{Text: "📦"}).WithWriter(u.out).Println(msg)
	u.log.Info().Msg(msg)
}

// ✅ Success prints a completed action
func (u *UserLogger) Success(msg string) {
	pterm.Success.WithPrefix(pterm.Prefix{Text: "✅"}).WithWriter(u.out).Println(msg)
	u.log.Info().Msg(msg)
}

// ⚠️ Warning prints a skipped or refused action
func (u *UserLogger) Warning(msg string) {
	pterm.Warning.WithPrefix(pterm.Prefix{Text: "⚠️"}).WithWriter(u.out).Println(msg)
	u.log.Warn().Msg(msg)
}

// ❌ Failure prints a failed action and its cause
func (u *UserLogger) Failure(msg string, err error) {
	pterm.Error.WithPrefix(pterm.Prefix{Text: "❌"}).WithWriter(u.out).Println(msg)
	if err != nil {
		pterm.Error.WithWriter(u.out).Println(err)
		u.log.Error().Err(err).Msg(msg)
		return
	}
	u.log.Error().Msg(msg)
}
