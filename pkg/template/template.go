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

package template

import (
	"strings"

	"gitlab.com/tozd/go/errors"
)

// Placeholder names understood by the resolver.
const (
	Year          = "YYYY"
	Month         = "MM"
	YearMonth     = "YYYYMM"
	Day           = "DD"
	Orig          = "orig"
	Ext           = "ext"
	Key           = "key"
	PrevYear      = "YYYY-1"
	PrevMonth     = "MM-1"
	PrevYearMonth = "YYYYMM-1"
	DestSubdir    = "dest_subdir"
)

var known = map[string]bool{
	Year: true, Month: true, YearMonth: true, Day: true, Orig: true, Ext: true,
	Key: true, PrevYear: true, PrevMonth: true, PrevYearMonth: true, DestSubdir: true,
}

// ErrUnbound is returned when a recognized placeholder has no value in the
// context it is expanded in, e.g. {orig} inside a path template.
var ErrUnbound = errors.Base("unbound placeholder")

// Known reports whether name is a placeholder the resolver recognizes.
func Known(name string) bool { return known[name] }

// Values maps placeholder names to their substitutions.
type Values map[string]string

func (v Values) merge(other Values) Values {
	out := make(Values, len(v)+len(other))
	for k, val := range v {
		out[k] = val
	}
	for k, val := range other {
		out[k] = val
	}
	return out
}

// TokenKind separates literal text from placeholders.
type TokenKind int

const (
	Literal TokenKind = iota
	Placeholder
)

// Token is one element of a parsed template. For placeholders Text holds the
// name without braces.
type Token struct {
	Kind TokenKind
	Text string
}

// Raw renders the token the way it appeared in the source.
func (t Token) Raw() string {
	if t.Kind == Placeholder {
		return "{" + t.Text + "}"
	}
	return t.Text
}

// 📝 Template is a parsed sequence of literal and placeholder tokens
type Template struct {
	tokens []Token
}

// 🔍 Parse splits s into tokens. It never fails: a "{" without a matching
// "}" (or with an empty or nested body) is kept as literal text.
func Parse(s string) Template {
	var toks []Token
	var lit strings.Builder

	flush := func() {
		if lit.Len() > 0 {
			toks = append(toks, Token{Kind: Literal, Text: lit.String()})
			lit.Reset()
		}
	}

	for i := 0; i < len(s); {
		if s[i] == '{' {
			end := strings.IndexByte(s[i+1:], '}')
			if end > 0 {
				name := s[i+1 : i+1+end]
				if !strings.ContainsRune(name, '{') {
					flush()
					toks = append(toks, Token{Kind: Placeholder, Text: name})
					i += end + 2
					continue
				}
			}
		}
		lit.WriteByte(s[i])
		i++
	}
	flush()

	return Template{tokens: toks}
}

// Tokens returns a copy of the token sequence.
func (t Template) Tokens() []Token {
	return append([]Token(nil), t.tokens...)
}

// Has reports whether the template references the named placeholder.
func (t Template) Has(name string) bool {
	for _, tok := range t.tokens {
		if tok.Kind == Placeholder && tok.Text == name {
			return true
		}
	}
	return false
}

// IsEmpty reports whether the template has no tokens at all.
func (t Template) IsEmpty() bool { return len(t.tokens) == 0 }

// String renders the template source, with any bound values already applied.
func (t Template) String() string {
	var b strings.Builder
	for _, tok := range t.tokens {
		b.WriteString(tok.Raw())
	}
	return b.String()
}

// Bind substitutes every placeholder present in vals and leaves the rest as
// placeholders, so a later pass can expand them.
func (t Template) Bind(vals Values) Template {
	out := make([]Token, 0, len(t.tokens))
	for _, tok := range t.tokens {
		if tok.Kind == Placeholder {
			if v, ok := vals[tok.Text]; ok {
				tok = Token{Kind: Literal, Text: v}
			}
		}
		if n := len(out); n > 0 && tok.Kind == Literal && out[n-1].Kind == Literal {
			out[n-1].Text += tok.Text
			continue
		}
		out = append(out, tok)
	}
	return Template{tokens: out}
}

// Expand binds vals and renders the result. Unknown placeholders are copied
// through untouched; a known placeholder with no value yields ErrUnbound.
func (t Template) Expand(vals Values) (string, error) {
	var b strings.Builder
	for _, tok := range t.Bind(vals).tokens {
		if tok.Kind == Placeholder && Known(tok.Text) {
			return "", errors.Errorf("%w: {%s}", ErrUnbound, tok.Text)
		}
		b.WriteString(tok.Raw())
	}
	return b.String(), nil
}

// Prefix renders tokens up to, not including, the first placeholder named in
// stops. Placeholders before that point are substituted when bound and kept raw
// otherwise.
func (t Template) Prefix(vals Values, stops ...string) string {
	stop := make(map[string]bool, len(stops))
	for _, s := range stops {
		stop[s] = true
	}

	var b strings.Builder
	for _, tok := range t.tokens {
		if tok.Kind == Placeholder {
			if stop[tok.Text] {
				break
			}
			if v, ok := vals[tok.Text]; ok {
				b.WriteString(v)
				continue
			}
		}
		b.WriteString(tok.Raw())
	}
	return b.String()
}
