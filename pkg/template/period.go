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
	"fmt"
	"strconv"
	"strings"
	"time"

	"gitlab.com/tozd/go/errors"
)

// 📅 Period is the (year, month) pair driving all template expansion
type Period struct {
	Year  int
	Month int
}

// 🏭 NewPeriod validates and creates a period
func NewPeriod(year, month int) (Period, error) {
	if year < 1 || year > 9999 {
		return Period{}, errors.Errorf("year %d out of range", year)
	}
	if month < 1 || month > 12 {
		return Period{}, errors.Errorf("month %d out of range", month)
	}
	return Period{Year: year, Month: month}, nil
}

// PeriodOf returns the period containing t
func PeriodOf(t time.Time) Period {
	return Period{Year: t.Year(), Month: int(t.Month())}
}

// 🔍 ParsePeriod accepts "YYYY-MM" or "YYYYMM"
func ParsePeriod(s string) (Period, error) {
	s = strings.TrimSpace(s)
	var ys, ms string
	switch {
	case len(s) == 7 && s[4] == '-':
		ys, ms = s[:4], s[5:]
	case len(s) == 6:
		ys, ms = s[:4], s[4:]
	default:
		return Period{}, errors.Errorf("invalid period %q: want YYYY-MM", s)
	}
	y, err := strconv.Atoi(ys)
	if err != nil {
		return Period{}, errors.Errorf("invalid period %q: %w", s, err)
	}
	m, err := strconv.Atoi(ms)
	if err != nil {
		return Period{}, errors.Errorf("invalid period %q: %w", s, err)
	}
	return NewPeriod(y, m)
}

// Previous returns the calendar month immediately before p, rolling the year at January.
func (p Period) Previous() Period {
	if p.Month == 1 {
		return Period{Year: p.Year - 1, Month: 12}
	}
	return Period{Year: p.Year, Month: p.Month - 1}
}

func (p Period) YYYY() string   { return fmt.Sprintf("%04d", p.Year) }
func (p Period) MM() string     { return fmt.Sprintf("%02d", p.Month) }
func (p Period) YYYYMM() string { return p.YYYY() + p.MM() }

// Key is the "YYYY-MM" form used by the override store.
func (p Period) Key() string { return p.YYYY() + "-" + p.MM() }

func (p Period) String() string { return p.Key() }

// currentValues binds {YYYY} {MM} {YYYYMM}
func (p Period) currentValues() Values {
	return Values{
		Year:      p.YYYY(),
		Month:     p.MM(),
		YearMonth: p.YYYYMM(),
	}
}

// previousValues binds {YYYY-1} {MM-1} {YYYYMM-1}
func (p Period) previousValues() Values {
	prev := p.Previous()
	return Values{
		PrevYear:      prev.YYYY(),
		PrevMonth:     prev.MM(),
		PrevYearMonth: prev.YYYYMM(),
	}
}
