// Package cronexpr computes fire times for six-field cron expressions
// (second minute hour day-of-month month day-of-week).
//
// Besides the syntax understood by robfig/cron (`*`, ranges, lists, `/` steps,
// `?` and month/day names) the day-of-month field accepts `L` for the last day
// of the month. `L` requires the day-of-week field to be `?` or `*`.
package cronexpr

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// ErrMalformed is wrapped by every parse failure.
var ErrMalformed = errors.New("malformed cron expression")

const fieldCount = 6

var parser = cron.NewParser(
	cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// Schedule 解析后的cron表达式
type Schedule interface {
	// Next returns the first fire time strictly after `after`; ok is false
	// when the expression has no further occurrence.
	Next(after time.Time) (next time.Time, ok bool)
}

type robfigSchedule struct {
	inner cron.Schedule
}

func (s robfigSchedule) Next(after time.Time) (time.Time, bool) {
	next := s.inner.Next(after)
	if next.IsZero() {
		return time.Time{}, false
	}
	return next, true
}

// lastDaySchedule fires only on the last day of a month. The inner schedule
// has its day-of-month narrowed to 28-31.
type lastDaySchedule struct {
	inner cron.Schedule
}

// 5 years of months, 4 candidate days each
const maxLastDayProbes = 5 * 12 * 4

func (s lastDaySchedule) Next(after time.Time) (time.Time, bool) {
	t := after
	for i := 0; i < maxLastDayProbes; i++ {
		next := s.inner.Next(t)
		if next.IsZero() {
			return time.Time{}, false
		}
		if isLastDayOfMonth(next) {
			return next, true
		}
		// skip the rest of this day
		t = time.Date(next.Year(), next.Month(), next.Day(), 23, 59, 59, 0, next.Location())
	}
	return time.Time{}, false
}

func isLastDayOfMonth(t time.Time) bool {
	return t.AddDate(0, 0, 1).Day() == 1
}

// Parse validates expr and returns its schedule.
func Parse(expr string) (Schedule, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, fmt.Errorf("%w: empty", ErrMalformed)
	}
	if strings.HasPrefix(expr, "@") {
		inner, err := parser.Parse(expr)
		if err != nil {
			return nil, fmt.Errorf("%w %q: %v", ErrMalformed, expr, err)
		}
		return robfigSchedule{inner: inner}, nil
	}

	fields := strings.Fields(expr)
	if len(fields) != fieldCount {
		return nil, fmt.Errorf("%w %q: expected %d fields, got %d", ErrMalformed, expr, fieldCount, len(fields))
	}

	lastDay := false
	if strings.EqualFold(fields[3], "L") {
		// 月末与星期同时限定时 robfig 按 OR 匹配, 无法表达 "月末且为周X"
		if fields[5] != "?" && fields[5] != "*" {
			return nil, fmt.Errorf("%w %q: L cannot be combined with a day-of-week", ErrMalformed, expr)
		}
		lastDay = true
		fields[3] = "28-31"
	}

	inner, err := parser.Parse(strings.Join(fields, " "))
	if err != nil {
		return nil, fmt.Errorf("%w %q: %v", ErrMalformed, expr, err)
	}
	if lastDay {
		return lastDaySchedule{inner: inner}, nil
	}
	return robfigSchedule{inner: inner}, nil
}

// Validate reports whether expr parses.
func Validate(expr string) error {
	_, err := Parse(expr)
	return err
}

// Next 计算 after 之后的下一次触发时间, 没有下一次时返回 nil
func Next(expr string, after time.Time) (*time.Time, error) {
	sched, err := Parse(expr)
	if err != nil {
		return nil, err
	}
	next, ok := sched.Next(after)
	if !ok {
		return nil, nil
	}
	return &next, nil
}
