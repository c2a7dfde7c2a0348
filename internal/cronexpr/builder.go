package cronexpr

import (
	"fmt"
	"strings"
	"time"
)

// LastDay selects the last day of the month in Monthly.
const LastDay = -1

// Unit is the cycle unit of a rate schedule.
type Unit string

const (
	UnitSecond Unit = "second"
	UnitMinute Unit = "minute"
	UnitHour   Unit = "hour"
	UnitDay    Unit = "day"
)

var weekdayNames = [...]string{"SUN", "MON", "TUE", "WED", "THU", "FRI", "SAT"}

// Daily 每天 hh:mm:ss
func Daily(hour, minute, second int) (string, error) {
	if err := checkClock(hour, minute, second); err != nil {
		return "", err
	}
	return fmt.Sprintf("%d %d %d * * ?", second, minute, hour), nil
}

// Weekly 每周 day 的 hh:mm:ss
func Weekly(day time.Weekday, hour, minute, second int) (string, error) {
	if day < time.Sunday || day > time.Saturday {
		return "", fmt.Errorf("%w: weekday %d", ErrMalformed, day)
	}
	if err := checkClock(hour, minute, second); err != nil {
		return "", err
	}
	return fmt.Sprintf("%d %d %d ? * %s", second, minute, hour, weekdayNames[day]), nil
}

// Monthly 每月 day 号的 hh:mm:ss, day 为 LastDay 时表示月末
func Monthly(day, hour, minute, second int) (string, error) {
	if err := checkClock(hour, minute, second); err != nil {
		return "", err
	}
	dom, err := dayOfMonth(day)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%d %d %d %s * ?", second, minute, hour, dom), nil
}

// Yearly 每年 month 月 day 号的 hh:mm:ss
func Yearly(month time.Month, day, hour, minute, second int) (string, error) {
	if month < time.January || month > time.December {
		return "", fmt.Errorf("%w: month %d", ErrMalformed, month)
	}
	if err := checkClock(hour, minute, second); err != nil {
		return "", err
	}
	dom, err := dayOfMonth(day)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%d %d %d %s %d ?", second, minute, hour, dom, int(month)), nil
}

// Every builds a rate schedule firing every n units, aligned to the start of
// the enclosing unit.
func Every(n int, unit Unit) (string, error) {
	if n <= 0 {
		return "", fmt.Errorf("%w: rate must be positive, got %d", ErrMalformed, n)
	}
	var fields []string
	switch unit {
	case UnitSecond:
		fields = []string{step(0, n), "*", "*", "*", "*", "?"}
	case UnitMinute:
		fields = []string{"0", step(0, n), "*", "*", "*", "?"}
	case UnitHour:
		fields = []string{"0", "0", step(0, n), "*", "*", "?"}
	case UnitDay:
		fields = []string{"0", "0", "0", step(1, n), "*", "?"}
	default:
		return "", fmt.Errorf("%w: unknown unit %q", ErrMalformed, unit)
	}
	return strings.Join(fields, " "), nil
}

func step(start, n int) string {
	return fmt.Sprintf("%d/%d", start, n)
}

func dayOfMonth(day int) (string, error) {
	if day == LastDay {
		return "L", nil
	}
	if day < 1 || day > 31 {
		return "", fmt.Errorf("%w: day of month %d", ErrMalformed, day)
	}
	return fmt.Sprint(day), nil
}

func checkClock(hour, minute, second int) error {
	switch {
	case hour < 0 || hour > 23:
		return fmt.Errorf("%w: hour %d", ErrMalformed, hour)
	case minute < 0 || minute > 59:
		return fmt.Errorf("%w: minute %d", ErrMalformed, minute)
	case second < 0 || second > 59:
		return fmt.Errorf("%w: second %d", ErrMalformed, second)
	}
	return nil
}
