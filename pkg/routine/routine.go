package routine

import (
	"fmt"
	"time"
)

// Weekdays lists the day abbreviations in the order time.Weekday numbers them.
var Weekdays = []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

// Routine holds the recurring card titles: the ones added every day and the
// ones tied to a day of the week.
type Routine struct {
	Everyday []string
	Weekly   map[string][]string
}

// Default returns the built-in routine.
func Default() Routine {
	return Routine{
		Everyday: []string{
			"読書",
			"筋トレ or ランニング",
			"技術に触れる",
			"プロテイン1",
			"プロテイン2",
			"朝のサプリ",
			"夜のサプリ",
			"pao1",
			"pao2",
			"くすり",
			"歯磨き",
			"ワセリン",
		},
		Weekly: map[string][]string{
			"Mon": {},
			"Tue": {},
			"Wed": {},
			"Thu": {},
			"Fri": {"Workday", "CATS"},
			"Sat": {"トイレ掃除"},
			"Sun": {"Skin Care"},
		},
	}
}

// Abbrev returns the three letter abbreviation used as a Weekly key.
func Abbrev(t time.Time) string {
	return Weekdays[t.Weekday()]
}

// ForDay returns the titles for the given day abbreviation. An unknown
// abbreviation is an error, a known day without tasks is not.
func (r Routine) ForDay(day string) ([]string, error) {
	if !IsWeekday(day) {
		return nil, fmt.Errorf("unknown weekday %q", day)
	}
	return r.Weekly[day], nil
}

// Validate checks that Weekly has an entry for every weekday and nothing else.
func (r Routine) Validate() error {
	for day := range r.Weekly {
		if !IsWeekday(day) {
			return fmt.Errorf("routine has unknown day %q", day)
		}
	}
	for _, d := range Weekdays {
		if _, ok := r.Weekly[d]; !ok {
			return fmt.Errorf("routine has no entry for %s", d)
		}
	}
	return nil
}

func IsWeekday(day string) bool {
	for _, d := range Weekdays {
		if d == day {
			return true
		}
	}
	return false
}
