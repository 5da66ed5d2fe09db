package availability

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Hours is an operating-hours window of whole hours, [Start, End).
type Hours struct {
	Start int `yaml:"start" json:"start"`
	End   int `yaml:"end" json:"end"`
}

func (h Hours) valid() bool {
	return h.Start >= 0 && h.End <= 24 && h.Start < h.End
}

// Policy holds the configured availability rules for the shop.
// It is immutable after Load; hot reload swaps the whole value.
type Policy struct {
	// ClosedDays are full-day closures (holidays), YYYY-MM-DD.
	ClosedDays []string `yaml:"closed_days"`

	// ClosedWeekdays are weekly closures, 0=Sunday .. 6=Saturday.
	ClosedWeekdays []int `yaml:"closed_weekdays"`

	// SpecialHours override everything else for specific dates.
	SpecialHours map[string]Hours `yaml:"special_hours"`

	// WeekendHours apply per weekday when no special override exists.
	WeekendHours map[int]Hours `yaml:"weekend_hours"`

	// DefaultHours are the fallback operating hours.
	DefaultHours Hours `yaml:"default_hours"`

	// LunchBreak, when set, is excluded from every open day.
	LunchBreak *Hours `yaml:"lunch_break"`
}

// Load reads a policy YAML file. ${ENV_VAR} placeholders are expanded
// the same way as in the main config.
func Load(path string) (*Policy, error) {
	if path == "" {
		path = "configs/availability.yaml"
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	data = []byte(os.ExpandEnv(string(data)))

	var p Policy
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse availability policy: %w", err)
	}

	if p.DefaultHours == (Hours{}) {
		p.DefaultHours = Hours{Start: 10, End: 19}
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// Validate checks every hours window for start < end.
func (p *Policy) Validate() error {
	if !p.DefaultHours.valid() {
		return fmt.Errorf("invalid default_hours %d-%d", p.DefaultHours.Start, p.DefaultHours.End)
	}
	for date, h := range p.SpecialHours {
		if !h.valid() {
			return fmt.Errorf("invalid special_hours for %s: %d-%d", date, h.Start, h.End)
		}
	}
	for wd, h := range p.WeekendHours {
		if wd < 0 || wd > 6 {
			return fmt.Errorf("invalid weekend_hours weekday %d", wd)
		}
		if !h.valid() {
			return fmt.Errorf("invalid weekend_hours for weekday %d: %d-%d", wd, h.Start, h.End)
		}
	}
	for _, wd := range p.ClosedWeekdays {
		if wd < 0 || wd > 6 {
			return fmt.Errorf("invalid closed weekday %d", wd)
		}
	}
	if p.LunchBreak != nil && !p.LunchBreak.valid() {
		return fmt.Errorf("invalid lunch_break %d-%d", p.LunchBreak.Start, p.LunchBreak.End)
	}
	return nil
}

// IsClosed reports whether the shop is closed for the whole day.
func (p *Policy) IsClosed(date time.Time) bool {
	day := date.Format("2006-01-02")
	for _, d := range p.ClosedDays {
		if d == day {
			return true
		}
	}
	wd := int(date.Weekday())
	for _, w := range p.ClosedWeekdays {
		if w == wd {
			return true
		}
	}
	return false
}

// ResolveHours maps a calendar date to its operating hours. The second
// return value is false when the shop is closed that day.
// Precedence: closed days/weekdays > special hours > weekend hours >
// default hours.
func (p *Policy) ResolveHours(date time.Time) (Hours, bool) {
	if p.IsClosed(date) {
		return Hours{}, false
	}

	day := date.Format("2006-01-02")
	if h, ok := p.SpecialHours[day]; ok {
		return h, true
	}

	if h, ok := p.WeekendHours[int(date.Weekday())]; ok {
		return h, true
	}

	return p.DefaultHours, true
}
