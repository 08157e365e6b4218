package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"slot-booking-api/internal/slots"
	"slot-booking-api/internal/timefmt"
)

// WindowConfig is a window as written in the schedule file, bounds as "HH:MM".
type WindowConfig struct {
	Name  string `yaml:"name"`
	Start string `yaml:"start"`
	End   string `yaml:"end"`
}

type ScheduleConfig struct {
	// Timezone is the IANA zone the slot times are in (used for calendar export).
	Timezone        string         `yaml:"timezone"`
	Days            []string       `yaml:"days"`
	IntervalMinutes int            `yaml:"interval_minutes"`
	Windows         []WindowConfig `yaml:"windows"`
}

func DefaultScheduleConfig() *ScheduleConfig {
	return &ScheduleConfig{
		Timezone:        "UTC",
		Days:            []string{"2025-01-22", "2025-01-23"},
		IntervalMinutes: 10,
		Windows: []WindowConfig{
			{Name: "morning", Start: "08:00", End: "12:00"},
			{Name: "afternoon", Start: "13:30", End: "17:30"},
		},
	}
}

// Normalize fills missing values from the default schedule and puts days in
// canonical form.
func (c *ScheduleConfig) Normalize() {
	def := DefaultScheduleConfig()
	if c.Timezone == "" {
		c.Timezone = def.Timezone
	}
	if len(c.Days) == 0 {
		c.Days = def.Days
	}
	for i, d := range c.Days {
		c.Days[i] = timefmt.NormalizeDate(d)
	}
	if c.IntervalMinutes <= 0 {
		c.IntervalMinutes = def.IntervalMinutes
	}
	if len(c.Windows) == 0 {
		c.Windows = def.Windows
	}
}

// Schedule converts the file form into a slots.Schedule.
func (c *ScheduleConfig) Schedule() (slots.Schedule, error) {
	s := slots.Schedule{
		Days:            append([]string(nil), c.Days...),
		IntervalMinutes: c.IntervalMinutes,
	}
	for i, w := range c.Windows {
		sh, sm, err := parseClock(w.Start)
		if err != nil {
			return slots.Schedule{}, fmt.Errorf("window %d start: %w", i, err)
		}
		eh, em, err := parseClock(w.End)
		if err != nil {
			return slots.Schedule{}, fmt.Errorf("window %d end: %w", i, err)
		}
		if eh*60+em <= sh*60+sm {
			return slots.Schedule{}, fmt.Errorf("window %d: end %s is not after start %s", i, w.End, w.Start)
		}
		name := w.Name
		if name == "" {
			name = fmt.Sprintf("window-%d", i+1)
		}
		s.Windows = append(s.Windows, slots.Window{Name: name, StartHour: sh, StartMinute: sm, EndHour: eh, EndMinute: em})
	}
	return s, nil
}

func (c *ScheduleConfig) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}

// LoadSchedule reads the schedule file at path. A missing file yields the
// default schedule.
func LoadSchedule(path string) (*ScheduleConfig, error) {
	cfg := &ScheduleConfig{}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist):
		cfg = DefaultScheduleConfig()
	default:
		return nil, err
	}
	cfg.Normalize()

	if _, err := cfg.Schedule(); err != nil {
		return nil, err
	}
	if _, err := cfg.Location(); err != nil {
		return nil, fmt.Errorf("timezone %q: %w", cfg.Timezone, err)
	}
	return cfg, nil
}

func parseClock(s string) (int, int, error) {
	hs, ms, ok := strings.Cut(timefmt.NormalizeTime(s), ":")
	if !ok {
		return 0, 0, fmt.Errorf("bad time %q", s)
	}
	h, err := strconv.Atoi(hs)
	if err != nil || h < 0 || h > 24 {
		return 0, 0, fmt.Errorf("bad hour in %q", s)
	}
	m, err := strconv.Atoi(ms)
	if err != nil || m < 0 || m > 59 || (h == 24 && m != 0) {
		return 0, 0, fmt.Errorf("bad minute in %q", s)
	}
	return h, m, nil
}
