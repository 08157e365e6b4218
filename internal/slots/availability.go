package slots

import (
	"sort"

	"slot-booking-api/internal/model"
	"slot-booking-api/internal/timefmt"
)

// Window is one bookable stretch of a day, e.g. the morning session.
type Window struct {
	Name        string
	StartHour   int
	StartMinute int
	EndHour     int
	EndMinute   int
}

func (w Window) Label() string {
	return clock(w.StartHour*60+w.StartMinute) + " - " + clock(w.EndHour*60+w.EndMinute)
}

// Schedule is the set of days and windows open for booking.
type Schedule struct {
	Days            []string
	IntervalMinutes int
	Windows         []Window
}

// DefaultSchedule is the two-day event the service was built for: ten-minute
// slots in a morning and an afternoon session.
func DefaultSchedule() Schedule {
	return Schedule{
		Days:            []string{"2025-01-22", "2025-01-23"},
		IntervalMinutes: 10,
		Windows: []Window{
			{Name: "morning", StartHour: 8, StartMinute: 0, EndHour: 12, EndMinute: 0},
			{Name: "afternoon", StartHour: 13, StartMinute: 30, EndHour: 17, EndMinute: 30},
		},
	}
}

// HasDay reports whether day, in any accepted date form, is bookable.
func (s Schedule) HasDay(day string) bool {
	day = timefmt.NormalizeDate(day)
	for _, d := range s.Days {
		if timefmt.NormalizeDate(d) == day {
			return true
		}
	}
	return false
}

type WindowView struct {
	Name  string           `json:"name"`
	Label string           `json:"label"`
	Slots []model.TimeSlot `json:"slots"`
}

// DayView is the resolved availability of one day.
type DayView struct {
	Date    string       `json:"date"`
	Windows []WindowView `json:"windows"`
}

// Slot finds the slot starting at t across all windows.
func (v DayView) Slot(t string) (model.TimeSlot, bool) {
	t = timefmt.NormalizeTime(t)
	for _, w := range v.Windows {
		for _, s := range w.Slots {
			if s.StartTime == t {
				return s, true
			}
		}
	}
	return model.TimeSlot{}, false
}

// Free counts unbooked slots in the view.
func (v DayView) Free() int {
	n := 0
	for _, w := range v.Windows {
		for _, s := range w.Slots {
			if !s.IsBooked {
				n++
			}
		}
	}
	return n
}

// BookedTimes returns the canonical start times already reserved on day.
func BookedTimes(day string, regs []model.Reservation) []string {
	day = timefmt.NormalizeDate(day)
	var out []string
	for _, r := range regs {
		if timefmt.NormalizeDate(r.Date) == day {
			out = append(out, timefmt.NormalizeTime(r.TimeSlot))
		}
	}
	return out
}

// Resolve generates every window of the schedule for day and marks the slots
// that regs occupy. All windows share one booked-time set.
func Resolve(day string, regs []model.Reservation, sched Schedule) DayView {
	booked := BookedTimes(day, regs)
	v := DayView{Date: timefmt.NormalizeDate(day)}
	for _, w := range sched.Windows {
		v.Windows = append(v.Windows, WindowView{
			Name:  w.Name,
			Label: w.Label(),
			Slots: Generate(w.StartHour, w.StartMinute, w.EndHour, w.EndMinute, sched.IntervalMinutes, booked),
		})
	}
	return v
}

// Holder returns the reservation occupying day at t, if any.
func Holder(day, t string, regs []model.Reservation) (model.Reservation, bool) {
	day, t = timefmt.NormalizeDate(day), timefmt.NormalizeTime(t)
	for _, r := range regs {
		if timefmt.NormalizeDate(r.Date) == day && timefmt.NormalizeTime(r.TimeSlot) == t {
			return r, true
		}
	}
	return model.Reservation{}, false
}

func IsFree(day, t string, regs []model.Reservation) bool {
	_, taken := Holder(day, t, regs)
	return !taken
}

// Chronological returns a copy of regs ordered by date, then time.
func Chronological(regs []model.Reservation) []model.Reservation {
	out := make([]model.Reservation, len(regs))
	copy(out, regs)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].TimeSlot < out[j].TimeSlot
	})
	return out
}
