// Package slots generates bookable time slots and resolves them against the
// known reservations. Everything here is synchronous and pure: callers pass a
// snapshot of reservations in and get fresh values back.
package slots

import (
	"fmt"

	"slot-booking-api/internal/model"
	"slot-booking-api/internal/timefmt"
)

// Generate builds slots from start to end, each intervalMinutes long. A slot
// is emitted while its start is before the end boundary, so when the interval
// does not divide the window the last slot runs past end. bookedTimes may be
// in any accepted time form.
func Generate(startHour, startMinute, endHour, endMinute, intervalMinutes int, bookedTimes []string) []model.TimeSlot {
	if intervalMinutes <= 0 {
		return nil
	}

	booked := make(map[string]struct{}, len(bookedTimes))
	for _, t := range bookedTimes {
		booked[timefmt.NormalizeTime(t)] = struct{}{}
	}

	first := startHour*60 + startMinute
	limit := endHour*60 + endMinute
	var out []model.TimeSlot
	for cur := first; cur < limit; cur += intervalMinutes {
		start, stop := clock(cur), clock(cur+intervalMinutes)
		_, taken := booked[start]
		out = append(out, model.TimeSlot{
			Label:     start + " - " + stop,
			StartTime: start,
			EndTime:   stop,
			IsBooked:  taken,
		})
	}
	return out
}

// clock formats minutes since midnight as HH:MM, wrapping at 24h.
func clock(m int) string {
	m %= 24 * 60
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}
