// Package export renders the reservation set for download.
package export

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"

	"slot-booking-api/internal/model"
	"slot-booking-api/internal/slots"
)

var csvHeader = []string{"date", "time", "name", "department", "extension"}

// WriteCSV writes one row per reservation in date then time order. Every
// data cell is quoted.
func WriteCSV(w io.Writer, regs []model.Reservation) error {
	bw := bufio.NewWriter(w)
	bw.WriteString(strings.Join(csvHeader, ","))
	for _, r := range slots.Chronological(regs) {
		bw.WriteByte('\n')
		for i, cell := range []string{r.Date, r.TimeSlot, r.Name, r.Department, r.Extension} {
			if i > 0 {
				bw.WriteByte(',')
			}
			bw.WriteString(quote(cell))
		}
	}
	bw.WriteByte('\n')
	return bw.Flush()
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// WriteICS writes a calendar with one event per reservation. Slot times are
// read in loc; each event lasts one slot.
func WriteICS(w io.Writer, regs []model.Reservation, slotLength time.Duration, loc *time.Location) error {
	if loc == nil {
		loc = time.UTC
	}
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//slot-booking-api//reservations//EN")
	cal.SetXWRCalName("Reservations")

	for _, r := range slots.Chronological(regs) {
		start, err := time.ParseInLocation("2006-01-02 15:04", r.Date+" "+r.TimeSlot, loc)
		if err != nil {
			// not canonical; nothing sensible to put on a calendar
			continue
		}
		ev := cal.AddEvent(r.ID + "@slot-booking-api")
		ev.SetDtStampTime(time.UnixMilli(r.CreatedAt).UTC())
		ev.SetCreatedTime(time.UnixMilli(r.CreatedAt).UTC())
		ev.SetStartAt(start)
		ev.SetEndAt(start.Add(slotLength))
		ev.SetSummary(fmt.Sprintf("%s (%s)", r.Name, r.Department))
		ev.SetDescription("Extension " + r.Extension)
	}
	return cal.SerializeTo(w)
}
