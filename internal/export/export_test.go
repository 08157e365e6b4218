package export

import (
	"bytes"
	"strings"
	"testing"
	"time"

	ics "github.com/arran4/golang-ical"

	"slot-booking-api/internal/model"
)

var regs = []model.Reservation{
	{ID: "c", Name: "Cy", Department: "Ops", Extension: "3", Date: "2025-01-23", TimeSlot: "08:00", CreatedAt: 3},
	{ID: "b", Name: `Bo "Jr"`, Department: "QA, East", Extension: "2", Date: "2025-01-22", TimeSlot: "13:30", CreatedAt: 2},
	{ID: "a", Name: "Al", Department: "QA", Extension: "1", Date: "2025-01-22", TimeSlot: "08:10", CreatedAt: 1},
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, regs); err != nil {
		t.Fatal(err)
	}
	want := strings.Join([]string{
		"date,time,name,department,extension",
		`"2025-01-22","08:10","Al","QA","1"`,
		`"2025-01-22","13:30","Bo ""Jr""","QA, East","2"`,
		`"2025-01-23","08:00","Cy","Ops","3"`,
	}, "\n") + "\n"
	if buf.String() != want {
		t.Errorf("csv:\n%s\nwant:\n%s", buf.String(), want)
	}
}

func TestWriteCSVEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, nil); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "date,time,name,department,extension\n" {
		t.Errorf("empty export: %q", buf.String())
	}
}

func TestWriteCSVDoesNotReorderInput(t *testing.T) {
	in := append([]model.Reservation(nil), regs...)
	var buf bytes.Buffer
	WriteCSV(&buf, in)
	if in[0].ID != "c" {
		t.Error("input slice was sorted in place")
	}
}

func TestWriteICS(t *testing.T) {
	loc := time.FixedZone("UTC+8", 8*60*60)
	var buf bytes.Buffer
	withBad := append(append([]model.Reservation(nil), regs...), model.Reservation{ID: "x", Date: "someday", TimeSlot: "noon"})
	if err := WriteICS(&buf, withBad, 10*time.Minute, loc); err != nil {
		t.Fatal(err)
	}

	cal, err := ics.ParseCalendar(&buf)
	if err != nil {
		t.Fatalf("parse back: %v", err)
	}
	events := cal.Events()
	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(events))
	}

	first := events[0]
	start, err := first.GetStartAt()
	if err != nil {
		t.Fatal(err)
	}
	if want := time.Date(2025, 1, 22, 8, 10, 0, 0, loc); !start.Equal(want) {
		t.Errorf("start %v, want %v", start, want)
	}
	end, err := first.GetEndAt()
	if err != nil {
		t.Fatal(err)
	}
	if end.Sub(start) != 10*time.Minute {
		t.Errorf("duration %v", end.Sub(start))
	}
	if p := first.GetProperty(ics.ComponentPropertySummary); p == nil || p.Value != "Al (QA)" {
		t.Errorf("summary: %+v", p)
	}
}
