package bookingv1

import (
	"google.golang.org/protobuf/encoding/protowire"
)

type Reservation struct {
	ID         string
	Name       string
	Department string
	Extension  string
	Date       string
	TimeSlot   string
	CreatedAt  int64 // epoch ms
}

func (m *Reservation) MarshalWire() []byte {
	var out []byte
	out = appendString(out, 1, m.ID)
	out = appendString(out, 2, m.Name)
	out = appendString(out, 3, m.Department)
	out = appendString(out, 4, m.Extension)
	out = appendString(out, 5, m.Date)
	out = appendString(out, 6, m.TimeSlot)
	out = appendVarint(out, 7, uint64(m.CreatedAt))
	return out
}

func (m *Reservation) UnmarshalWire(b []byte) error {
	*m = Reservation{}
	return walk(b, func(f field) error {
		switch {
		case f.is(1, protowire.BytesType):
			m.ID = string(f.b)
		case f.is(2, protowire.BytesType):
			m.Name = string(f.b)
		case f.is(3, protowire.BytesType):
			m.Department = string(f.b)
		case f.is(4, protowire.BytesType):
			m.Extension = string(f.b)
		case f.is(5, protowire.BytesType):
			m.Date = string(f.b)
		case f.is(6, protowire.BytesType):
			m.TimeSlot = string(f.b)
		case f.is(7, protowire.VarintType):
			m.CreatedAt = int64(f.v)
		}
		return nil
	})
}

type TimeSlot struct {
	Label     string
	StartTime string
	EndTime   string
	IsBooked  bool
}

func (m *TimeSlot) MarshalWire() []byte {
	var out []byte
	out = appendString(out, 1, m.Label)
	out = appendString(out, 2, m.StartTime)
	out = appendString(out, 3, m.EndTime)
	out = appendBool(out, 4, m.IsBooked)
	return out
}

func (m *TimeSlot) UnmarshalWire(b []byte) error {
	*m = TimeSlot{}
	return walk(b, func(f field) error {
		switch {
		case f.is(1, protowire.BytesType):
			m.Label = string(f.b)
		case f.is(2, protowire.BytesType):
			m.StartTime = string(f.b)
		case f.is(3, protowire.BytesType):
			m.EndTime = string(f.b)
		case f.is(4, protowire.VarintType):
			m.IsBooked = protowire.DecodeBool(f.v)
		}
		return nil
	})
}

// Window is a named stretch of a day. Slots is empty in schedule listings.
type Window struct {
	Name  string
	Label string
	Slots []*TimeSlot
}

func (m *Window) MarshalWire() []byte {
	var out []byte
	out = appendString(out, 1, m.Name)
	out = appendString(out, 2, m.Label)
	for _, s := range m.Slots {
		out = appendMessage(out, 3, s)
	}
	return out
}

func (m *Window) UnmarshalWire(b []byte) error {
	*m = Window{}
	return walk(b, func(f field) error {
		switch {
		case f.is(1, protowire.BytesType):
			m.Name = string(f.b)
		case f.is(2, protowire.BytesType):
			m.Label = string(f.b)
		case f.is(3, protowire.BytesType):
			s := &TimeSlot{}
			if err := s.UnmarshalWire(f.b); err != nil {
				return err
			}
			m.Slots = append(m.Slots, s)
		}
		return nil
	})
}

type CreateReservationRequest struct {
	Name       string
	Department string
	Extension  string
	Date       string
	TimeSlot   string
}

func (m *CreateReservationRequest) MarshalWire() []byte {
	var out []byte
	out = appendString(out, 1, m.Name)
	out = appendString(out, 2, m.Department)
	out = appendString(out, 3, m.Extension)
	out = appendString(out, 4, m.Date)
	out = appendString(out, 5, m.TimeSlot)
	return out
}

func (m *CreateReservationRequest) UnmarshalWire(b []byte) error {
	*m = CreateReservationRequest{}
	return walk(b, func(f field) error {
		switch {
		case f.is(1, protowire.BytesType):
			m.Name = string(f.b)
		case f.is(2, protowire.BytesType):
			m.Department = string(f.b)
		case f.is(3, protowire.BytesType):
			m.Extension = string(f.b)
		case f.is(4, protowire.BytesType):
			m.Date = string(f.b)
		case f.is(5, protowire.BytesType):
			m.TimeSlot = string(f.b)
		}
		return nil
	})
}

type CreateReservationResponse struct {
	Reservation *Reservation
	Receipt     string
}

func (m *CreateReservationResponse) MarshalWire() []byte {
	var out []byte
	if m.Reservation != nil {
		out = appendMessage(out, 1, m.Reservation)
	}
	out = appendString(out, 2, m.Receipt)
	return out
}

func (m *CreateReservationResponse) UnmarshalWire(b []byte) error {
	*m = CreateReservationResponse{}
	return walk(b, func(f field) error {
		switch {
		case f.is(1, protowire.BytesType):
			m.Reservation = &Reservation{}
			return m.Reservation.UnmarshalWire(f.b)
		case f.is(2, protowire.BytesType):
			m.Receipt = string(f.b)
		}
		return nil
	})
}

// ListReservationsRequest filters by Date when set.
type ListReservationsRequest struct {
	Date string
}

func (m *ListReservationsRequest) MarshalWire() []byte {
	return appendString(nil, 1, m.Date)
}

func (m *ListReservationsRequest) UnmarshalWire(b []byte) error {
	*m = ListReservationsRequest{}
	return walk(b, func(f field) error {
		if f.is(1, protowire.BytesType) {
			m.Date = string(f.b)
		}
		return nil
	})
}

type ListReservationsResponse struct {
	Reservations []*Reservation
}

func (m *ListReservationsResponse) MarshalWire() []byte {
	var out []byte
	for _, r := range m.Reservations {
		out = appendMessage(out, 1, r)
	}
	return out
}

func (m *ListReservationsResponse) UnmarshalWire(b []byte) error {
	*m = ListReservationsResponse{}
	return walk(b, func(f field) error {
		if f.is(1, protowire.BytesType) {
			r := &Reservation{}
			if err := r.UnmarshalWire(f.b); err != nil {
				return err
			}
			m.Reservations = append(m.Reservations, r)
		}
		return nil
	})
}

type GetAvailabilityRequest struct {
	Date string
}

func (m *GetAvailabilityRequest) MarshalWire() []byte {
	return appendString(nil, 1, m.Date)
}

func (m *GetAvailabilityRequest) UnmarshalWire(b []byte) error {
	*m = GetAvailabilityRequest{}
	return walk(b, func(f field) error {
		if f.is(1, protowire.BytesType) {
			m.Date = string(f.b)
		}
		return nil
	})
}

type GetAvailabilityResponse struct {
	Date    string
	Windows []*Window
	Free    int32
}

func (m *GetAvailabilityResponse) MarshalWire() []byte {
	var out []byte
	out = appendString(out, 1, m.Date)
	for _, w := range m.Windows {
		out = appendMessage(out, 2, w)
	}
	out = appendVarint(out, 3, uint64(m.Free))
	return out
}

func (m *GetAvailabilityResponse) UnmarshalWire(b []byte) error {
	*m = GetAvailabilityResponse{}
	return walk(b, func(f field) error {
		switch {
		case f.is(1, protowire.BytesType):
			m.Date = string(f.b)
		case f.is(2, protowire.BytesType):
			w := &Window{}
			if err := w.UnmarshalWire(f.b); err != nil {
				return err
			}
			m.Windows = append(m.Windows, w)
		case f.is(3, protowire.VarintType):
			m.Free = int32(f.v)
		}
		return nil
	})
}

type GetScheduleRequest struct{}

func (m *GetScheduleRequest) MarshalWire() []byte { return nil }

func (m *GetScheduleRequest) UnmarshalWire(b []byte) error {
	return walk(b, func(field) error { return nil })
}

type GetScheduleResponse struct {
	Days            []string
	IntervalMinutes int32
	Windows         []*Window
	Timezone        string
}

func (m *GetScheduleResponse) MarshalWire() []byte {
	var out []byte
	for _, d := range m.Days {
		out = protowire.AppendTag(out, 1, protowire.BytesType)
		out = protowire.AppendString(out, d)
	}
	out = appendVarint(out, 2, uint64(m.IntervalMinutes))
	for _, w := range m.Windows {
		out = appendMessage(out, 3, w)
	}
	out = appendString(out, 4, m.Timezone)
	return out
}

func (m *GetScheduleResponse) UnmarshalWire(b []byte) error {
	*m = GetScheduleResponse{}
	return walk(b, func(f field) error {
		switch {
		case f.is(1, protowire.BytesType):
			m.Days = append(m.Days, string(f.b))
		case f.is(2, protowire.VarintType):
			m.IntervalMinutes = int32(f.v)
		case f.is(3, protowire.BytesType):
			w := &Window{}
			if err := w.UnmarshalWire(f.b); err != nil {
				return err
			}
			m.Windows = append(m.Windows, w)
		case f.is(4, protowire.BytesType):
			m.Timezone = string(f.b)
		}
		return nil
	})
}

type RefreshRequest struct{}

func (m *RefreshRequest) MarshalWire() []byte { return nil }

func (m *RefreshRequest) UnmarshalWire(b []byte) error {
	return walk(b, func(field) error { return nil })
}

type RefreshResponse struct {
	Count    int32
	SyncedAt int64 // epoch ms
}

func (m *RefreshResponse) MarshalWire() []byte {
	var out []byte
	out = appendVarint(out, 1, uint64(m.Count))
	out = appendVarint(out, 2, uint64(m.SyncedAt))
	return out
}

func (m *RefreshResponse) UnmarshalWire(b []byte) error {
	*m = RefreshResponse{}
	return walk(b, func(f field) error {
		switch {
		case f.is(1, protowire.VarintType):
			m.Count = int32(f.v)
		case f.is(2, protowire.VarintType):
			m.SyncedAt = int64(f.v)
		}
		return nil
	})
}

type CheckReceiptRequest struct {
	Token string
}

func (m *CheckReceiptRequest) MarshalWire() []byte {
	return appendString(nil, 1, m.Token)
}

func (m *CheckReceiptRequest) UnmarshalWire(b []byte) error {
	*m = CheckReceiptRequest{}
	return walk(b, func(f field) error {
		if f.is(1, protowire.BytesType) {
			m.Token = string(f.b)
		}
		return nil
	})
}

type CheckReceiptResponse struct {
	Reservation *Reservation
	ExpiresAt   int64 // epoch ms
}

func (m *CheckReceiptResponse) MarshalWire() []byte {
	var out []byte
	if m.Reservation != nil {
		out = appendMessage(out, 1, m.Reservation)
	}
	out = appendVarint(out, 2, uint64(m.ExpiresAt))
	return out
}

func (m *CheckReceiptResponse) UnmarshalWire(b []byte) error {
	*m = CheckReceiptResponse{}
	return walk(b, func(f field) error {
		switch {
		case f.is(1, protowire.BytesType):
			m.Reservation = &Reservation{}
			return m.Reservation.UnmarshalWire(f.b)
		case f.is(2, protowire.VarintType):
			m.ExpiresAt = int64(f.v)
		}
		return nil
	})
}
