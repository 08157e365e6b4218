package model

// Reservation is one booked slot. Date and TimeSlot are always canonical
// (YYYY-MM-DD and HH:MM) once they leave the booking client.
type Reservation struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Department string `json:"department"`
	Extension  string `json:"extension"`
	Date       string `json:"date"`
	TimeSlot   string `json:"timeSlot"`
	CreatedAt  int64  `json:"createdAt"`
}

type TimeSlot struct {
	Label     string `json:"label"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
	IsBooked  bool   `json:"isBooked"`
}
