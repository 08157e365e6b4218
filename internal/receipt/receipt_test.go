package receipt

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"slot-booking-api/internal/model"
)

var booked = model.Reservation{ID: "r-1", Name: "Ann", Date: "2025-01-22", TimeSlot: "08:00"}

func TestIssueAndParse(t *testing.T) {
	iss := NewIssuer("s3cret", time.Hour)
	tok, err := iss.Issue(booked)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	c, err := iss.Parse(tok)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if c.ReservationID != "r-1" || c.Date != "2025-01-22" || c.TimeSlot != "08:00" || c.Name != "Ann" {
		t.Errorf("claims: %+v", c)
	}
}

func TestParseRejects(t *testing.T) {
	iss := NewIssuer("s3cret", time.Hour)
	good, _ := iss.Issue(booked)

	expired := NewIssuer("s3cret", time.Hour)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	old, _ := expired.Issue(booked)

	other, _ := NewIssuer("different", time.Hour).Issue(booked)

	none, _ := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{ReservationID: "r-1"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)

	tests := []struct {
		name string
		raw  string
	}{
		{"empty", ""},
		{"garbage", "not.a.token"},
		{"wrong key", other},
		{"expired", old},
		{"alg none", none},
		{"tampered", good[:len(good)-2] + "xx"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := iss.Parse(tt.raw); !errors.Is(err, ErrBadReceipt) {
				t.Fatalf("expected ErrBadReceipt, got %v", err)
			}
		})
	}
}

func TestDisabled(t *testing.T) {
	iss := NewIssuer("", 0)
	tok, err := iss.Issue(booked)
	if err != nil || tok != "" {
		t.Fatalf("disabled issuer: tok=%q err=%v", tok, err)
	}
	if _, err := iss.Parse("anything"); !errors.Is(err, ErrBadReceipt) {
		t.Fatalf("disabled issuer accepted a receipt: %v", err)
	}
}
