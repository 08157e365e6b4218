// Package receipt issues and checks signed booking confirmations.
package receipt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"slot-booking-api/internal/model"
)

const DefaultTTL = 30 * 24 * time.Hour

var ErrBadReceipt = errors.New("invalid receipt")

type Claims struct {
	ReservationID string `json:"rid"`
	Date          string `json:"date"`
	TimeSlot      string `json:"time"`
	Name          string `json:"name"`
	jwt.RegisteredClaims
}

type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewIssuer returns nil when secret is empty; a nil Issuer issues empty
// receipts and rejects every check.
func NewIssuer(secret string, ttl time.Duration) *Issuer {
	if secret == "" {
		return nil
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Issuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

func (i *Issuer) Issue(r model.Reservation) (string, error) {
	if i == nil {
		return "", nil
	}
	now := i.now()
	c := Claims{
		ReservationID: r.ID,
		Date:          r.Date,
		TimeSlot:      r.TimeSlot,
		Name:          r.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   r.ID,
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(i.secret)
}

func (i *Issuer) Parse(raw string) (*Claims, error) {
	if i == nil || raw == "" {
		return nil, ErrBadReceipt
	}
	tok, err := jwt.ParseWithClaims(raw, &Claims{}, func(t *jwt.Token) (any, error) {
		// block alg confusion
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrBadReceipt
		}
		return i.secret, nil
	}, jwt.WithTimeFunc(i.now))
	if err != nil {
		return nil, errors.Join(ErrBadReceipt, err)
	}
	c, ok := tok.Claims.(*Claims)
	if !ok || !tok.Valid || c.ReservationID == "" {
		return nil, ErrBadReceipt
	}
	return c, nil
}
