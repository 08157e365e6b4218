package grpcweb

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"slot-booking-api/internal/bookingv1"
)

type scheduleServer struct {
	bookingv1.UnimplementedBookingServiceServer
	client string
}

func (s *scheduleServer) GetSchedule(ctx context.Context, _ *bookingv1.GetScheduleRequest) (*bookingv1.GetScheduleResponse, error) {
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if v := md.Get("x-forwarded-for"); len(v) > 0 {
			s.client = v[0]
		}
	}
	return &bookingv1.GetScheduleResponse{Days: []string{"2025-01-22"}, IntervalMinutes: 10, Timezone: "UTC"}, nil
}

func (s *scheduleServer) Refresh(context.Context, *bookingv1.RefreshRequest) (*bookingv1.RefreshResponse, error) {
	return nil, status.Error(codes.Unavailable, "store offline")
}

func bridge(t *testing.T, srv bookingv1.BookingServiceServer, proxies ...string) http.Handler {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	s := grpc.NewServer(grpc.ForceServerCodec(bookingv1.Codec{}))
	bookingv1.RegisterBookingServiceServer(s, srv)
	go s.Serve(lis)
	t.Cleanup(s.Stop)

	b, err := New("passthrough:///bufnet", zap.NewNop(),
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
	)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { b.Close() })
	if err := b.TrustProxies(proxies...); err != nil {
		t.Fatal(err)
	}
	return b.Handler()
}

func frame(flag byte, data []byte) []byte {
	f := make([]byte, 5+len(data))
	f[0] = flag
	binary.BigEndian.PutUint32(f[1:5], uint32(len(data)))
	copy(f[5:], data)
	return f
}

// frames splits a grpc-web response body into data and trailer.
func frames(t *testing.T, body []byte) (data []byte, trailer string) {
	t.Helper()
	for len(body) > 0 {
		if len(body) < 5 {
			t.Fatalf("truncated frame: %v", body)
		}
		n := binary.BigEndian.Uint32(body[1:5])
		payload := body[5 : 5+n]
		if body[0]&0x80 != 0 {
			trailer = string(payload)
		} else {
			data = payload
		}
		body = body[5+n:]
	}
	return data, trailer
}

func post(h http.Handler, method string, body []byte, hdr map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, method, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/grpc-web+proto")
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestForward(t *testing.T) {
	srv := &scheduleServer{}
	// httptest requests come from 192.0.2.1
	h := bridge(t, srv, "192.0.2.0/24")

	rec := post(h, bookingv1.GetScheduleMethod, frame(0, nil), map[string]string{"X-Forwarded-For": "203.0.113.9, 10.0.0.1"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	data, trailer := frames(t, rec.Body.Bytes())
	if !strings.Contains(trailer, "grpc-status:0") {
		t.Fatalf("trailer: %q", trailer)
	}
	var resp bookingv1.GetScheduleResponse
	if err := resp.UnmarshalWire(data); err != nil {
		t.Fatal(err)
	}
	if len(resp.Days) != 1 || resp.IntervalMinutes != 10 || resp.Timezone != "UTC" {
		t.Errorf("response: %+v", resp)
	}
	if srv.client != "10.0.0.1" {
		t.Errorf("forwarded client: %q", srv.client)
	}
}

func TestForwardIgnoresUntrustedHeader(t *testing.T) {
	srv := &scheduleServer{}
	h := bridge(t, srv)

	for i := 0; i < 3; i++ {
		xff := fmt.Sprintf("203.0.113.%d", i+1)
		post(h, bookingv1.GetScheduleMethod, frame(0, nil), map[string]string{"X-Forwarded-For": xff})
		if srv.client != "192.0.2.1" {
			t.Fatalf("rotated header %s leaked through: %q", xff, srv.client)
		}
	}
}

func TestForwardStatus(t *testing.T) {
	h := bridge(t, &scheduleServer{})
	rec := post(h, bookingv1.RefreshMethod, frame(0, nil), nil)
	data, trailer := frames(t, rec.Body.Bytes())
	if data != nil {
		t.Errorf("unexpected data frame: %v", data)
	}
	if !strings.Contains(trailer, "grpc-status:14") || !strings.Contains(trailer, "store offline") {
		t.Errorf("trailer: %q", trailer)
	}
}

func TestRequestChecks(t *testing.T) {
	h := bridge(t, &scheduleServer{})

	req := httptest.NewRequest(http.MethodOptions, bookingv1.GetScheduleMethod, nil)
	req.Header.Set("Origin", "https://booking.example")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || rec.Header().Get("Access-Control-Allow-Origin") != "https://booking.example" {
		t.Errorf("preflight: %d %v", rec.Code, rec.Header())
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, bookingv1.GetScheduleMethod, nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("GET: %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodPost, bookingv1.GetScheduleMethod, nil)
	req.Header.Set("Content-Type", "application/json")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnsupportedMediaType {
		t.Errorf("json body: %d", rec.Code)
	}

	rec = post(h, bookingv1.GetScheduleMethod, []byte{0, 0}, nil)
	if _, trailer := frames(t, rec.Body.Bytes()); !strings.Contains(trailer, "grpc-status:3") {
		t.Errorf("short body trailer: %q", trailer)
	}
}

func TestParseFrame(t *testing.T) {
	tests := []struct {
		name string
		in   []byte
		want []byte
		err  error
	}{
		{"empty message", frame(0, nil), []byte{}, nil},
		{"payload", frame(0, []byte{1, 2, 3}), []byte{1, 2, 3}, nil},
		{"trailing bytes ignored", append(frame(0, []byte{7}), 9, 9), []byte{7}, nil},
		{"short", []byte{0, 0, 0}, nil, errShortFrame},
		{"incomplete", frame(0, []byte{1, 2, 3})[:6], nil, errIncompleteFrame},
		{"compressed", frame(1, []byte{1}), nil, errCompressedFrame},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseFrame(tt.in)
			if err != tt.err {
				t.Fatalf("err = %v, want %v", err, tt.err)
			}
			if tt.err == nil && !bytes.Equal(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestClientAddr(t *testing.T) {
	b := &Bridge{}
	if err := b.TrustProxies("10.0.0.0/8", "192.0.2.4"); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name   string
		remote string
		xff    string
		want   string
	}{
		{"untrusted peer", "198.51.100.9:5555", "203.0.113.1", "198.51.100.9"},
		{"trusted peer no header", "192.0.2.4:5555", "", "192.0.2.4"},
		{"trusted peer", "192.0.2.4:5555", "203.0.113.1", "203.0.113.1"},
		{"spoofed left hop", "192.0.2.4:5555", "6.6.6.6, 203.0.113.1", "203.0.113.1"},
		{"proxy chain", "192.0.2.4:5555", " 198.51.100.2 ,10.0.0.1", "198.51.100.2"},
		{"all trusted", "192.0.2.4:5555", "10.1.1.1, 10.0.0.1", "10.1.1.1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/", nil)
			r.RemoteAddr = tt.remote
			if tt.xff != "" {
				r.Header.Set("X-Forwarded-For", tt.xff)
			}
			if got := b.clientAddr(r); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTrustProxiesRejectsGarbage(t *testing.T) {
	if err := (&Bridge{}).TrustProxies("not-an-ip"); err == nil {
		t.Fatal("expected error")
	}
}
