package bookingv1_test

import (
	"context"
	"net"
	"testing"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/encoding/protowire"

	"slot-booking-api/internal/bookingv1"
)

type echoServer struct {
	bookingv1.UnimplementedBookingServiceServer
}

func (s *echoServer) CreateReservation(_ context.Context, req *bookingv1.CreateReservationRequest) (*bookingv1.CreateReservationResponse, error) {
	return &bookingv1.CreateReservationResponse{
		Reservation: &bookingv1.Reservation{
			ID: "r-1", Name: req.Name, Department: req.Department, Extension: req.Extension,
			Date: req.Date, TimeSlot: req.TimeSlot, CreatedAt: 1737532800000,
		},
		Receipt: "token",
	}, nil
}

func (s *echoServer) GetAvailability(_ context.Context, req *bookingv1.GetAvailabilityRequest) (*bookingv1.GetAvailabilityResponse, error) {
	return &bookingv1.GetAvailabilityResponse{
		Date: req.Date,
		Windows: []*bookingv1.Window{{
			Name: "morning", Label: "08:00 - 12:00",
			Slots: []*bookingv1.TimeSlot{
				{Label: "08:00 - 08:10", StartTime: "08:00", EndTime: "08:10", IsBooked: true},
				{Label: "08:10 - 08:20", StartTime: "08:10", EndTime: "08:20"},
			},
		}},
		Free: 1,
	}, nil
}

func dial(t *testing.T, srv bookingv1.BookingServiceServer, opts ...grpc.ServerOption) *bookingv1.BookingServiceClient {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	s := grpc.NewServer(append([]grpc.ServerOption{grpc.ForceServerCodec(bookingv1.Codec{})}, opts...)...)
	bookingv1.RegisterBookingServiceServer(s, srv)
	go s.Serve(lis)
	t.Cleanup(s.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { conn.Close() })
	return bookingv1.NewBookingServiceClient(conn)
}

func TestRoundTrip(t *testing.T) {
	c := dial(t, &echoServer{})
	ctx := context.Background()

	resp, err := c.CreateReservation(ctx, &bookingv1.CreateReservationRequest{
		Name: "Ann", Department: "QA", Extension: "101", Date: "2025-01-22", TimeSlot: "08:00",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	r := resp.Reservation
	if r == nil || r.ID != "r-1" || r.Name != "Ann" || r.TimeSlot != "08:00" || r.CreatedAt != 1737532800000 {
		t.Fatalf("reservation: %+v", r)
	}
	if resp.Receipt != "token" {
		t.Errorf("receipt: %q", resp.Receipt)
	}

	av, err := c.GetAvailability(ctx, &bookingv1.GetAvailabilityRequest{Date: "2025-01-22"})
	if err != nil {
		t.Fatalf("availability: %v", err)
	}
	if av.Free != 1 || len(av.Windows) != 1 || len(av.Windows[0].Slots) != 2 {
		t.Fatalf("availability: %+v", av)
	}
	if !av.Windows[0].Slots[0].IsBooked || av.Windows[0].Slots[1].IsBooked {
		t.Errorf("booked flags lost")
	}
}

func TestUnimplemented(t *testing.T) {
	c := dial(t, &echoServer{})
	_, err := c.Refresh(context.Background(), &bookingv1.RefreshRequest{})
	if status.Code(err) != codes.Unimplemented {
		t.Fatalf("expected Unimplemented, got %v", err)
	}
}

func TestInterceptorSeesFullMethod(t *testing.T) {
	var seen string
	ic := func(ctx context.Context, req any, info *grpc.UnaryServerInfo, next grpc.UnaryHandler) (any, error) {
		seen = info.FullMethod
		return next(ctx, req)
	}
	c := dial(t, &echoServer{}, grpc.UnaryInterceptor(ic))

	if _, err := c.GetAvailability(context.Background(), &bookingv1.GetAvailabilityRequest{Date: "2025-01-22"}); err != nil {
		t.Fatal(err)
	}
	if seen != bookingv1.GetAvailabilityMethod {
		t.Errorf("full method: %q", seen)
	}
}

func TestUnknownFieldsSkipped(t *testing.T) {
	var b []byte
	b = protowire.AppendTag(b, 99, protowire.VarintType)
	b = protowire.AppendVarint(b, 42)
	b = append(b, (&bookingv1.GetAvailabilityRequest{Date: "2025-01-22"}).MarshalWire()...)

	var req bookingv1.GetAvailabilityRequest
	if err := req.UnmarshalWire(b); err != nil {
		t.Fatal(err)
	}
	if req.Date != "2025-01-22" {
		t.Errorf("date: %q", req.Date)
	}
}

func TestTruncatedInput(t *testing.T) {
	full := (&bookingv1.CreateReservationRequest{Name: "Ann", Date: "2025-01-22"}).MarshalWire()
	var req bookingv1.CreateReservationRequest
	if err := req.UnmarshalWire(full[:len(full)-3]); err == nil {
		t.Fatal("expected parse error")
	}
}
