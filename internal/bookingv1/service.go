package bookingv1

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Codec marshals Message values. Install it on the server with
// grpc.ForceServerCodec and on clients with grpc.ForceCodec.
type Codec struct{}

func (Codec) Marshal(v any) ([]byte, error) {
	m, ok := v.(Message)
	if !ok {
		return nil, fmt.Errorf("bookingv1: cannot marshal %T", v)
	}
	return m.MarshalWire(), nil
}

func (Codec) Unmarshal(data []byte, v any) error {
	m, ok := v.(Message)
	if !ok {
		return fmt.Errorf("bookingv1: cannot unmarshal into %T", v)
	}
	return m.UnmarshalWire(data)
}

func (Codec) Name() string { return "proto" }

const (
	ServiceName = "booking.v1.BookingService"

	CreateReservationMethod = "/booking.v1.BookingService/CreateReservation"
	ListReservationsMethod  = "/booking.v1.BookingService/ListReservations"
	GetAvailabilityMethod   = "/booking.v1.BookingService/GetAvailability"
	GetScheduleMethod       = "/booking.v1.BookingService/GetSchedule"
	RefreshMethod           = "/booking.v1.BookingService/Refresh"
	CheckReceiptMethod      = "/booking.v1.BookingService/CheckReceipt"
)

type BookingServiceServer interface {
	CreateReservation(context.Context, *CreateReservationRequest) (*CreateReservationResponse, error)
	ListReservations(context.Context, *ListReservationsRequest) (*ListReservationsResponse, error)
	GetAvailability(context.Context, *GetAvailabilityRequest) (*GetAvailabilityResponse, error)
	GetSchedule(context.Context, *GetScheduleRequest) (*GetScheduleResponse, error)
	Refresh(context.Context, *RefreshRequest) (*RefreshResponse, error)
	CheckReceipt(context.Context, *CheckReceiptRequest) (*CheckReceiptResponse, error)
}

// UnimplementedBookingServiceServer can be embedded to stay compatible with
// methods added later.
type UnimplementedBookingServiceServer struct{}

func (UnimplementedBookingServiceServer) CreateReservation(context.Context, *CreateReservationRequest) (*CreateReservationResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method CreateReservation not implemented")
}
func (UnimplementedBookingServiceServer) ListReservations(context.Context, *ListReservationsRequest) (*ListReservationsResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ListReservations not implemented")
}
func (UnimplementedBookingServiceServer) GetAvailability(context.Context, *GetAvailabilityRequest) (*GetAvailabilityResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetAvailability not implemented")
}
func (UnimplementedBookingServiceServer) GetSchedule(context.Context, *GetScheduleRequest) (*GetScheduleResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetSchedule not implemented")
}
func (UnimplementedBookingServiceServer) Refresh(context.Context, *RefreshRequest) (*RefreshResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Refresh not implemented")
}
func (UnimplementedBookingServiceServer) CheckReceipt(context.Context, *CheckReceiptRequest) (*CheckReceiptResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method CheckReceipt not implemented")
}

func RegisterBookingServiceServer(s grpc.ServiceRegistrar, srv BookingServiceServer) {
	s.RegisterService(&ServiceDesc, srv)
}

// unary adapts one typed server method to a grpc.MethodDesc.
func unary[T any, PT interface {
	*T
	Message
}](name string, call func(BookingServiceServer, context.Context, PT) (any, error)) grpc.MethodDesc {
	full := "/" + ServiceName + "/" + name
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := PT(new(T))
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(BookingServiceServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: full}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(BookingServiceServer), ctx, req.(PT))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*BookingServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("CreateReservation", func(s BookingServiceServer, ctx context.Context, in *CreateReservationRequest) (any, error) {
			return s.CreateReservation(ctx, in)
		}),
		unary("ListReservations", func(s BookingServiceServer, ctx context.Context, in *ListReservationsRequest) (any, error) {
			return s.ListReservations(ctx, in)
		}),
		unary("GetAvailability", func(s BookingServiceServer, ctx context.Context, in *GetAvailabilityRequest) (any, error) {
			return s.GetAvailability(ctx, in)
		}),
		unary("GetSchedule", func(s BookingServiceServer, ctx context.Context, in *GetScheduleRequest) (any, error) {
			return s.GetSchedule(ctx, in)
		}),
		unary("Refresh", func(s BookingServiceServer, ctx context.Context, in *RefreshRequest) (any, error) {
			return s.Refresh(ctx, in)
		}),
		unary("CheckReceipt", func(s BookingServiceServer, ctx context.Context, in *CheckReceiptRequest) (any, error) {
			return s.CheckReceipt(ctx, in)
		}),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "booking.proto",
}

// BookingServiceClient is the client side of the service.
type BookingServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewBookingServiceClient(cc grpc.ClientConnInterface) *BookingServiceClient {
	return &BookingServiceClient{cc: cc}
}

func invoke[Resp any, PResp interface {
	*Resp
	Message
}](ctx context.Context, cc grpc.ClientConnInterface, method string, in Message, opts []grpc.CallOption) (PResp, error) {
	out := PResp(new(Resp))
	opts = append([]grpc.CallOption{grpc.ForceCodec(Codec{})}, opts...)
	if err := cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *BookingServiceClient) CreateReservation(ctx context.Context, in *CreateReservationRequest, opts ...grpc.CallOption) (*CreateReservationResponse, error) {
	return invoke[CreateReservationResponse](ctx, c.cc, CreateReservationMethod, in, opts)
}

func (c *BookingServiceClient) ListReservations(ctx context.Context, in *ListReservationsRequest, opts ...grpc.CallOption) (*ListReservationsResponse, error) {
	return invoke[ListReservationsResponse](ctx, c.cc, ListReservationsMethod, in, opts)
}

func (c *BookingServiceClient) GetAvailability(ctx context.Context, in *GetAvailabilityRequest, opts ...grpc.CallOption) (*GetAvailabilityResponse, error) {
	return invoke[GetAvailabilityResponse](ctx, c.cc, GetAvailabilityMethod, in, opts)
}

func (c *BookingServiceClient) GetSchedule(ctx context.Context, in *GetScheduleRequest, opts ...grpc.CallOption) (*GetScheduleResponse, error) {
	return invoke[GetScheduleResponse](ctx, c.cc, GetScheduleMethod, in, opts)
}

func (c *BookingServiceClient) Refresh(ctx context.Context, in *RefreshRequest, opts ...grpc.CallOption) (*RefreshResponse, error) {
	return invoke[RefreshResponse](ctx, c.cc, RefreshMethod, in, opts)
}

func (c *BookingServiceClient) CheckReceipt(ctx context.Context, in *CheckReceiptRequest, opts ...grpc.CallOption) (*CheckReceiptResponse, error) {
	return invoke[CheckReceiptResponse](ctx, c.cc, CheckReceiptMethod, in, opts)
}
