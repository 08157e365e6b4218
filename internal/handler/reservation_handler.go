package handler

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"slot-booking-api/internal/booking"
	pb "slot-booking-api/internal/bookingv1"
	"slot-booking-api/internal/model"
	"slot-booking-api/internal/slots"
	"slot-booking-api/internal/store"
	"slot-booking-api/internal/timefmt"
)

func (h *Handler) CreateReservation(ctx context.Context, req *pb.CreateReservationRequest) (*pb.CreateReservationResponse, error) {
	r := model.Reservation{
		Name:       strings.TrimSpace(req.Name),
		Department: strings.TrimSpace(req.Department),
		Extension:  strings.TrimSpace(req.Extension),
		Date:       timefmt.NormalizeDate(req.Date),
		TimeSlot:   timefmt.NormalizeTime(req.TimeSlot),
	}
	if r.Name == "" || r.Department == "" || r.Extension == "" || r.Date == "" || r.TimeSlot == "" {
		return nil, status.Error(codes.InvalidArgument, "name, department, extension, date and time required")
	}
	if !h.schedule.HasDay(r.Date) {
		return nil, status.Error(codes.InvalidArgument, "date is not open for booking")
	}

	// app-level check against the local view; advisory only
	day := slots.Resolve(r.Date, h.view.Snapshot(), h.schedule)
	slot, ok := day.Slot(r.TimeSlot)
	if !ok {
		return nil, status.Error(codes.InvalidArgument, "not a bookable time slot")
	}
	if slot.IsBooked {
		return nil, status.Error(codes.AlreadyExists, "time slot already booked")
	}

	saved, err := h.client.Create(ctx, r)
	switch {
	case errors.Is(err, store.ErrSlotTaken):
		// store uniqueness caught a race
		return nil, status.Error(codes.AlreadyExists, "time slot already booked")
	case errors.Is(err, store.ErrNotCanonical):
		return nil, status.Error(codes.InvalidArgument, "date or time not in canonical form")
	case errors.Is(err, booking.ErrUnavailable):
		return nil, status.Error(codes.Unavailable, "reservation store unavailable, try again")
	case err != nil:
		h.log.Error("create reservation", zap.Error(err))
		return nil, status.Error(codes.Internal, "internal error")
	}

	if err := h.events.ReservationCreated(ctx, saved); err != nil {
		h.log.Warn("reservation event not published", zap.Error(err), zap.String("reservation_id", saved.ID))
	}
	if err := h.view.Refresh(ctx); err != nil {
		h.log.Warn("refresh after create failed", zap.Error(err))
	}

	tok, err := h.receipts.Issue(saved)
	if err != nil {
		h.log.Error("issue receipt", zap.Error(err), zap.String("reservation_id", saved.ID))
		tok = ""
	}

	h.log.Info("reservation created",
		zap.String("reservation_id", saved.ID),
		zap.String("date", saved.Date),
		zap.String("time", saved.TimeSlot))

	return &pb.CreateReservationResponse{Reservation: toProto(saved), Receipt: tok}, nil
}

func (h *Handler) ListReservations(ctx context.Context, req *pb.ListReservationsRequest) (*pb.ListReservationsResponse, error) {
	date := timefmt.NormalizeDate(req.Date)

	regs := slots.Chronological(h.view.Snapshot())
	out := make([]*pb.Reservation, 0, len(regs))
	for _, r := range regs {
		if date != "" && r.Date != date {
			continue
		}
		out = append(out, toProto(r))
	}
	return &pb.ListReservationsResponse{Reservations: out}, nil
}

func (h *Handler) GetAvailability(ctx context.Context, req *pb.GetAvailabilityRequest) (*pb.GetAvailabilityResponse, error) {
	if strings.TrimSpace(req.Date) == "" {
		return nil, status.Error(codes.InvalidArgument, "date required")
	}
	date := timefmt.NormalizeDate(req.Date)
	if !h.schedule.HasDay(date) {
		return nil, status.Error(codes.NotFound, "date is not open for booking")
	}

	day := slots.Resolve(date, h.view.Snapshot(), h.schedule)
	resp := &pb.GetAvailabilityResponse{Date: day.Date, Free: int32(day.Free())}
	for _, w := range day.Windows {
		pw := &pb.Window{Name: w.Name, Label: w.Label}
		for _, s := range w.Slots {
			pw.Slots = append(pw.Slots, &pb.TimeSlot{
				Label:     s.Label,
				StartTime: s.StartTime,
				EndTime:   s.EndTime,
				IsBooked:  s.IsBooked,
			})
		}
		resp.Windows = append(resp.Windows, pw)
	}
	return resp, nil
}

func (h *Handler) GetSchedule(ctx context.Context, req *pb.GetScheduleRequest) (*pb.GetScheduleResponse, error) {
	resp := &pb.GetScheduleResponse{
		Days:            append([]string(nil), h.schedule.Days...),
		IntervalMinutes: int32(h.schedule.IntervalMinutes),
		Timezone:        h.timezone,
	}
	for _, w := range h.schedule.Windows {
		resp.Windows = append(resp.Windows, &pb.Window{Name: w.Name, Label: w.Label()})
	}
	return resp, nil
}

func (h *Handler) Refresh(ctx context.Context, req *pb.RefreshRequest) (*pb.RefreshResponse, error) {
	if err := h.view.Refresh(ctx); err != nil {
		if errors.Is(err, booking.ErrUnavailable) {
			return nil, status.Error(codes.Unavailable, "reservation store unavailable")
		}
		return nil, status.Error(codes.Internal, "internal error")
	}
	_, at := h.view.Synced()
	return &pb.RefreshResponse{
		Count:    int32(len(h.view.Snapshot())),
		SyncedAt: at.UnixMilli(),
	}, nil
}

func (h *Handler) CheckReceipt(ctx context.Context, req *pb.CheckReceiptRequest) (*pb.CheckReceiptResponse, error) {
	if req.Token == "" {
		return nil, status.Error(codes.InvalidArgument, "token required")
	}
	claims, err := h.receipts.Parse(req.Token)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, "invalid receipt")
	}

	for _, r := range h.view.Snapshot() {
		if r.ID == claims.ReservationID {
			resp := &pb.CheckReceiptResponse{Reservation: toProto(r)}
			if claims.ExpiresAt != nil {
				resp.ExpiresAt = claims.ExpiresAt.UnixMilli()
			}
			return resp, nil
		}
	}
	return nil, status.Error(codes.NotFound, "reservation not found")
}

func toProto(r model.Reservation) *pb.Reservation {
	return &pb.Reservation{
		ID:         r.ID,
		Name:       r.Name,
		Department: r.Department,
		Extension:  r.Extension,
		Date:       r.Date,
		TimeSlot:   r.TimeSlot,
		CreatedAt:  r.CreatedAt,
	}
}
