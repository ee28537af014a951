package bookings_service_api

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Domenick1991/bookingengine/internal/auth"
	"github.com/Domenick1991/bookingengine/internal/domain"
	"github.com/Domenick1991/bookingengine/internal/logger"
	"github.com/Domenick1991/bookingengine/internal/service/booking"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// Server implements BookingsServiceServer on top of the booking use case.
type Server struct {
	bookings booking.BookingUseCase
}

func NewServer(bookings booking.BookingUseCase) *Server {
	return &Server{bookings: bookings}
}

type pnrRequest struct {
	PNR string `json:"pnr"`
}

type listBookingsRequest struct {
	Owner int64 `json:"owner"`
}

func actor(ctx context.Context) (domain.Actor, error) {
	a, ok := auth.ActorFrom(ctx)
	if !ok {
		return domain.Actor{}, status.Error(codes.Unauthenticated, "authentication required")
	}
	return a, nil
}

func (s *Server) CreateBooking(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	a, err := actor(ctx)
	if err != nil {
		return nil, err
	}
	var in booking.CreateBookingInput
	if err := decode(req, &in); err != nil {
		return nil, err
	}
	created, err := s.bookings.CreateBooking(ctx, a, in)
	if err != nil {
		return nil, toStatus(err)
	}
	return encode(ctx, created)
}

func (s *Server) CancelBooking(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	a, err := actor(ctx)
	if err != nil {
		return nil, err
	}
	var in pnrRequest
	if err := decode(req, &in); err != nil {
		return nil, err
	}
	if err := s.bookings.CancelBooking(ctx, a, in.PNR); err != nil {
		return nil, toStatus(err)
	}
	return encode(ctx, map[string]string{"message": "booking " + booking.NormalizePNR(in.PNR) + " cancelled"})
}

func (s *Server) GetBooking(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	a, err := actor(ctx)
	if err != nil {
		return nil, err
	}
	var in pnrRequest
	if err := decode(req, &in); err != nil {
		return nil, err
	}
	b, err := s.bookings.GetBooking(ctx, a, in.PNR)
	if err != nil {
		return nil, toStatus(err)
	}
	return encode(ctx, b)
}

func (s *Server) ListBookings(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	a, err := actor(ctx)
	if err != nil {
		return nil, err
	}
	var in listBookingsRequest
	if err := decode(req, &in); err != nil {
		return nil, err
	}
	bookings, err := s.bookings.ListBookings(ctx, a, in.Owner)
	if err != nil {
		return nil, toStatus(err)
	}
	return encode(ctx, map[string]interface{}{"bookings": bookings})
}

func (s *Server) ListTickets(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	a, err := actor(ctx)
	if err != nil {
		return nil, err
	}
	tickets, err := s.bookings.ListTickets(ctx, a)
	if err != nil {
		return nil, toStatus(err)
	}
	return encode(ctx, map[string]interface{}{"tickets": tickets})
}

// decode maps a Struct onto a request type through its JSON form.
func decode(req *structpb.Struct, dst interface{}) error {
	if req == nil {
		return nil
	}
	data, err := json.Marshal(req.AsMap())
	if err != nil {
		return invalidArgument(fmt.Sprintf("malformed request: %v", err))
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return invalidArgument(fmt.Sprintf("malformed request: %v", err))
	}
	return nil
}

func encode(ctx context.Context, v interface{}) (*structpb.Struct, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, encodeFailed(ctx, err)
	}
	var m map[string]interface{}
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, encodeFailed(ctx, err)
	}
	out, err := structpb.NewStruct(m)
	if err != nil {
		return nil, encodeFailed(ctx, err)
	}
	return out, nil
}

func encodeFailed(ctx context.Context, err error) error {
	logger.WithContext(ctx).Error("encode grpc response", zap.Error(err))
	return status.Error(codes.Internal, "internal error")
}

var _ BookingsServiceServer = (*Server)(nil)
