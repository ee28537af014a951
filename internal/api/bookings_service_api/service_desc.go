package bookings_service_api

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

const serviceName = "bookings.v1.BookingsService"

// BookingsServiceServer exchanges google.protobuf.Struct messages whose fields
// mirror the JSON bodies of the HTTP API.
type BookingsServiceServer interface {
	CreateBooking(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	CancelBooking(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	GetBooking(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	ListBookings(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	ListTickets(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

type unaryMethod func(s BookingsServiceServer, ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(name string, call unaryMethod) func(interface{}, context.Context, func(interface{}) error, grpc.UnaryServerInterceptor) (interface{}, error) {
	return func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(BookingsServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + serviceName + "/" + name}
		handler := func(ctx context.Context, req interface{}) (interface{}, error) {
			return call(srv.(BookingsServiceServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

var BookingsServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*BookingsServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "CreateBooking", Handler: unaryHandler("CreateBooking", BookingsServiceServer.CreateBooking)},
		{MethodName: "CancelBooking", Handler: unaryHandler("CancelBooking", BookingsServiceServer.CancelBooking)},
		{MethodName: "GetBooking", Handler: unaryHandler("GetBooking", BookingsServiceServer.GetBooking)},
		{MethodName: "ListBookings", Handler: unaryHandler("ListBookings", BookingsServiceServer.ListBookings)},
		{MethodName: "ListTickets", Handler: unaryHandler("ListTickets", BookingsServiceServer.ListTickets)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "bookings/v1/bookings_service.proto",
}

func RegisterBookingsServiceServer(s grpc.ServiceRegistrar, srv BookingsServiceServer) {
	s.RegisterService(&BookingsServiceDesc, srv)
}
