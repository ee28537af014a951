package bookings_service_api

import (
	"net/http"

	"github.com/Domenick1991/bookingengine/api"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const errorDomain = "bookings.v1"

var grpcCodes = map[string]codes.Code{
	api.CodeValidation:       codes.InvalidArgument,
	api.CodeNotFound:         codes.NotFound,
	api.CodeCapacity:         codes.FailedPrecondition,
	api.CodeSeatConflict:     codes.AlreadyExists,
	api.CodeForbidden:        codes.PermissionDenied,
	api.CodeAlreadyCancelled: codes.FailedPrecondition,
	api.CodeContention:       codes.Aborted,
	api.CodeInternal:         codes.Internal,
}

// toStatus converts a domain error into a gRPC status carrying an ErrorInfo
// whose reason is the same code string the HTTP API uses.
func toStatus(err error) error {
	httpStatus, reason := api.Classify(err)
	code, ok := grpcCodes[reason]
	if !ok {
		code = codes.Internal
	}
	message := err.Error()
	if httpStatus == http.StatusInternalServerError {
		message = "internal error"
	}
	st := status.New(code, message)
	if withDetails, derr := st.WithDetails(&errdetails.ErrorInfo{Reason: reason, Domain: errorDomain}); derr == nil {
		st = withDetails
	}
	return st.Err()
}

func invalidArgument(message string) error {
	st := status.New(codes.InvalidArgument, message)
	if withDetails, err := st.WithDetails(&errdetails.ErrorInfo{Reason: api.CodeValidation, Domain: errorDomain}); err == nil {
		st = withDetails
	}
	return st.Err()
}
