package auth

import (
	"context"
	"errors"
	"net/http"

	"github.com/Domenick1991/bookingengine/internal/domain"
	"github.com/Domenick1991/bookingengine/internal/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// Gin authenticates every request and stores the Actor on the request context.
func Gin(v *Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, err := BearerToken(c.GetHeader("Authorization"))
		if err == nil {
			var actor domain.Actor
			actor, err = v.Parse(raw)
			if err == nil {
				c.Request = c.Request.WithContext(WithActor(c.Request.Context(), actor))
				c.Next()
				return
			}
		}

		message := "invalid access token"
		if errors.Is(err, ErrMissingToken) {
			message = "authorization header is required"
		}
		logger.WithContext(c.Request.Context()).Debug("request rejected", zap.Error(err))
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error": gin.H{"code": "UNAUTHORIZED", "message": message},
		})
	}
}

// UnaryServerInterceptor authenticates gRPC calls from the "authorization"
// metadata entry.
func UnaryServerInterceptor(v *Verifier) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		var header string
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			if values := md.Get("authorization"); len(values) > 0 {
				header = values[0]
			}
		}
		raw, err := BearerToken(header)
		if err != nil {
			return nil, status.Error(codes.Unauthenticated, err.Error())
		}
		actor, err := v.Parse(raw)
		if err != nil {
			return nil, status.Error(codes.Unauthenticated, ErrInvalidToken.Error())
		}
		return handler(WithActor(ctx, actor), req)
	}
}
