package grpc

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/farmclub/internal/common"
	pb "github.com/dmitrijs2005/farmclub/internal/identitypb"
	"github.com/dmitrijs2005/farmclub/internal/server/auth"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type ctxKey string

const (
	userIDKey ctxKey = "userID"
	claimsKey ctxKey = "claims"
)

// publicMethods can be called without an access token.
var publicMethods = map[string]struct{}{
	pb.FullMethod(pb.MethodPing):         {},
	pb.FullMethod(pb.MethodRegister):     {},
	pb.FullMethod(pb.MethodGetSalt):      {},
	pb.FullMethod(pb.MethodLogin):        {},
	pb.FullMethod(pb.MethodRefreshToken): {},
}

func (s *GRPCServer) accessTokenInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	if _, ok := publicMethods[info.FullMethod]; ok {
		return handler(ctx, req)
	}

	var accessToken string
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if values := md.Get(common.AccessTokenHeaderName); len(values) > 0 {
			accessToken = values[0]
		}
	}
	if accessToken == "" {
		return nil, status.Error(codes.Unauthenticated, "missing token")
	}

	claims, err := s.users.ParseAccessToken(accessToken)
	if err != nil {
		if errors.Is(err, common.ErrTokenExpired) {
			return nil, status.Error(codes.Unauthenticated, common.ErrTokenExpired.Error())
		}
		return nil, status.Error(codes.Unauthenticated, common.ErrInvalidToken.Error())
	}

	revoked, err := s.users.IsRevoked(ctx, claims.ID)
	if err != nil {
		s.logger.Error(ctx, "revocation check failed", "error", err)
		return nil, status.Error(codes.Unavailable, "revocation list unavailable")
	}
	if revoked {
		return nil, status.Error(codes.Unauthenticated, common.ErrTokenRevoked.Error())
	}

	ctx = context.WithValue(ctx, userIDKey, claims.UserID)
	ctx = context.WithValue(ctx, claimsKey, claims)

	return handler(ctx, req)
}

func userIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	return id, ok && id != ""
}

func claimsFromContext(ctx context.Context) (*auth.Claims, bool) {
	c, ok := ctx.Value(claimsKey).(*auth.Claims)
	return c, ok && c != nil
}
