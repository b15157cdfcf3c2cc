// Package grpc exposes the identity service over gRPC.
package grpc

import (
	"context"
	"net"
	"time"

	pb "github.com/dmitrijs2005/farmclub/internal/identitypb"
	"github.com/dmitrijs2005/farmclub/internal/logging"
	"github.com/dmitrijs2005/farmclub/internal/server/auth"
	"github.com/dmitrijs2005/farmclub/internal/server/models"
	"github.com/dmitrijs2005/farmclub/internal/server/services"
	"google.golang.org/grpc"
)

type userService interface {
	Register(ctx context.Context, email, displayName string, salt, verifier []byte) (*models.User, error)
	GetSalt(ctx context.Context, email string) ([]byte, error)
	Login(ctx context.Context, email string, verifier []byte) (*services.TokenPair, *models.User, error)
	RefreshToken(ctx context.Context, refreshToken string) (*services.TokenPair, error)
	WhoAmI(ctx context.Context, userID string) (*models.User, error)
	SignOut(ctx context.Context, claims *auth.Claims) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
	ParseAccessToken(token string) (*auth.Claims, error)
}

type profileService interface {
	Create(ctx context.Context, callerID string, p *models.Profile) (*models.Profile, error)
	Get(ctx context.Context, callerID, uid string) (*models.Profile, error)
	ImageUploadURL(ctx context.Context, callerID, fileName, contentType string) (*services.UploadURL, error)
}

type GRPCServer struct {
	pb.UnimplementedIdentityServiceServer
	address  string
	users    userService
	profiles profileService
	logger   logging.Logger
}

func NewGRPCServer(a string, l logging.Logger, us userService, ps profileService) *GRPCServer {
	return &GRPCServer{
		address:  a,
		logger:   l.With("module", "grpc_server"),
		users:    us,
		profiles: ps,
	}
}

func (s *GRPCServer) newServer() *grpc.Server {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.loggingInterceptor, s.accessTokenInterceptor))
	pb.RegisterIdentityServiceServer(srv, s)
	return srv
}

// Run listens on the configured address and serves until ctx is done.
func (s *GRPCServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

// Serve accepts connections on lis and stops gracefully when ctx is done.
func (s *GRPCServer) Serve(ctx context.Context, lis net.Listener) error {
	srv := s.newServer()

	stopped := make(chan struct{})
	defer close(stopped)
	go func() {
		select {
		case <-ctx.Done():
			s.logger.Info(ctx, "Stopping gRPC server...")
			srv.GracefulStop()
		case <-stopped:
		}
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", lis.Addr().String())

	return srv.Serve(lis)
}

func (s *GRPCServer) loggingInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	start := time.Now()
	resp, err := handler(ctx, req)
	s.logger.Debug(ctx, "rpc", "method", info.FullMethod, "duration", time.Since(start), "error", err)
	return resp, err
}
