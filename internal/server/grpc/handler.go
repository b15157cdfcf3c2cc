package grpc

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/farmclub/internal/common"
	pb "github.com/dmitrijs2005/farmclub/internal/identitypb"
	"github.com/dmitrijs2005/farmclub/internal/server/models"
	"github.com/dmitrijs2005/farmclub/internal/server/services"
	"github.com/dmitrijs2005/farmclub/internal/server/storage"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func (s *GRPCServer) Ping(ctx context.Context, req *pb.PingRequest) (*pb.PingResponse, error) {
	return &pb.PingResponse{Status: "OK"}, nil
}

func (s *GRPCServer) Register(ctx context.Context, req *pb.RegisterRequest) (*pb.RegisterResponse, error) {
	s.logger.Info(ctx, "Registration request")

	user, err := s.users.Register(ctx, req.Email, req.DisplayName, req.Salt, req.Verifier)
	if err != nil {
		return nil, s.toStatus(ctx, "register", err)
	}

	s.logger.Info(ctx, "Registered", "user_id", user.ID)
	return &pb.RegisterResponse{User: toPBUser(user)}, nil
}

func (s *GRPCServer) GetSalt(ctx context.Context, req *pb.GetSaltRequest) (*pb.GetSaltResponse, error) {
	salt, err := s.users.GetSalt(ctx, req.Email)
	if err != nil {
		return nil, s.toStatus(ctx, "get salt", err)
	}
	return &pb.GetSaltResponse{Salt: salt}, nil
}

func (s *GRPCServer) Login(ctx context.Context, req *pb.LoginRequest) (*pb.LoginResponse, error) {
	tokens, user, err := s.users.Login(ctx, req.Email, req.Verifier)
	if err != nil {
		return nil, s.toStatus(ctx, "login", err)
	}

	s.logger.Info(ctx, "Logged in", "user_id", user.ID)
	return &pb.LoginResponse{
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		User:         toPBUser(user),
	}, nil
}

func (s *GRPCServer) RefreshToken(ctx context.Context, req *pb.RefreshTokenRequest) (*pb.RefreshTokenResponse, error) {
	tokens, err := s.users.RefreshToken(ctx, req.RefreshToken)
	if err != nil {
		return nil, s.toStatus(ctx, "refresh token", err)
	}
	return &pb.RefreshTokenResponse{AccessToken: tokens.AccessToken, RefreshToken: tokens.RefreshToken}, nil
}

func (s *GRPCServer) WhoAmI(ctx context.Context, req *pb.WhoAmIRequest) (*pb.WhoAmIResponse, error) {
	userID, ok := userIDFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, common.ErrorUnauthorized.Error())
	}

	user, err := s.users.WhoAmI(ctx, userID)
	if err != nil {
		return nil, s.toStatus(ctx, "whoami", err)
	}
	return &pb.WhoAmIResponse{User: toPBUser(user)}, nil
}

func (s *GRPCServer) SignOut(ctx context.Context, req *pb.SignOutRequest) (*pb.SignOutResponse, error) {
	claims, ok := claimsFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, common.ErrorUnauthorized.Error())
	}

	if err := s.users.SignOut(ctx, claims); err != nil {
		return nil, s.toStatus(ctx, "sign out", err)
	}

	s.logger.Info(ctx, "Signed out", "user_id", claims.UserID)
	return &pb.SignOutResponse{}, nil
}

func (s *GRPCServer) CreateProfile(ctx context.Context, req *pb.CreateProfileRequest) (*pb.CreateProfileResponse, error) {
	userID, ok := userIDFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, common.ErrorUnauthorized.Error())
	}
	if req.Profile == nil {
		return nil, status.Error(codes.InvalidArgument, common.ReasonMissingFields)
	}

	p, err := s.profiles.Create(ctx, userID, fromPBProfile(req.Profile))
	if err != nil {
		return nil, s.toStatus(ctx, "create profile", err)
	}
	return &pb.CreateProfileResponse{Profile: toPBProfile(p)}, nil
}

func (s *GRPCServer) GetProfile(ctx context.Context, req *pb.GetProfileRequest) (*pb.GetProfileResponse, error) {
	userID, ok := userIDFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, common.ErrorUnauthorized.Error())
	}

	p, err := s.profiles.Get(ctx, userID, req.UID)
	if err != nil {
		return nil, s.toStatus(ctx, "get profile", err)
	}
	return &pb.GetProfileResponse{Profile: toPBProfile(p)}, nil
}

func (s *GRPCServer) ProfileImageUploadURL(ctx context.Context, req *pb.ProfileImageUploadURLRequest) (*pb.ProfileImageUploadURLResponse, error) {
	userID, ok := userIDFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, common.ErrorUnauthorized.Error())
	}

	u, err := s.profiles.ImageUploadURL(ctx, userID, req.FileName, req.ContentType)
	if err != nil {
		return nil, s.toStatus(ctx, "image upload url", err)
	}
	return &pb.ProfileImageUploadURLResponse{Key: u.Key, URL: u.URL, ExpiresAt: u.ExpiresAt}, nil
}

// toStatus turns a service error into the status the client maps back to
// its own error kinds. Unexpected errors are logged and hidden.
func (s *GRPCServer) toStatus(ctx context.Context, op string, err error) error {
	switch {
	case errors.Is(err, common.ErrorUnauthorized),
		errors.Is(err, common.ErrRefreshTokenExpired),
		errors.Is(err, common.ErrInvalidToken),
		errors.Is(err, common.ErrTokenRevoked):
		return status.Error(codes.Unauthenticated, err.Error())
	case errors.Is(err, common.ErrorInvalidEmail):
		return status.Error(codes.InvalidArgument, common.ReasonInvalidEmail)
	case errors.Is(err, common.ErrorWeakPassword):
		return status.Error(codes.InvalidArgument, common.ReasonWeakPassword)
	case errors.Is(err, common.ErrorMissingFields):
		return status.Error(codes.InvalidArgument, common.ReasonMissingFields)
	case errors.Is(err, common.ErrorInvalidRole):
		return status.Error(codes.InvalidArgument, common.ReasonInvalidRole)
	case errors.Is(err, storage.ErrInvalidFileName):
		return status.Error(codes.InvalidArgument, storage.ErrInvalidFileName.Error())
	case errors.Is(err, common.ErrorAlreadyExists):
		return status.Error(codes.AlreadyExists, err.Error())
	case errors.Is(err, common.ErrorNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, common.ErrorForbidden):
		return status.Error(codes.PermissionDenied, err.Error())
	case errors.Is(err, services.ErrUploadsDisabled):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return status.FromContextError(err).Err()
	}

	s.logger.Error(ctx, op+" failed", "error", err)
	return status.Error(codes.Internal, common.ErrorInternal.Error())
}

func toPBUser(u *models.User) *pb.User {
	if u == nil {
		return nil
	}
	return &pb.User{ID: u.ID, Email: u.Email, DisplayName: u.DisplayName}
}

func toPBProfile(p *models.Profile) *pb.Profile {
	if p == nil {
		return nil
	}
	return &pb.Profile{
		UID:         p.UID,
		Role:        p.Role,
		DisplayName: p.DisplayName,
		Email:       p.Email,
		FarmID:      p.FarmID,
		CreatedAt:   p.CreatedAt,
	}
}

func fromPBProfile(p *pb.Profile) *models.Profile {
	return &models.Profile{
		UID:         p.UID,
		Role:        p.Role,
		DisplayName: p.DisplayName,
		Email:       p.Email,
		FarmID:      p.FarmID,
		CreatedAt:   p.CreatedAt,
	}
}
