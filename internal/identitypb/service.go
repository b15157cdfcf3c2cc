// Package identitypb declares the identity service wire contract: request and
// response messages, the gRPC service descriptor and a typed client.
//
// Messages are plain Go structs carried as google.protobuf.Struct, so the
// package needs no generated code.
package identitypb

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

const ServiceName = "farmclub.identity.v1.IdentityService"

const (
	MethodPing                  = "Ping"
	MethodRegister              = "Register"
	MethodGetSalt               = "GetSalt"
	MethodLogin                 = "Login"
	MethodRefreshToken          = "RefreshToken"
	MethodWhoAmI                = "WhoAmI"
	MethodSignOut               = "SignOut"
	MethodCreateProfile         = "CreateProfile"
	MethodGetProfile            = "GetProfile"
	MethodProfileImageUploadURL = "ProfileImageUploadURL"
)

// FullMethod returns the "/service/method" name used in interceptors.
func FullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

type IdentityServiceServer interface {
	Ping(context.Context, *PingRequest) (*PingResponse, error)
	Register(context.Context, *RegisterRequest) (*RegisterResponse, error)
	GetSalt(context.Context, *GetSaltRequest) (*GetSaltResponse, error)
	Login(context.Context, *LoginRequest) (*LoginResponse, error)
	RefreshToken(context.Context, *RefreshTokenRequest) (*RefreshTokenResponse, error)
	WhoAmI(context.Context, *WhoAmIRequest) (*WhoAmIResponse, error)
	SignOut(context.Context, *SignOutRequest) (*SignOutResponse, error)
	CreateProfile(context.Context, *CreateProfileRequest) (*CreateProfileResponse, error)
	GetProfile(context.Context, *GetProfileRequest) (*GetProfileResponse, error)
	ProfileImageUploadURL(context.Context, *ProfileImageUploadURLRequest) (*ProfileImageUploadURLResponse, error)
}

// UnimplementedIdentityServiceServer answers every RPC with Unimplemented.
// Embed it to stay source compatible when methods are added.
type UnimplementedIdentityServiceServer struct{}

func unimplemented(method string) error {
	return status.Errorf(codes.Unimplemented, "method %s not implemented", method)
}

func (UnimplementedIdentityServiceServer) Ping(context.Context, *PingRequest) (*PingResponse, error) {
	return nil, unimplemented(MethodPing)
}
func (UnimplementedIdentityServiceServer) Register(context.Context, *RegisterRequest) (*RegisterResponse, error) {
	return nil, unimplemented(MethodRegister)
}
func (UnimplementedIdentityServiceServer) GetSalt(context.Context, *GetSaltRequest) (*GetSaltResponse, error) {
	return nil, unimplemented(MethodGetSalt)
}
func (UnimplementedIdentityServiceServer) Login(context.Context, *LoginRequest) (*LoginResponse, error) {
	return nil, unimplemented(MethodLogin)
}
func (UnimplementedIdentityServiceServer) RefreshToken(context.Context, *RefreshTokenRequest) (*RefreshTokenResponse, error) {
	return nil, unimplemented(MethodRefreshToken)
}
func (UnimplementedIdentityServiceServer) WhoAmI(context.Context, *WhoAmIRequest) (*WhoAmIResponse, error) {
	return nil, unimplemented(MethodWhoAmI)
}
func (UnimplementedIdentityServiceServer) SignOut(context.Context, *SignOutRequest) (*SignOutResponse, error) {
	return nil, unimplemented(MethodSignOut)
}
func (UnimplementedIdentityServiceServer) CreateProfile(context.Context, *CreateProfileRequest) (*CreateProfileResponse, error) {
	return nil, unimplemented(MethodCreateProfile)
}
func (UnimplementedIdentityServiceServer) GetProfile(context.Context, *GetProfileRequest) (*GetProfileResponse, error) {
	return nil, unimplemented(MethodGetProfile)
}
func (UnimplementedIdentityServiceServer) ProfileImageUploadURL(context.Context, *ProfileImageUploadURLRequest) (*ProfileImageUploadURLResponse, error) {
	return nil, unimplemented(MethodProfileImageUploadURL)
}

// unary builds a MethodDesc that decodes the wire Struct into *Req, runs the
// server interceptor chain with the typed request and encodes *Resp back.
func unary[Req, Resp any](method string, call func(IdentityServiceServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			req := new(Req)
			if err := FromStruct(in, req); err != nil {
				return nil, status.Error(codes.InvalidArgument, err.Error())
			}

			handler := func(ctx context.Context, r any) (any, error) {
				resp, err := call(srv.(IdentityServiceServer), ctx, r.(*Req))
				if err != nil {
					return nil, err
				}
				out, err := ToStruct(resp)
				if err != nil {
					return nil, status.Error(codes.Internal, err.Error())
				}
				return out, nil
			}

			if interceptor == nil {
				return handler(ctx, req)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: FullMethod(method)}
			return interceptor(ctx, req, info, handler)
		},
	}
}

var IdentityService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*IdentityServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary(MethodPing, IdentityServiceServer.Ping),
		unary(MethodRegister, IdentityServiceServer.Register),
		unary(MethodGetSalt, IdentityServiceServer.GetSalt),
		unary(MethodLogin, IdentityServiceServer.Login),
		unary(MethodRefreshToken, IdentityServiceServer.RefreshToken),
		unary(MethodWhoAmI, IdentityServiceServer.WhoAmI),
		unary(MethodSignOut, IdentityServiceServer.SignOut),
		unary(MethodCreateProfile, IdentityServiceServer.CreateProfile),
		unary(MethodGetProfile, IdentityServiceServer.GetProfile),
		unary(MethodProfileImageUploadURL, IdentityServiceServer.ProfileImageUploadURL),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "farmclub/identity/v1/identity.proto",
}

func RegisterIdentityServiceServer(s grpc.ServiceRegistrar, srv IdentityServiceServer) {
	s.RegisterService(&IdentityService_ServiceDesc, srv)
}
