package client

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/farmclub/internal/common"
	pb "github.com/dmitrijs2005/farmclub/internal/identitypb"
	"github.com/dmitrijs2005/farmclub/internal/logging"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

const DefaultRequestTimeout = 10 * time.Second

type GRPCClient struct {
	endpointURL string
	timeout     time.Duration
	dialOpts    []grpc.DialOption
	tokens      TokenStore
	logger      logging.Logger

	conn   *grpc.ClientConn
	client pb.IdentityServiceClient

	mu            sync.Mutex
	accessToken   string
	refreshToken  string
	onSessionLost []func()

	refreshMu sync.Mutex
}

type Option func(*GRPCClient)

// WithRequestTimeout bounds every RPC attempt. Zero keeps the default.
func WithRequestTimeout(d time.Duration) Option {
	return func(c *GRPCClient) {
		if d > 0 {
			c.timeout = d
		}
	}
}

func WithTokenStore(ts TokenStore) Option {
	return func(c *GRPCClient) { c.tokens = ts }
}

func WithLogger(l logging.Logger) Option {
	return func(c *GRPCClient) { c.logger = l }
}

// WithDialOptions appends dial options, e.g. a bufconn dialer in tests.
func WithDialOptions(opts ...grpc.DialOption) Option {
	return func(c *GRPCClient) { c.dialOpts = append(c.dialOpts, opts...) }
}

// NewGRPCClient connects to endpointURL and restores saved tokens.
func NewGRPCClient(ctx context.Context, endpointURL string, opts ...Option) (*GRPCClient, error) {
	c := &GRPCClient{
		endpointURL: endpointURL,
		timeout:     DefaultRequestTimeout,
		tokens:      memoryTokens{},
		logger:      logging.Nop{},
	}
	for _, o := range opts {
		o(c)
	}

	access, refresh, err := c.tokens.LoadTokens(ctx)
	if err != nil {
		return nil, fmt.Errorf("load tokens: %w", err)
	}
	c.accessToken, c.refreshToken = access, refresh

	if err := c.InitGRPCClient(); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *GRPCClient) InitGRPCClient() error {
	opts := append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(s.accessTokenInterceptor),
	}, s.dialOpts...)

	conn, err := grpc.NewClient(s.endpointURL, opts...)
	if err != nil {
		return err
	}
	s.conn = conn
	s.client = pb.NewIdentityServiceClient(conn)
	return nil
}

func (s *GRPCClient) Close() error {
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Delete(common.AccessTokenHeaderName)
	if token != "" {
		md.Set(common.AccessTokenHeaderName, token)
	}
	return metadata.NewOutgoingContext(ctx, md)
}

func (s *GRPCClient) tokensSnapshot() (string, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accessToken, s.refreshToken
}

func (s *GRPCClient) invokeWithTimeout(ctx context.Context, method string, req, reply any,
	cc *grpc.ClientConn, invoker grpc.UnaryInvoker, token string, opts ...grpc.CallOption) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return invoker(withAccessToken(ctx, token), method, req, reply, cc, opts...)
}

// accessTokenInterceptor attaches the access token, bounds the call with the
// request timeout and, when the server reports an expired token, refreshes
// once and retries.
func (s *GRPCClient) accessTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply any,
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	access, _ := s.tokensSnapshot()

	err := s.invokeWithTimeout(ctx, method, req, reply, cc, invoker, access, opts...)
	if err == nil || method == pb.FullMethod(pb.MethodRefreshToken) {
		return err
	}

	st, ok := status.FromError(err)
	if !ok || st.Code() != codes.Unauthenticated || st.Message() != common.ErrTokenExpired.Error() {
		return err
	}

	newAccess, err := s.refresh(ctx, access)
	if err != nil {
		return err
	}

	return s.invokeWithTimeout(ctx, method, req, reply, cc, invoker, newAccess, opts...)
}

// refresh exchanges the refresh token for a new pair. stale is the access
// token that was rejected; if another call already replaced it, the current
// token is returned without a round trip.
func (s *GRPCClient) refresh(ctx context.Context, stale string) (string, error) {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	access, refresh := s.tokensSnapshot()
	if access != stale && access != "" {
		return access, nil
	}
	if refresh == "" {
		return "", ErrSessionExpired
	}

	resp, err := s.client.RefreshToken(ctx, &pb.RefreshTokenRequest{RefreshToken: refresh})
	if err != nil {
		if status.Code(err) == codes.Unauthenticated {
			s.logger.Warn(ctx, "refresh token rejected, dropping session", "error", err)
			s.dropSession(ctx)
			return "", ErrSessionExpired
		}
		return "", err
	}

	if err := s.setTokens(ctx, resp.AccessToken, resp.RefreshToken); err != nil {
		return "", err
	}
	s.logger.Debug(ctx, "tokens refreshed")
	return resp.AccessToken, nil
}

func (s *GRPCClient) setTokens(ctx context.Context, access, refresh string) error {
	s.mu.Lock()
	s.accessToken, s.refreshToken = access, refresh
	s.mu.Unlock()

	if err := s.tokens.SaveTokens(ctx, access, refresh); err != nil {
		return fmt.Errorf("save tokens: %w", err)
	}
	return nil
}

func (s *GRPCClient) clearTokens(ctx context.Context) {
	s.mu.Lock()
	s.accessToken, s.refreshToken = "", ""
	s.mu.Unlock()

	if err := s.tokens.ClearTokens(ctx); err != nil {
		s.logger.Warn(ctx, "failed to clear saved tokens", "error", err)
	}
}

func (s *GRPCClient) dropSession(ctx context.Context) {
	s.clearTokens(ctx)

	s.mu.Lock()
	hooks := append([]func(){}, s.onSessionLost...)
	s.mu.Unlock()

	for _, fn := range hooks {
		fn()
	}
}

func (s *GRPCClient) HasSession() bool {
	access, refresh := s.tokensSnapshot()
	return access != "" || refresh != ""
}

func (s *GRPCClient) OnSessionLost(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onSessionLost = append(s.onSessionLost, fn)
}

func (s *GRPCClient) Ping(ctx context.Context) error {
	resp, err := s.client.Ping(ctx, &pb.PingRequest{})
	if err != nil {
		return s.mapError(err)
	}
	if resp.Status != "OK" {
		return ErrUnavailable
	}
	return nil
}

func (s *GRPCClient) Register(ctx context.Context, email, displayName string, salt []byte, verifier []byte) (*pb.User, error) {
	req := &pb.RegisterRequest{Email: email, DisplayName: displayName, Salt: salt, Verifier: verifier}

	resp, err := s.client.Register(ctx, req)
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp.User, nil
}

func (s *GRPCClient) GetSalt(ctx context.Context, email string) ([]byte, error) {
	resp, err := s.client.GetSalt(ctx, &pb.GetSaltRequest{Email: email})
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp.Salt, nil
}

// Login sends the verifier and keeps the issued tokens.
func (s *GRPCClient) Login(ctx context.Context, email string, verifier []byte) (*pb.User, error) {
	resp, err := s.client.Login(ctx, &pb.LoginRequest{Email: email, Verifier: verifier})
	if err != nil {
		return nil, s.mapError(err)
	}

	if err := s.setTokens(ctx, resp.AccessToken, resp.RefreshToken); err != nil {
		return nil, err
	}
	return resp.User, nil
}

func (s *GRPCClient) WhoAmI(ctx context.Context) (*pb.User, error) {
	if !s.HasSession() {
		return nil, ErrNoSession
	}
	resp, err := s.client.WhoAmI(ctx, &pb.WhoAmIRequest{})
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp.User, nil
}

// SignOut revokes the session on the server. Local tokens are dropped even
// when the call fails.
func (s *GRPCClient) SignOut(ctx context.Context) error {
	if !s.HasSession() {
		return nil
	}
	_, err := s.client.SignOut(ctx, &pb.SignOutRequest{})
	s.clearTokens(ctx)
	if err != nil {
		return s.mapError(err)
	}
	return nil
}

func (s *GRPCClient) CreateProfile(ctx context.Context, p *pb.Profile) (*pb.Profile, error) {
	resp, err := s.client.CreateProfile(ctx, &pb.CreateProfileRequest{Profile: p})
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp.Profile, nil
}

func (s *GRPCClient) GetProfile(ctx context.Context, uid string) (*pb.Profile, error) {
	resp, err := s.client.GetProfile(ctx, &pb.GetProfileRequest{UID: uid})
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp.Profile, nil
}

func (s *GRPCClient) ProfileImageUploadURL(ctx context.Context, fileName, contentType string) (*pb.ProfileImageUploadURLResponse, error) {
	resp, err := s.client.ProfileImageUploadURL(ctx, &pb.ProfileImageUploadURLRequest{FileName: fileName, ContentType: contentType})
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp, nil
}

func (s *GRPCClient) mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrSessionExpired) {
		return err
	}
	st, ok := status.FromError(err)
	if !ok {
		if errors.Is(err, context.DeadlineExceeded) {
			return ErrUnavailable
		}
		return fmt.Errorf("identity rpc: %w", err)
	}
	switch st.Code() {
	case codes.Unauthenticated:
		return ErrUnauthorized
	case codes.PermissionDenied:
		return ErrForbidden
	case codes.AlreadyExists:
		return ErrAlreadyExists
	case codes.NotFound:
		return ErrNotFound
	case codes.InvalidArgument:
		switch st.Message() {
		case common.ReasonInvalidEmail:
			return ErrInvalidEmail
		case common.ReasonWeakPassword:
			return ErrWeakPassword
		case common.ReasonMissingFields:
			return ErrMissingFields
		case common.ReasonInvalidRole:
			return ErrInvalidRole
		}
		return fmt.Errorf("identity rpc: %w", err)
	case codes.Unavailable, codes.DeadlineExceeded:
		return ErrUnavailable
	default:
		return fmt.Errorf("identity rpc: %w", err)
	}
}
