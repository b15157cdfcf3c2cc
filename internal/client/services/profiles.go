package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/farmclub/internal/auth"
	"github.com/dmitrijs2005/farmclub/internal/client/client"
	"github.com/dmitrijs2005/farmclub/internal/client/repositories/accounts"
	"github.com/dmitrijs2005/farmclub/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/farmclub/internal/client/repositories/profiles"
	pb "github.com/dmitrijs2005/farmclub/internal/identitypb"
)

// LocalProfileStore keeps profiles in the client database. An account that
// has no profile row yet is reported with the role embedded in its record.
type LocalProfileStore struct {
	db *sql.DB
}

var _ auth.ProfileStore = (*LocalProfileStore)(nil)

func NewLocalProfileStore(db *sql.DB) *LocalProfileStore {
	return &LocalProfileStore{db: db}
}

func (s *LocalProfileStore) Create(ctx context.Context, p *auth.Profile) error {
	err := profiles.NewSQLiteRepository(s.db).Create(ctx, p)
	if errors.Is(err, profiles.ErrExists) {
		return auth.ErrAlreadyExists
	}
	return err
}

func (s *LocalProfileStore) Fetch(ctx context.Context, uid string) (*auth.Profile, error) {
	p, err := profiles.NewSQLiteRepository(s.db).Get(ctx, uid)
	if err != nil || p != nil {
		return p, err
	}

	acct, err := accounts.NewSQLiteRepository(s.db).GetByID(ctx, uid)
	if err != nil || acct == nil {
		return nil, err
	}
	return &auth.Profile{
		UID:         acct.ID,
		Role:        auth.Role(acct.Role),
		DisplayName: acct.DisplayName,
		Email:       acct.Email,
		CreatedAt:   acct.CreatedAt,
	}, nil
}

// RemoteProfileStore reads and writes profiles through the identity service.
type RemoteProfileStore struct {
	client client.Client
}

var _ auth.ProfileStore = (*RemoteProfileStore)(nil)

func NewRemoteProfileStore(c client.Client) *RemoteProfileStore {
	return &RemoteProfileStore{client: c}
}

func (s *RemoteProfileStore) Create(ctx context.Context, p *auth.Profile) error {
	_, err := s.client.CreateProfile(ctx, toPBProfile(p))
	if err != nil {
		return mapClientError(err)
	}
	return nil
}

func (s *RemoteProfileStore) Fetch(ctx context.Context, uid string) (*auth.Profile, error) {
	p, err := s.client.GetProfile(ctx, uid)
	if errors.Is(err, client.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, mapClientError(err)
	}
	return fromPBProfile(p), nil
}

// MetadataPendingProfiles keeps profiles whose creation failed after signup,
// so a later bootstrap or login can finish the write.
type MetadataPendingProfiles struct {
	repo metadata.Repository
}

var _ auth.PendingProfiles = (*MetadataPendingProfiles)(nil)

func NewMetadataPendingProfiles(repo metadata.Repository) *MetadataPendingProfiles {
	return &MetadataPendingProfiles{repo: repo}
}

func (s *MetadataPendingProfiles) SavePending(ctx context.Context, p *auth.Profile) error {
	return metadata.SetJSON(ctx, s.repo, metadata.PendingProfileKey(p.UID), p)
}

func (s *MetadataPendingProfiles) Pending(ctx context.Context, uid string) (*auth.Profile, error) {
	return metadata.GetJSON[auth.Profile](ctx, s.repo, metadata.PendingProfileKey(uid))
}

func (s *MetadataPendingProfiles) DeletePending(ctx context.Context, uid string) error {
	return s.repo.Delete(ctx, metadata.PendingProfileKey(uid))
}

func toPBProfile(p *auth.Profile) *pb.Profile {
	return &pb.Profile{
		UID:         p.UID,
		Role:        string(p.Role),
		DisplayName: p.DisplayName,
		Email:       p.Email,
		FarmID:      p.FarmID,
		CreatedAt:   p.CreatedAt,
	}
}

func fromPBProfile(p *pb.Profile) *auth.Profile {
	if p == nil {
		return nil
	}
	return &auth.Profile{
		UID:         p.UID,
		Role:        auth.Role(p.Role),
		DisplayName: p.DisplayName,
		Email:       p.Email,
		FarmID:      p.FarmID,
		CreatedAt:   p.CreatedAt,
	}
}

// mapClientError turns transport errors into auth kinds.
func mapClientError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, client.ErrAlreadyExists):
		return auth.ErrAlreadyExists
	case errors.Is(err, client.ErrUnavailable):
		return auth.ErrNetworkUnavailable
	case errors.Is(err, client.ErrInvalidEmail):
		return auth.ErrInvalidEmail
	case errors.Is(err, client.ErrWeakPassword):
		return auth.ErrWeakPassword
	case errors.Is(err, client.ErrMissingFields):
		return auth.ErrMissingFields
	case errors.Is(err, client.ErrInvalidRole):
		return auth.ErrInvalidRole
	case errors.Is(err, client.ErrUnauthorized):
		return auth.ErrInvalidCredentials
	}
	return fmt.Errorf("identity service: %w", err)
}
