package client

import (
	"context"

	"github.com/dmitrijs2005/farmclub/internal/client/repositories/metadata"
)

// MetadataTokenStore keeps tokens in the metadata table.
type MetadataTokenStore struct {
	repo metadata.Repository
}

func NewMetadataTokenStore(repo metadata.Repository) *MetadataTokenStore {
	return &MetadataTokenStore{repo: repo}
}

func (s *MetadataTokenStore) LoadTokens(ctx context.Context) (string, string, error) {
	access, err := s.repo.Get(ctx, metadata.KeyAccessToken)
	if err != nil {
		return "", "", err
	}
	refresh, err := s.repo.Get(ctx, metadata.KeyRefreshToken)
	if err != nil {
		return "", "", err
	}
	return string(access), string(refresh), nil
}

func (s *MetadataTokenStore) SaveTokens(ctx context.Context, access, refresh string) error {
	if err := s.repo.Set(ctx, metadata.KeyAccessToken, []byte(access)); err != nil {
		return err
	}
	return s.repo.Set(ctx, metadata.KeyRefreshToken, []byte(refresh))
}

func (s *MetadataTokenStore) ClearTokens(ctx context.Context) error {
	if err := s.repo.Delete(ctx, metadata.KeyAccessToken); err != nil {
		return err
	}
	return s.repo.Delete(ctx, metadata.KeyRefreshToken)
}

// memoryTokens is used when no store is configured.
type memoryTokens struct{}

func (memoryTokens) LoadTokens(context.Context) (string, string, error) { return "", "", nil }
func (memoryTokens) SaveTokens(context.Context, string, string) error   { return nil }
func (memoryTokens) ClearTokens(context.Context) error                  { return nil }
