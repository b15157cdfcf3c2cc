package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/farmclub/internal/common"
	"github.com/dmitrijs2005/farmclub/internal/server/models"
	"github.com/dmitrijs2005/farmclub/internal/server/repositories/repomanager"

	domain "github.com/dmitrijs2005/farmclub/internal/auth"
)

// ErrUploadsDisabled is returned when the service runs without object storage.
var ErrUploadsDisabled = errors.New("image uploads are disabled")

// ImagePresigner hands out upload URLs for profile images.
type ImagePresigner interface {
	PresignProfileImage(ctx context.Context, uid, fileName, contentType string) (key, url string, expiresAt time.Time, err error)
}

// UploadURL is a presigned PUT target for a profile image.
type UploadURL struct {
	Key       string
	URL       string
	ExpiresAt time.Time
}

// ProfileService manages profiles. Every call acts on behalf of callerID and
// only ever touches the caller's own profile.
type ProfileService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	presigner   ImagePresigner
}

// NewProfileService builds a ProfileService. A nil presigner disables
// image uploads.
func NewProfileService(db *sql.DB, m repomanager.RepositoryManager, p ImagePresigner) *ProfileService {
	return &ProfileService{db: db, repomanager: m, presigner: p}
}

// Create stores p for callerID. A second profile for the same uid yields
// common.ErrorAlreadyExists.
func (s *ProfileService) Create(ctx context.Context, callerID string, p *models.Profile) (*models.Profile, error) {
	if p == nil || p.UID == "" || p.Role == "" {
		return nil, common.ErrorMissingFields
	}
	if p.UID != callerID {
		return nil, common.ErrorForbidden
	}
	if !domain.Role(p.Role).Valid() {
		return nil, common.ErrorInvalidRole
	}

	p.Email = domain.NormalizeEmail(p.Email)
	p.DisplayName = strings.TrimSpace(p.DisplayName)
	if p.Email != "" {
		if err := domain.ValidateEmail(p.Email); err != nil {
			return nil, common.ErrorInvalidEmail
		}
	}

	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}

	out, err := s.repomanager.Profiles(s.db).Create(ctx, p)
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, common.ErrorAlreadyExists
		}
		return nil, fmt.Errorf("error creating profile: %w", err)
	}
	return out, nil
}

// Get returns the profile of uid, which must be the caller.
func (s *ProfileService) Get(ctx context.Context, callerID, uid string) (*models.Profile, error) {
	if uid == "" {
		return nil, common.ErrorMissingFields
	}
	if uid != callerID {
		return nil, common.ErrorForbidden
	}

	p, err := s.repomanager.Profiles(s.db).Get(ctx, uid)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("error fetching profile: %w", err)
	}
	return p, nil
}

// ImageUploadURL presigns an upload of fileName into the caller's image folder.
func (s *ProfileService) ImageUploadURL(ctx context.Context, callerID, fileName, contentType string) (*UploadURL, error) {
	if s.presigner == nil {
		return nil, ErrUploadsDisabled
	}
	if strings.TrimSpace(fileName) == "" {
		return nil, common.ErrorMissingFields
	}

	key, url, expiresAt, err := s.presigner.PresignProfileImage(ctx, callerID, fileName, contentType)
	if err != nil {
		return nil, fmt.Errorf("error presigning upload: %w", err)
	}
	return &UploadURL{Key: key, URL: url, ExpiresAt: expiresAt}, nil
}
