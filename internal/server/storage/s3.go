// Package storage hands out presigned S3 URLs for profile images.
package storage

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

const DefaultPresignExpiry = 15 * time.Minute

var ErrInvalidFileName = errors.New("invalid file name")

// Seams for tests.
var (
	loadDefaultAWSConfig  = config.LoadDefaultConfig
	newS3ClientFromConfig = s3.NewFromConfig
	newS3PresignClient    = func(c *s3.Client) *s3.PresignClient { return s3.NewPresignClient(c) }
)

type S3Config struct {
	AccessKey    string
	SecretKey    string
	Bucket       string
	Region       string
	BaseEndpoint string
}

// Presigner signs PUT requests for the profile image bucket.
type Presigner struct {
	cfg     S3Config
	expires time.Duration
	now     func() time.Time
	client  *s3.PresignClient
}

func NewPresigner(ctx context.Context, cfg S3Config) (*Presigner, error) {
	awsCfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(cfg.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey,
			cfg.SecretKey,
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := newS3ClientFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.BaseEndpoint)
			o.UsePathStyle = true
		}
	})

	return &Presigner{
		cfg:     cfg,
		expires: DefaultPresignExpiry,
		now:     time.Now,
		client:  newS3PresignClient(client),
	}, nil
}

// ProfileImageKey lays out uploads as farm-images/<uid>/<unix>-<name>.
func ProfileImageKey(uid, fileName string, at time.Time) (string, error) {
	name := path.Base(strings.ReplaceAll(strings.TrimSpace(fileName), "\\", "/"))
	if name == "" || name == "." || name == "/" || name == ".." {
		return "", ErrInvalidFileName
	}
	name = strings.ReplaceAll(name, " ", "_")
	return fmt.Sprintf("farm-images/%s/%d-%s", uid, at.Unix(), name), nil
}

// PresignProfileImage returns the object key, a presigned PUT URL and the
// time the URL stops working.
func (p *Presigner) PresignProfileImage(ctx context.Context, uid, fileName, contentType string) (string, string, time.Time, error) {
	now := p.now()
	key, err := ProfileImageKey(uid, fileName, now)
	if err != nil {
		return "", "", time.Time{}, err
	}

	input := &s3.PutObjectInput{
		Bucket: aws.String(p.cfg.Bucket),
		Key:    aws.String(key),
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}

	req, err := p.client.PresignPutObject(ctx, input, s3.WithPresignExpires(p.expires))
	if err != nil {
		return "", "", time.Time{}, fmt.Errorf("presign put: %w", err)
	}

	return key, req.URL, now.Add(p.expires), nil
}
