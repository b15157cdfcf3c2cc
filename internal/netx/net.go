// Package netx uploads files to object storage through presigned URLs.
package netx

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

const defaultContentType = "application/octet-stream"

// Uploader PUTs payloads to presigned S3 URLs.
type Uploader struct {
	http *resty.Client
}

func NewUploader(timeout time.Duration) *Uploader {
	c := resty.New().
		SetTimeout(timeout).
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(2 * time.Second)
	return &Uploader{http: c}
}

// Put sends body to url. The content type must match the one the URL was
// signed for, otherwise S3 rejects the signature.
func (u *Uploader) Put(ctx context.Context, url, contentType string, body []byte) error {
	if contentType == "" {
		contentType = defaultContentType
	}
	resp, err := u.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", contentType).
		SetBody(body).
		Put(url)
	if err != nil {
		return err
	}
	if !resp.IsSuccess() {
		return fmt.Errorf("upload failed: %s; body: %s", resp.Status(), resp.String())
	}
	return nil
}
