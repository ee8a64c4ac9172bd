package source

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// Options carries the clients a Fetcher may need.
type Options struct {
	HTTPClient *http.Client
	// S3Client overrides the client built from S3.
	S3Client ObjectGetter
	S3       S3Config
}

// Open returns the Fetcher for a location. Accepted forms are
// http(s)://host/path, s3://bucket/key, file:///path and a bare path.
func Open(ctx context.Context, location string, opts Options) (Fetcher, error) {
	if location == "" {
		return nil, fmt.Errorf("empty source location")
	}

	u, err := url.Parse(location)
	if err != nil || u.Scheme == "" || len(u.Scheme) == 1 {
		// bare paths, including Windows drive letters
		return &FileFetcher{Path: location}, nil
	}

	switch strings.ToLower(u.Scheme) {
	case "file":
		return &FileFetcher{Path: u.Path}, nil
	case "http", "https":
		return &HTTPFetcher{URL: location, Client: opts.HTTPClient}, nil
	case "s3":
		key := strings.TrimPrefix(u.Path, "/")
		if u.Host == "" || key == "" {
			return nil, fmt.Errorf("s3 location %q needs a bucket and key", location)
		}
		client := opts.S3Client
		if client == nil {
			c, err := NewS3Client(ctx, opts.S3)
			if err != nil {
				return nil, err
			}
			client = c
		}
		return &S3Fetcher{Client: client, Bucket: u.Host, Key: key}, nil
	}
	return nil, fmt.Errorf("unsupported source scheme %q", u.Scheme)
}
