// Package storage wraps the S3 compatible object store holding uploaded
// photos and rendered reel assets
package storage

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ObjectStore is the surface handlers talk to. Buckets are addressed by
// name so one client serves photo uploads and both reel buckets
type ObjectStore interface {
	Put(ctx context.Context, bucket, key string, body io.Reader, size int64, contentType string) error
	PresignGet(ctx context.Context, bucket, key string, expiry time.Duration) (string, error)
	Exists(ctx context.Context, bucket, key string) (bool, error)
	Delete(ctx context.Context, bucket string, keys ...string) error
}

// Buckets names the three buckets the app uses. Objects are namespaced
// by {userId}/... paths inside each of them
type Buckets struct {
	Images       string
	ReelsPrivate string
	ReelsPublic  string
}

// BucketsFromConfig reads the configured bucket names
func BucketsFromConfig() Buckets {
	return Buckets{
		Images:       viper.GetString("s3.bucket.images"),
		ReelsPrivate: viper.GetString("s3.bucket.reels_private"),
		ReelsPublic:  viper.GetString("s3.bucket.reels_public"),
	}
}

// ReelVideoKey returns the deterministic object key for a reel's video
func ReelVideoKey(userID, reelID string) string {
	return userID + "/" + reelID + "/video.mp4"
}

// ReelPosterKey returns the deterministic object key for a reel's poster
func ReelPosterKey(userID, reelID string) string {
	return userID + "/" + reelID + "/poster.jpg"
}

// PublicURL builds the unsigned path-style URL of an object in a bucket
// with a public read policy
func PublicURL(bucket, key string) string {
	return strings.TrimSuffix(viper.GetString("s3.endpoint"), "/") + "/" + bucket + "/" + key
}
