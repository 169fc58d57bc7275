package util

import (
	"math/rand/v2"
)

const slugCharset = "0123456789abcdefghijklmnopqrstuvwxyz"

// SlugLength is the length of public reel slugs. Slugs only appear in
// human-facing view URLs and are unrelated to storage paths
const SlugLength = 7

// NewSlug generates a short random base36 token used for published reels
func NewSlug() string {
	b := make([]byte, SlugLength)
	for i := range b {
		b[i] = slugCharset[rand.IntN(len(slugCharset))]
	}
	return string(b)
}
