// Package util holds small helpers shared across the application
package util

import "math/rand/v2"

const alphaCharset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

// RandStr generates a random alphabetic string. Used for request IDs,
// these only need to be unique enough to correlate log lines
func RandStr(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = alphaCharset[rand.IntN(len(alphaCharset))]
	}
	return string(b)
}
