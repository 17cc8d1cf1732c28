package storage

import (
	"context"
	"path"
	"strings"

	"github.com/google/uuid"
)

const keyPrefix = "uploads/"

// Result is the outcome of an upload. Failures are data: Err carries the
// human-readable reason and Key is empty.
type Result struct {
	Key string `json:"key,omitempty"`
	Err string `json:"error,omitempty"`
}

// Failed reports whether the upload did not produce a stored object.
func (r Result) Failed() bool {
	return r.Key == ""
}

// Uploader stores raw bytes in an object store. The call is total:
// network/auth/service errors come back inside the Result, never as an error
// value.
type Uploader interface {
	Upload(ctx context.Context, data []byte, bucket, suggestedName string) Result
}

// buildKey derives a collision-free object key. A fresh uuid token guarantees
// uniqueness even when two uploads share the same suggested name; a missing
// name yields a token-only key.
func buildKey(suggestedName string) string {
	token := uuid.NewString()
	name := sanitizeName(suggestedName)
	if name == "" {
		return keyPrefix + token
	}
	return keyPrefix + token + "-" + name
}

// sanitizeName strips directories, parent-directory tokens, and separators
// from a client-supplied filename.
func sanitizeName(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	base := path.Base(name)
	if base == "." || base == "/" {
		return ""
	}
	base = strings.ReplaceAll(base, "..", "_")
	return strings.ReplaceAll(base, "/", "_")
}

// DisplayName recovers the user-facing filename from an object key by
// stripping the uploads/ prefix and the uniqueness token. This is the name
// users type in chat to refer to the image.
func DisplayName(key string) string {
	base := path.Base(key)
	// Keys are "<uuid>-<name>"; a token-only key has no name to recover.
	if len(base) > 37 && base[36] == '-' {
		if _, err := uuid.Parse(base[:36]); err == nil {
			return base[37:]
		}
	}
	return base
}
