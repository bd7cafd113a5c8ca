// Package resolver decides the local filename for a fetched resource. It is
// pure string work apart from the existence checks in Unique.
package resolver

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"mime"
	"net/url"
	"os"
	pathpkg "path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// ErrNoUniqueName is returned when suffixing cannot find a free name.
var ErrNoUniqueName = errors.New("no unique filename available")

// maxSuffix bounds the uniqueness search.
const maxSuffix = 10000

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]`)

// commonImageExts pins extensions for frequent image types so results do not
// depend on the host's mime tables.
var commonImageExts = map[string]string{
	"image/jpeg":    ".jpg",
	"image/png":     ".png",
	"image/gif":     ".gif",
	"image/webp":    ".webp",
	"image/bmp":     ".bmp",
	"image/tiff":    ".tiff",
	"image/svg+xml": ".svg",
	"image/x-icon":  ".ico",
	"image/avif":    ".avif",
}

// BaseName extracts the last path segment of rawURL, ignoring query and
// fragment. ok is false when the path has no usable segment (root URL, or a
// path ending in "/").
func BaseName(rawURL string) (string, bool) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", false
	}
	if strings.HasSuffix(u.Path, "/") {
		return "", false
	}
	b := pathpkg.Base(u.Path)
	if b == "" || b == "/" || b == "." {
		return "", false
	}
	return b, true
}

// ExtensionForType maps a declared media type to a filename extension.
// Parameters ("; charset=...") are stripped before lookup. Unknown image
// subtypes fall back to "."+subtype; anything else yields "".
func ExtensionForType(mediaType string) string {
	mt := strings.ToLower(strings.TrimSpace(mediaType))
	if i := strings.IndexByte(mt, ';'); i >= 0 {
		mt = strings.TrimSpace(mt[:i])
	}
	if mt == "" {
		return ""
	}
	if ext, ok := commonImageExts[mt]; ok {
		return ext
	}
	if exts, err := mime.ExtensionsByType(mt); err == nil && len(exts) > 0 {
		return exts[0]
	}
	if sub, ok := strings.CutPrefix(mt, "image/"); ok && sub != "" {
		return "." + sub
	}
	return ""
}

// Sanitize replaces every character outside [A-Za-z0-9._-] with '_' and
// strips leading/trailing '.', '_' and '-'. An empty result becomes "file".
func Sanitize(name string) string {
	safe := unsafeChars.ReplaceAllString(name, "_")
	safe = strings.Trim(safe, "._-")
	if safe == "" {
		return "file"
	}
	return safe
}

// RandomName generates "image_<hex>" with a 128-bit random identifier and
// the given extension appended. A missing leading dot on ext is normalized.
func RandomName(ext string) string {
	id := uuid.New()
	name := "image_" + hex.EncodeToString(id[:])
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return name + ext
}

// Unique returns dir/name, suffixing the stem with _1, _2, ... while the
// candidate already exists. The check is advisory: another process can claim
// the name between the stat here and the later open, and nothing locks the
// directory against that.
func Unique(dir, name string) (string, error) {
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	candidate := name
	for i := 0; ; i++ {
		p := filepath.Join(dir, candidate)
		if _, err := os.Stat(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return p, nil
			}
			return "", err
		}
		if i >= maxSuffix {
			return "", fmt.Errorf("%w after %d attempts for %s", ErrNoUniqueName, maxSuffix, name)
		}
		candidate = fmt.Sprintf("%s_%d%s", stem, i+1, ext)
	}
}

// Resolve composes the full policy: base name from the URL when present,
// extension appended from the declared media type when the base lacks one,
// random name otherwise, sanitized, then made unique within dir.
func Resolve(dir, rawURL, mediaType string) (string, error) {
	ext := ExtensionForType(mediaType)
	name, ok := BaseName(rawURL)
	if ok {
		if !strings.Contains(name, ".") && ext != "" {
			name += ext
		}
	} else {
		name = RandomName(ext)
	}
	return Unique(dir, Sanitize(name))
}
