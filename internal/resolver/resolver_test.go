package resolver

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
)

func TestBaseName(t *testing.T) {
	cases := []struct {
		url  string
		want string
		ok   bool
	}{
		{"https://example.com/path/pic.png?x=1", "pic.png", true},
		{"https://example.com/", "", false},
		{"https://example.com", "", false},
		{"https://example.com/a/b/", "", false},
		{"https://x/img", "img", true},
		{"https://example.com/pic.jpg#frag", "pic.jpg", true},
	}
	for _, c := range cases {
		got, ok := BaseName(c.url)
		if got != c.want || ok != c.ok {
			t.Fatalf("BaseName(%q)=(%q,%v) want (%q,%v)", c.url, got, ok, c.want, c.ok)
		}
	}
}

func TestSanitize(t *testing.T) {
	valid := regexp.MustCompile(`^[A-Za-z0-9._-]+$`)
	cases := map[string]string{
		"pic.png":            "pic.png",
		"my photo (1).jpg":   "my_photo__1_.jpg",
		"..hidden..":         "hidden",
		"___":                "file",
		"":                   "file",
		"a/b\\c.png":         "a_b_c.png",
		"-trailing-._":       "trailing",
		"café.jpg":      "caf_.jpg",
	}
	for in, want := range cases {
		got := Sanitize(in)
		if got != want {
			t.Fatalf("Sanitize(%q)=%q want %q", in, got, want)
		}
		if !valid.MatchString(got) {
			t.Fatalf("Sanitize(%q)=%q not safe", in, got)
		}
	}
}

func TestExtensionForType(t *testing.T) {
	cases := map[string]string{
		"image/jpeg":                 ".jpg",
		"image/png":                  ".png",
		"image/png; charset=binary":  ".png",
		"IMAGE/JPEG; q=0.9":          ".jpg",
		"image/x-weird-format":       ".x-weird-format",
		"":                           "",
		"   ":                        "",
	}
	for in, want := range cases {
		if got := ExtensionForType(in); got != want {
			t.Fatalf("ExtensionForType(%q)=%q want %q", in, got, want)
		}
	}
	// Non-image types without a table entry yield nothing.
	if got := ExtensionForType("application/x-nonexistent-imgfetch-test"); got != "" {
		t.Fatalf("unknown non-image type gave %q", got)
	}
}

func TestRandomName(t *testing.T) {
	n1 := RandomName("jpg")
	n2 := RandomName(".png")
	if !strings.HasPrefix(n1, "image_") || !strings.HasSuffix(n1, ".jpg") {
		t.Fatalf("bad name: %s", n1)
	}
	if !strings.HasSuffix(n2, ".png") {
		t.Fatalf("bad name: %s", n2)
	}
	if n3 := RandomName(""); strings.Contains(n3, ".") {
		t.Fatalf("unexpected extension: %s", n3)
	}
	if n1[:len(n1)-4] == n2[:len(n2)-4] {
		t.Fatalf("identifiers collided: %s %s", n1, n2)
	}
	// 128-bit identifier is 32 hex chars
	hexPart := strings.TrimSuffix(strings.TrimPrefix(n1, "image_"), ".jpg")
	if len(hexPart) != 32 {
		t.Fatalf("identifier length %d: %s", len(hexPart), n1)
	}
}

func TestUnique(t *testing.T) {
	dir := t.TempDir()
	p, err := Unique(dir, "a.jpg")
	if err != nil {
		t.Fatal(err)
	}
	if p != filepath.Join(dir, "a.jpg") {
		t.Fatalf("got %s", p)
	}
	if err := os.WriteFile(filepath.Join(dir, "a.jpg"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	p, err = Unique(dir, "a.jpg")
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(p) != "a_1.jpg" {
		t.Fatalf("got %s want a_1.jpg", filepath.Base(p))
	}
	if err := os.WriteFile(filepath.Join(dir, "a_1.jpg"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	p, err = Unique(dir, "a.jpg")
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(p) != "a_2.jpg" {
		t.Fatalf("got %s want a_2.jpg", filepath.Base(p))
	}
}

func TestUniqueCapExhausted(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a.jpg"), nil, 0o644); err != nil {
		t.Fatal(err)
	}
	for i := 1; i <= 10000; i++ {
		if err := os.WriteFile(filepath.Join(dir, fmt.Sprintf("a_%d.jpg", i)), nil, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	_, err := Unique(dir, "a.jpg")
	if !errors.Is(err, ErrNoUniqueName) {
		t.Fatalf("expected ErrNoUniqueName, got %v", err)
	}
}

func TestUniqueNoExtension(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "img"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	p, err := Unique(dir, "img")
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(p) != "img_1" {
		t.Fatalf("got %s", filepath.Base(p))
	}
}

func TestResolve(t *testing.T) {
	dir := t.TempDir()

	// Base name present, extension kept
	p, err := Resolve(dir, "https://example.com/path/pic.png?x=1", "image/png")
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(p) != "pic.png" {
		t.Fatalf("got %s", filepath.Base(p))
	}

	// Base name without extension picks one up from the media type
	p, err = Resolve(dir, "https://x/img", "image/jpeg")
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(p) != "img.jpg" {
		t.Fatalf("got %s want img.jpg", filepath.Base(p))
	}

	// No base name at all falls back to a generated identifier
	p, err = Resolve(dir, "https://example.com/", "image/gif")
	if err != nil {
		t.Fatal(err)
	}
	base := filepath.Base(p)
	if !strings.HasPrefix(base, "image_") || !strings.HasSuffix(base, ".gif") {
		t.Fatalf("got %s", base)
	}

	// Unknown type and no base name: bare identifier, still safe
	p, err = Resolve(dir, "https://example.com/", "")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(filepath.Base(p), "image_") {
		t.Fatalf("got %s", filepath.Base(p))
	}
}
