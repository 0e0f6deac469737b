package storage

import (
	"bytes"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSaveFile(t *testing.T) {
	root := t.TempDir()
	fs := NewFileStore(root)

	url, err := fs.SaveFile([]byte("hello"), "photo.jpg")
	if err != nil {
		t.Fatalf("SaveFile failed: %v", err)
	}

	if !strings.HasPrefix(url, "/Posts/files/photo_") {
		t.Errorf("url = %q, want /Posts/files/photo_<suffix>.jpg", url)
	}
	if !strings.HasSuffix(url, ".jpg") {
		t.Errorf("extension lost: %q", url)
	}

	data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(strings.TrimPrefix(url, "/"))))
	if err != nil {
		t.Fatalf("stored file unreadable: %v", err)
	}
	if string(data) != "hello" {
		t.Errorf("stored data = %q", data)
	}
}

func TestSaveFileSanitizesName(t *testing.T) {
	fs := NewFileStore(t.TempDir())

	url, err := fs.SaveFile([]byte("x"), `../we"ird<name>.png`)
	if err != nil {
		t.Fatalf("SaveFile failed: %v", err)
	}
	name := url[strings.LastIndex(url, "/")+1:]
	if strings.ContainsAny(name, `<>:"/\|?*`) {
		t.Errorf("unsafe characters left in %q", name)
	}
	if !strings.HasSuffix(name, ".png") {
		t.Errorf("extension lost: %q", name)
	}
}

func TestSaveFileUniqueNames(t *testing.T) {
	fs := NewFileStore(t.TempDir())

	first, err := fs.SaveFile([]byte("a"), "photo.jpg")
	if err != nil {
		t.Fatalf("first SaveFile failed: %v", err)
	}
	second, err := fs.SaveFile([]byte("b"), "photo.jpg")
	if err != nil {
		t.Fatalf("second SaveFile failed: %v", err)
	}
	if first == second {
		t.Errorf("two uploads of the same name collided on %q", first)
	}
}

func TestShrinkImage(t *testing.T) {
	// A 1600x400 source must come out 800 wide with the aspect kept.
	src := image.NewRGBA(image.Rect(0, 0, 1600, 400))
	var buf bytes.Buffer
	if err := png.Encode(&buf, src); err != nil {
		t.Fatalf("encode test image: %v", err)
	}

	got, err := ShrinkImage(&buf)
	if err != nil {
		t.Fatalf("ShrinkImage failed: %v", err)
	}
	if got.Width != 800 || got.Height != 200 {
		t.Errorf("resized to %dx%d, want 800x200", got.Width, got.Height)
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(got.Data))
	if err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if format != "jpeg" {
		t.Errorf("output format = %q, want jpeg", format)
	}
	if cfg.Width != 800 {
		t.Errorf("output width = %d", cfg.Width)
	}
}

func TestShrinkImageKeepsSmallImages(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 100, 50))
	var buf bytes.Buffer
	if err := png.Encode(&buf, src); err != nil {
		t.Fatalf("encode test image: %v", err)
	}

	got, err := ShrinkImage(&buf)
	if err != nil {
		t.Fatalf("ShrinkImage failed: %v", err)
	}
	if got.Width != 100 || got.Height != 50 {
		t.Errorf("small image was resized to %dx%d", got.Width, got.Height)
	}
}

func TestShrinkImageRejectsGarbage(t *testing.T) {
	if _, err := ShrinkImage(bytes.NewReader([]byte("not an image"))); err == nil {
		t.Fatal("expected an error for undecodable input")
	}
}
