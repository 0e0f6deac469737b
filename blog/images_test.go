package blog

import (
	"encoding/base64"
	"strings"
	"testing"
)

type fakeSaver struct {
	saved map[string][]byte
	fail  error
}

func (f *fakeSaver) SaveFile(data []byte, suggestedName string) (string, error) {
	if f.fail != nil {
		return "", f.fail
	}
	if f.saved == nil {
		f.saved = make(map[string][]byte)
	}
	f.saved[suggestedName] = data
	return "/Posts/files/" + suggestedName, nil
}

func TestExternalizeImages(t *testing.T) {
	payload := []byte{0x89, 'P', 'N', 'G'}
	uri := "data:image/png;base64," + base64.StdEncoding.EncodeToString(payload)
	content := `<p>Pic:</p><img data-filename="shot.png" src="` + uri + `" alt="shot">`

	saver := &fakeSaver{}
	out, err := externalizeImages(content, saver)
	if err != nil {
		t.Fatalf("externalizeImages failed: %v", err)
	}

	if !strings.Contains(out, `src="/Posts/files/shot.png"`) {
		t.Errorf("src was not swapped for the stored URL: %s", out)
	}
	if strings.Contains(out, "data-filename") {
		t.Errorf("data-filename attribute not stripped: %s", out)
	}
	if strings.Contains(out, "base64") {
		t.Errorf("base64 payload left in content: %s", out)
	}
	if got := saver.saved["shot.png"]; string(got) != string(payload) {
		t.Errorf("stored bytes = %v, want %v", got, payload)
	}
}

func TestExternalizeImagesDollarInFilename(t *testing.T) {
	payload := []byte{1, 2, 3}
	uri := "data:image/png;base64," + base64.StdEncoding.EncodeToString(payload)
	content := `<img data-filename="a$1b.png" src="` + uri + `">`

	saver := &fakeSaver{}
	out, err := externalizeImages(content, saver)
	if err != nil {
		t.Fatalf("externalizeImages failed: %v", err)
	}

	// The $1 must land in the rewritten src verbatim, not expand as a
	// capture-group reference.
	if !strings.Contains(out, `src="/Posts/files/a$1b.png"`) {
		t.Errorf("src does not match the stored file: %s", out)
	}
	if string(saver.saved["a$1b.png"]) != string(payload) {
		t.Errorf("stored bytes missing for a$1b.png: %v", saver.saved)
	}
}

func TestExternalizeImagesSkipsDisallowedExtension(t *testing.T) {
	uri := "data:application/octet-stream;base64," + base64.StdEncoding.EncodeToString([]byte("MZ"))
	content := `<img data-filename="evil.exe" src="` + uri + `">`

	saver := &fakeSaver{}
	out, err := externalizeImages(content, saver)
	if err != nil {
		t.Fatalf("externalizeImages failed: %v", err)
	}
	if out != content {
		t.Errorf("disallowed extension should be left untouched, got %s", out)
	}
	if len(saver.saved) != 0 {
		t.Errorf("nothing should have been stored, got %v", saver.saved)
	}
}

func TestExternalizeImagesSkipsExternalSrc(t *testing.T) {
	content := `<img data-filename="pic.jpg" src="https://example.com/pic.jpg">`

	saver := &fakeSaver{}
	out, err := externalizeImages(content, saver)
	if err != nil {
		t.Fatalf("externalizeImages failed: %v", err)
	}
	if out != content {
		t.Errorf("non-data-URI src should be left untouched, got %s", out)
	}
}

func TestExternalizeImagesBadBase64(t *testing.T) {
	content := `<img data-filename="pic.jpg" src="data:image/jpeg;base64,@@@not-base64@@@">`

	if _, err := externalizeImages(content, &fakeSaver{}); err == nil {
		t.Fatal("expected an error for a corrupt base64 payload")
	}
}
