package blog

import (
	"encoding/base64"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

// FileSaver persists a byte buffer under a suggested name and returns the
// site-relative URL it will be served from.
type FileSaver interface {
	SaveFile(data []byte, suggestedName string) (string, error)
}

var (
	imgTagRe       = regexp.MustCompile(`(?i)<img[^>]+>`)
	dataFilenameRe = regexp.MustCompile(`(?i)\s*data-filename=["'][^"']*["']`)
	srcAttrRe      = regexp.MustCompile(`(?i)src=["']([^"']*)["']`)
	filenameAttrRe = regexp.MustCompile(`(?i)data-filename=["']([^"']*)["']`)
	dataURIRe      = regexp.MustCompile(`(?i)^data:[^/]+/[a-z0-9.+-]+;base64,(.+)$`)
)

// The HTML editor embeds pasted images as base64 data URIs; only these
// raster formats are written out to storage.
var allowedImageExts = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".gif":  {},
	".png":  {},
	".webp": {},
}

// externalizeImages rewrites every <img> element that carries both a
// data-filename attribute and a base64 data-URI src: the payload is written
// through files, src is swapped for the returned URL, and data-filename is
// stripped. Elements with a disallowed extension, or without the attribute
// pair, are left untouched.
func externalizeImages(content string, files FileSaver) (string, error) {
	var saveErr error
	result := imgTagRe.ReplaceAllStringFunc(content, func(tag string) string {
		if saveErr != nil {
			return tag
		}

		nameMatch := filenameAttrRe.FindStringSubmatch(tag)
		srcMatch := srcAttrRe.FindStringSubmatch(tag)
		if nameMatch == nil || srcMatch == nil {
			return tag
		}
		fileName := nameMatch[1]

		ext := strings.ToLower(filepath.Ext(fileName))
		if _, ok := allowedImageExts[ext]; !ok {
			return tag
		}

		uriMatch := dataURIRe.FindStringSubmatch(srcMatch[1])
		if uriMatch == nil {
			return tag
		}

		data, err := base64.StdEncoding.DecodeString(uriMatch[1])
		if err != nil {
			saveErr = fmt.Errorf("decode embedded image %s: %w", fileName, err)
			return tag
		}

		url, err := files.SaveFile(data, fileName)
		if err != nil {
			saveErr = fmt.Errorf("store embedded image %s: %w", fileName, err)
			return tag
		}

		// Literal replacement: the URL may contain $ characters, which
		// ReplaceAllString would expand as capture-group references.
		rewritten := srcAttrRe.ReplaceAllStringFunc(tag, func(string) string {
			return `src="` + url + `"`
		})
		return dataFilenameRe.ReplaceAllString(rewritten, "")
	})
	if saveErr != nil {
		return "", saveErr
	}
	return result, nil
}
