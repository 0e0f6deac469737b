package minipress

import (
	"bytes"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/minipress/minipress/storage"
	"github.com/minipress/minipress/views"
)

const maxUploadSize = 10 << 20 // 10MB

func (a *App) uploadsDir() string {
	return filepath.Join(a.Config.StorageRoot, "Posts", "files")
}

func (a *App) handleImageUpload(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}

	file, err := c.FormFile("image")
	if err != nil {
		return c.String(http.StatusBadRequest, "No image file provided")
	}
	if file.Size > maxUploadSize {
		return c.String(http.StatusBadRequest, "File too large (max 10MB)")
	}

	src, err := file.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return err
	}

	name := file.Filename
	// Oversized raster uploads are downscaled and re-encoded; formats the
	// decoder does not handle (webp, svg) are stored as-is.
	if processed, perr := storage.ShrinkImage(bytes.NewReader(data)); perr == nil {
		data = processed.Data
		name = strings.TrimSuffix(name, filepath.Ext(name)) + ".jpg"
	}

	if _, err := a.Files.SaveFile(data, name); err != nil {
		return err
	}
	return a.renderImageList(c)
}

func (a *App) handleImageDelete(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}

	filename := c.Param("filename")
	if filename == "" || filename != filepath.Base(filename) {
		return c.String(http.StatusBadRequest, "Filename required")
	}

	if err := os.Remove(filepath.Join(a.uploadsDir(), filename)); err != nil && !os.IsNotExist(err) {
		return err
	}
	return a.renderImageList(c)
}

func (a *App) handleImageList(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	return a.renderImageList(c)
}

func (a *App) renderImageList(c echo.Context) error {
	entries, err := os.ReadDir(a.uploadsDir())
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	var images []views.ImageFile
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		images = append(images, views.ImageFile{
			Name: entry.Name(),
			URL:  "/Posts/files/" + entry.Name(),
			Size: info.Size(),
		})
	}
	return Render(c, a.Views.AdminImages(views.ImageList{
		Site:      a.site(),
		Images:    images,
		CsrfToken: CsrfToken(c),
	}))
}
