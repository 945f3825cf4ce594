package markpost

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/image/draw"

	"github.com/eringen/markpost/views"
)

const (
	maxImageWidth = 800
	jpegQuality   = 80
	maxUploadSize = 10 << 20 // 10MB
	uploadsSubdir = "uploads"
)

var errBadFilename = errors.New("invalid image filename")

// processImage decodes an image from src, scales it down to maxImageWidth
// when wider, and re-encodes it as JPEG.
func processImage(src io.Reader, originalName string) (views.Image, []byte, error) {
	img, _, err := image.Decode(src)
	if err != nil {
		return views.Image{}, nil, fmt.Errorf("decode image: %w", err)
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	if w > maxImageWidth {
		newH := h * maxImageWidth / w
		if newH < 1 {
			newH = 1
		}
		dst := image.NewRGBA(image.Rect(0, 0, maxImageWidth, newH))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
		img = dst
		w = maxImageWidth
		h = newH
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return views.Image{}, nil, fmt.Errorf("encode jpeg: %w", err)
	}

	return views.Image{
		Filename:   imageFilename(originalName),
		Width:      w,
		Height:     h,
		Size:       int64(buf.Len()),
		UploadedAt: time.Now().UTC().Format(time.RFC3339),
	}, buf.Bytes(), nil
}

// imageFilename slugs the base name of an upload and gives it a .jpg extension.
func imageFilename(name string) string {
	name = filepath.Base(name)
	slug := Slugify(strings.TrimSuffix(name, filepath.Ext(name)))
	if slug == "" {
		slug = "image"
	}
	return slug + ".jpg"
}

// checkFilename rejects anything that is not a plain file name inside the
// uploads directory.
func checkFilename(name string) error {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return errBadFilename
	}
	return nil
}

func (a *App) uploadsDir() string {
	return filepath.Join(a.staticDir, uploadsSubdir)
}

// uniqueFilename appends a counter while filename already exists.
func (a *App) uniqueFilename(filename string) string {
	dir := a.uploadsDir()
	base := strings.TrimSuffix(filename, ".jpg")
	candidate := filename
	for counter := 2; ; counter++ {
		if _, err := os.Stat(filepath.Join(dir, candidate)); errors.Is(err, os.ErrNotExist) {
			return candidate
		}
		candidate = fmt.Sprintf("%s-%d.jpg", base, counter)
	}
}

// listImages reads the uploads directory, newest first. A missing directory
// is an empty library.
func (a *App) listImages() ([]views.Image, error) {
	dir := a.uploadsDir()
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read uploads dir: %w", err)
	}

	images := make([]views.Image, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || checkFilename(entry.Name()) != nil {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		f, err := os.Open(filepath.Join(dir, entry.Name()))
		if err != nil {
			continue
		}
		cfg, _, err := image.DecodeConfig(f)
		f.Close()
		if err != nil {
			continue
		}
		images = append(images, views.Image{
			Filename:   entry.Name(),
			URL:        "/public/" + uploadsSubdir + "/" + entry.Name(),
			Width:      cfg.Width,
			Height:     cfg.Height,
			Size:       info.Size(),
			UploadedAt: info.ModTime().UTC().Format(time.RFC3339),
		})
	}
	sort.SliceStable(images, func(i, j int) bool {
		if images[i].UploadedAt != images[j].UploadedAt {
			return images[i].UploadedAt > images[j].UploadedAt
		}
		return images[i].Filename < images[j].Filename
	})
	return images, nil
}

func (a *App) handleImageUpload(c echo.Context) error {
	file, err := c.FormFile("image")
	if err != nil {
		return a.imageRedirect(c, "No image file provided.")
	}
	if file.Size > maxUploadSize {
		return a.imageRedirect(c, "File too large (max 10MB).")
	}

	src, err := file.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	img, data, err := processImage(io.LimitReader(src, maxUploadSize), file.Filename)
	if err != nil {
		c.Logger().Warnf("rejected upload %q: %v", file.Filename, err)
		return a.imageRedirect(c, "Invalid image.")
	}

	dir := a.uploadsDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create uploads dir: %w", err)
	}
	img.Filename = a.uniqueFilename(img.Filename)
	if err := os.WriteFile(filepath.Join(dir, img.Filename), data, 0o644); err != nil {
		return fmt.Errorf("write image: %w", err)
	}
	c.Logger().Infof("uploaded image %s (%dx%d)", img.Filename, img.Width, img.Height)

	return a.imageRedirect(c, "Image uploaded.")
}

func (a *App) handleImageDelete(c echo.Context) error {
	filename := c.Param("filename")
	if err := checkFilename(filename); err != nil {
		return a.imageRedirect(c, "Invalid image filename.")
	}

	// Deleting an image that is already gone still succeeds.
	err := os.Remove(filepath.Join(a.uploadsDir(), filename))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete image: %w", err)
	}
	c.Logger().Infof("deleted image %s", filename)

	return a.imageRedirect(c, "Image deleted.")
}

func (a *App) handleImageList(c echo.Context) error {
	images, err := a.listImages()
	if err != nil {
		return err
	}
	flash := popFlash(c)
	return Render(c, a.Views.Images(a.site(), images, CsrfToken(c), flash))
}

func (a *App) imageRedirect(c echo.Context, msg string) error {
	if err := setFlash(c, msg); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/images/")
}
