package blogapi

import (
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"golang.org/x/image/draw"
)

const (
	maxUploadSize   = 10 << 20 // 10MB
	jpegQuality     = 80
	thumbnailSuffix = "-thumbnail"
)

// variantSizes are the derived copies produced for every upload: a square
// JPEG at each target width, named by suffixing the original filename.
var variantSizes = []struct {
	suffix string
	width  int
}{
	{thumbnailSuffix, 100},
	{"-medium", 200},
}

// handleImageUpload stores the original upload under a generated filename
// and confirms success to the caller before variants are derived. Variant
// derivation runs in the background; its failures are logged only.
func (a *App) handleImageUpload(c echo.Context) error {
	file, err := c.FormFile("file")
	if err != nil {
		return c.String(http.StatusBadRequest, "No file uploaded.")
	}
	if file.Size > maxUploadSize {
		return c.String(http.StatusBadRequest, "File too large (max 10MB)")
	}

	src, err := file.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	if err := os.MkdirAll(a.Config.ImageDir, 0o755); err != nil {
		return fmt.Errorf("create image dir: %w", err)
	}

	// Generated name, no extension — clients reference the raw filename.
	name := strings.ReplaceAll(uuid.NewString(), "-", "")
	dst, err := os.Create(filepath.Join(a.Config.ImageDir, name))
	if err != nil {
		return fmt.Errorf("write image: %w", err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return fmt.Errorf("write image: %w", err)
	}
	if err := dst.Close(); err != nil {
		return fmt.Errorf("write image: %w", err)
	}

	if err := c.String(http.StatusCreated, "File uploaded successfully"); err != nil {
		return err
	}

	logger := c.Logger()
	go func() {
		if err := a.deriveVariants(name); err != nil {
			logger.Errorf("saving image variants for %s: %v", name, err)
		}
	}()
	return nil
}

// deriveVariants reads the stored original and writes one square JPEG copy
// per entry in variantSizes next to it.
func (a *App) deriveVariants(name string) error {
	f, err := os.Open(filepath.Join(a.Config.ImageDir, name))
	if err != nil {
		return fmt.Errorf("open original: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return fmt.Errorf("decode image: %w", err)
	}

	for _, size := range variantSizes {
		dst := image.NewRGBA(image.Rect(0, 0, size.width, size.width))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Over, nil)

		out, err := os.Create(filepath.Join(a.Config.ImageDir, name+size.suffix))
		if err != nil {
			return fmt.Errorf("write variant: %w", err)
		}
		if err := jpeg.Encode(out, dst, &jpeg.Options{Quality: jpegQuality}); err != nil {
			out.Close()
			return fmt.Errorf("encode variant: %w", err)
		}
		if err := out.Close(); err != nil {
			return fmt.Errorf("write variant: %w", err)
		}
	}
	return nil
}

// handleListImages enumerates the image directory, excluding thumbnail
// variants. Originals and medium variants make up the public asset list.
func (a *App) handleListImages(c echo.Context) error {
	entries, err := os.ReadDir(a.Config.ImageDir)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	filenames := make([]string, 0, len(entries))
	for _, e := range entries {
		if strings.Contains(e.Name(), thumbnailSuffix) {
			continue
		}
		filenames = append(filenames, e.Name())
	}
	return c.JSON(http.StatusOK, filenames)
}
