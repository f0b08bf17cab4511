package askengine

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"golang.org/x/image/draw"
)

const (
	maxImageWidth = 1000
	jpegQuality   = 82
	maxUploadSize = 5 << 20 // 5MB
)

// Attachment is an image uploaded for use in a question or answer body.
type Attachment struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// processImage decodes an image, scales it down to maxImageWidth and
// re-encodes it as JPEG, which also drops any embedded metadata.
func processImage(src io.Reader) ([]byte, int, int, error) {
	img, _, err := image.Decode(src)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("decode image: %w", err)
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w > maxImageWidth {
		newH := h * maxImageWidth / w
		dst := image.NewRGBA(image.Rect(0, 0, maxImageWidth, newH))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
		img = dst
		w, h = maxImageWidth, newH
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, 0, 0, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), w, h, nil
}

func (a *App) handleUpload(c echo.Context) error {
	if CurrentUser(c).IsGuest() {
		return c.JSON(http.StatusForbidden, map[string]string{"error": a.T(c, msgLoginRequired)})
	}
	fh, err := c.FormFile("image")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "image file is required"})
	}
	if fh.Size > maxUploadSize {
		return c.JSON(http.StatusRequestEntityTooLarge, map[string]string{"error": "image is too large"})
	}
	f, err := fh.Open()
	if err != nil {
		return err
	}
	defer f.Close()

	data, w, h, err := processImage(io.LimitReader(f, maxUploadSize))
	if err != nil {
		return c.JSON(http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
	}

	if err := os.MkdirAll(a.Config.UploadDir, 0o755); err != nil {
		return fmt.Errorf("askengine: create upload dir: %w", err)
	}
	name := uuid.NewString() + ".jpg"
	if err := os.WriteFile(filepath.Join(a.Config.UploadDir, name), data, 0o644); err != nil {
		return fmt.Errorf("askengine: write upload: %w", err)
	}
	return c.JSON(http.StatusCreated, Attachment{URL: "/uploads/" + name, Width: w, Height: h})
}
