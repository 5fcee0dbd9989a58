package api

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/nfnt/resize"
	"github.com/rs/zerolog"
)

// Thumbnail serves a recipe's image. Remote images are redirected to;
// local images under the images directory are scaled down to the
// thumbnail width.
func (h *Handler) Thumbnail(c *gin.Context) {
	r, ok := h.lookupRecipe(c)
	if !ok {
		return
	}

	src := strings.TrimSpace(r.Image)
	if src == "" {
		c.String(http.StatusNotFound, "Recipe has no image")
		return
	}
	if strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://") {
		c.Redirect(http.StatusFound, src)
		return
	}

	path, ok := h.localImagePath(src)
	if !ok {
		c.String(http.StatusNotFound, "Image not found")
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			c.String(http.StatusNotFound, "Image not found")
			return
		}
		h.fail(c, err, "read image")
		return
	}

	contentType, out, err := scaleImage(data, filepath.Ext(path), h.opts.ThumbnailWidth)
	if err != nil {
		zerolog.Ctx(c.Request.Context()).Warn().Err(err).Str("path", path).Msg("failed to scale image")
		c.String(http.StatusUnprocessableEntity, fmt.Sprintf("image err: %s", err.Error()))
		return
	}
	c.Data(http.StatusOK, contentType, out)
}

// localImagePath resolves src against the images directory and rejects
// paths that escape it.
func (h *Handler) localImagePath(src string) (string, bool) {
	root, err := filepath.Abs(h.opts.ImagesDir)
	if err != nil {
		return "", false
	}

	p := filepath.Clean(src)
	if !filepath.IsAbs(p) {
		// stored paths may or may not include the images directory itself
		if rel := filepath.Clean(h.opts.ImagesDir); p != rel && !strings.HasPrefix(p, rel+string(filepath.Separator)) {
			p = filepath.Join(rel, p)
		}
	}
	p, err = filepath.Abs(p)
	if err != nil {
		return "", false
	}
	if !strings.HasPrefix(p, root+string(filepath.Separator)) {
		return "", false
	}
	return p, true
}

// scaleImage decodes data, shrinks it to at most width pixels wide keeping
// the aspect ratio, and re-encodes it in the format named by ext.
func scaleImage(data []byte, ext string, width uint) (string, []byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", nil, fmt.Errorf("failed to decode image: %w", err)
	}

	if uint(img.Bounds().Dx()) > width {
		img = resize.Resize(width, 0, img, resize.Lanczos3)
	}

	var buf bytes.Buffer
	var contentType string
	switch strings.ToLower(ext) {
	case ".jpeg", ".jpg":
		contentType = "image/jpeg"
		err = jpeg.Encode(&buf, img, nil)
	case ".png":
		contentType = "image/png"
		err = png.Encode(&buf, img)
	default:
		return "", nil, fmt.Errorf("unsupported image format: %s", ext)
	}
	if err != nil {
		return "", nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return contentType, buf.Bytes(), nil
}
