package media

import (
	"os"
	"path/filepath"
	"strings"
)

var rasterExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true,
	".tif": true, ".tiff": true, ".bmp": true, ".webp": true,
}

// documentExtensions need rasterization before they can be thumbnailed.
var documentExtensions = map[string]bool{
	".pdf": true,
	".ai":  true,
}

// NormalizeExtension lower-cases ext and folds ".jpeg" into ".jpg".
func NormalizeExtension(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext == ".jpeg" {
		return ".jpg"
	}
	return ext
}

func IsRaster(path string) bool {
	return rasterExtensions[strings.ToLower(filepath.Ext(path))]
}

func IsDocument(path string) bool {
	return documentExtensions[strings.ToLower(filepath.Ext(path))]
}

func isGIF(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".gif")
}

func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
