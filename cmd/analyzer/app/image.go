package app

import (
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"

	"github.com/roman-kulish/wifi-survey/internal/config"
)

const jpegQuality = 95

// outputPath joins the output directory, the artifact name and the format extension
func outputPath(dir, name string, format config.ImageFormat) string {
	return filepath.Join(dir, fmt.Sprintf("%s.%s", name, format))
}

func encodeImage(w io.Writer, img image.Image, format config.ImageFormat) error {
	switch format {
	case config.ImagePNG:
		return png.Encode(w, img)

	case config.ImageJPEG:
		return jpeg.Encode(w, img, &jpeg.Options{Quality: jpegQuality})

	default:
		return fmt.Errorf("unsupported image format: %s", format)
	}
}

// writeImage encodes img into path and returns the number of bytes written
func writeImage(path string, img image.Image, format config.ImageFormat) (size int64, err error) {
	out, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("creating %s: %w", path, err)
	}
	defer func() {
		if cErr := out.Close(); cErr != nil && err == nil {
			err = cErr
		}
	}()

	if err = encodeImage(out, img, format); err != nil {
		return 0, fmt.Errorf("encoding %s: %w", path, err)
	}

	info, err := out.Stat()
	if err != nil {
		return 0, fmt.Errorf("inspecting %s: %w", path, err)
	}
	return info.Size(), nil
}
