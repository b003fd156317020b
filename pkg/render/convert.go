package render

import (
	"bytes"
	"context"
	"os/exec"
	"strconv"
	"time"

	"github.com/matzehuels/teamtree/pkg/errors"
)

// ConvertTimeout bounds a single rsvg-convert invocation.
const ConvertTimeout = 30 * time.Second

// rsvgConvert is the converter binary; replaced in tests.
var rsvgConvert = "rsvg-convert"

// ToPNG rasterizes an SVG document at the given scale (1.0 = 96 DPI).
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func ToPNG(svg []byte, scale float64) ([]byte, error) {
	if scale <= 0 {
		scale = 1
	}
	return convert(svg, "-f", "png", "-z", strconv.FormatFloat(scale, 'f', -1, 64))
}

// ToPDF converts an SVG document to a single-page PDF.
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func ToPDF(svg []byte) ([]byte, error) {
	return convert(svg, "-f", "pdf")
}

// Available reports whether rsvg-convert is on PATH.
func Available() bool {
	_, err := exec.LookPath(rsvgConvert)
	return err == nil
}

func convert(svg []byte, args ...string) ([]byte, error) {
	bin, err := exec.LookPath(rsvgConvert)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeUnsupported, err,
			"%s not found; install librsvg (brew install librsvg / apt install librsvg2-bin)", rsvgConvert)
	}

	ctx, cancel := context.WithTimeout(context.Background(), ConvertTimeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Stdin = bytes.NewReader(svg)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		msg := bytes.TrimSpace(stderr.Bytes())
		if len(msg) == 0 {
			msg = []byte(err.Error())
		}
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "%s: %s", rsvgConvert, msg)
	}
	return stdout.Bytes(), nil
}
