package render

import (
	"bytes"
	"os/exec"
	"strconv"
	"strings"

	"github.com/matzehuels/gridview/pkg/errors"
)

// Format is a raster or print format rsvg-convert can produce from SVG.
type Format string

const (
	FormatPDF Format = "pdf"
	FormatPNG Format = "png"
)

// rsvgConvert is the converter binary looked up on PATH.
var rsvgConvert = "rsvg-convert"

// ToPDF converts SVG to PDF.
func ToPDF(svg []byte) ([]byte, error) {
	return Convert(svg, FormatPDF, 1)
}

// ToPNG converts SVG to PNG, zoomed by scale.
func ToPNG(svg []byte, scale float64) ([]byte, error) {
	return Convert(svg, FormatPNG, scale)
}

// Convert pipes svg through rsvg-convert. A missing converter is reported
// as UNSUPPORTED with install hints; a failing one as INTERNAL_ERROR with
// its stderr.
func Convert(svg []byte, f Format, scale float64) ([]byte, error) {
	switch f {
	case FormatPDF, FormatPNG:
	default:
		return nil, errors.New(errors.ErrCodeUnsupported, "cannot convert svg to %q", f)
	}
	bin, err := exec.LookPath(rsvgConvert)
	if err != nil {
		return nil, errors.New(errors.ErrCodeUnsupported,
			"%s export needs %s from librsvg (brew install librsvg, apt install librsvg2-bin)", f, rsvgConvert)
	}

	args := []string{"--format", string(f)}
	if scale > 0 && scale != 1 {
		args = append(args, "--zoom", strconv.FormatFloat(scale, 'f', 2, 64))
	}
	var stdout, stderr bytes.Buffer
	cmd := exec.Command(bin, args...)
	cmd.Stdin = bytes.NewReader(svg)
	cmd.Stdout, cmd.Stderr = &stdout, &stderr
	if err := cmd.Run(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "%s: %s", rsvgConvert, strings.TrimSpace(stderr.String()))
	}
	return stdout.Bytes(), nil
}
