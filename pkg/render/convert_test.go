package render

import (
	"testing"

	"github.com/matzehuels/gridview/pkg/errors"
)

func TestConvertErrors(t *testing.T) {
	saved := rsvgConvert
	t.Cleanup(func() { rsvgConvert = saved })
	rsvgConvert = "gridview-no-such-converter"

	tests := []struct {
		name   string
		format Format
	}{
		{"missing converter pdf", FormatPDF},
		{"missing converter png", FormatPNG},
		{"unknown format", Format("gif")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Convert([]byte("<svg/>"), tt.format, 2)
			if !errors.Is(err, errors.ErrCodeUnsupported) {
				t.Errorf("Convert() error = %v, want %s", err, errors.ErrCodeUnsupported)
			}
		})
	}
}
