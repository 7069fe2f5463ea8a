// Package label renders specimen records as printable QR labels. It sits on
// top of pkg/wols: a label payload is either the full wire-format document
// or the compact URL, and captions use the stage display codes from the
// shared registry.
package label

import (
	"fmt"
	"image/color"
	"strings"

	qrcode "github.com/skip2/go-qrcode"

	"wols/pkg/wols"
)

// PayloadFormat selects what the QR code carries.
type PayloadFormat string

const (
	// FormatCompact encodes the compact URL: small codes, lossy content.
	FormatCompact PayloadFormat = "compact"
	// FormatEmbedded encodes the full wire-format document: self-contained
	// but dense, so it needs physically larger codes to stay scannable.
	FormatEmbedded PayloadFormat = "embedded"
)

// Default rendering parameters.
const (
	DefaultSize  = 256
	DefaultLevel = "M"
)

// Options configures Render. Zero values select the defaults: compact
// payload, 256 px, recovery level M, black on white, with the quiet-zone
// border.
type Options struct {
	Format PayloadFormat
	// Size is the output edge length in pixels. Negative values scale per
	// QR module instead, as the underlying encoder defines.
	Size int
	// Level is the error recovery level: L, M, Q, or H.
	Level         string
	Foreground    color.Color
	Background    color.Color
	DisableBorder bool
}

// Payload returns the string a QR code of the given format carries. An empty
// format means FormatCompact.
func Payload(s wols.Specimen, format PayloadFormat) (string, error) {
	switch format {
	case FormatCompact, "":
		return wols.ToCompactURL(s), nil
	case FormatEmbedded:
		wire, err := wols.SerializeSpecimen(s)
		if err != nil {
			return "", fmt.Errorf("serialize specimen: %w", err)
		}
		return wire, nil
	default:
		return "", fmt.Errorf("unknown payload format %q", format)
	}
}

// Render produces PNG bytes for a specimen label.
func Render(s wols.Specimen, opts Options) ([]byte, error) {
	payload, err := Payload(s, opts.Format)
	if err != nil {
		return nil, err
	}
	level, err := recoveryLevel(opts.Level)
	if err != nil {
		return nil, err
	}
	code, err := qrcode.New(payload, level)
	if err != nil {
		return nil, fmt.Errorf("encode label payload: %w", err)
	}
	if opts.Foreground != nil {
		code.ForegroundColor = opts.Foreground
	}
	if opts.Background != nil {
		code.BackgroundColor = opts.Background
	}
	code.DisableBorder = opts.DisableBorder
	size := opts.Size
	if size == 0 {
		size = DefaultSize
	}
	png, err := code.PNG(size)
	if err != nil {
		return nil, fmt.Errorf("render label: %w", err)
	}
	return png, nil
}

// Caption builds the human-readable line printed beside the code: species,
// type, stage display code (the literal stage when no code is registered),
// and batch. Absent fields are skipped.
func Caption(s wols.Specimen) string {
	parts := make([]string, 0, 4)
	if s.Species != "" {
		parts = append(parts, s.Species)
	}
	if s.Type != "" {
		parts = append(parts, string(s.Type))
	}
	if s.Stage != "" {
		display := string(s.Stage)
		if code, ok := wols.StageCodeFor(s.Stage); ok {
			display = code
		}
		parts = append(parts, display)
	}
	if s.Batch != "" {
		parts = append(parts, s.Batch)
	}
	return strings.Join(parts, " | ")
}

func recoveryLevel(level string) (qrcode.RecoveryLevel, error) {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "", "M":
		return qrcode.Medium, nil
	case "L":
		return qrcode.Low, nil
	case "Q":
		return qrcode.High, nil
	case "H":
		return qrcode.Highest, nil
	default:
		return 0, fmt.Errorf("unknown recovery level %q", level)
	}
}
