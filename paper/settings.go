package paper

import (
	"encoding/json"
	"strings"
)

// DefaultMargin is the page margin in millimetres on every side.
const DefaultMargin = 15.0

// BarcodeKind selects the symbology used for the paper code.
type BarcodeKind string

const (
	BarcodeNone    BarcodeKind = "none"
	BarcodeQR      BarcodeKind = "qr"
	BarcodePDF417  BarcodeKind = "pdf417"
	BarcodeCode128 BarcodeKind = "code128"
)

// Page orientations as fpdf expects them.
const (
	OrientationPortrait  = "P"
	OrientationLandscape = "L"
)

var pageSizes = map[string]string{
	"a3":     "A3",
	"a4":     "A4",
	"a5":     "A5",
	"letter": "Letter",
	"legal":  "Legal",
}

// Settings controls page geometry and localization for a render.
type Settings struct {
	MarginLeft   float64     `json:"marginLeft"`
	MarginTop    float64     `json:"marginTop"`
	MarginRight  float64     `json:"marginRight"`
	MarginBottom float64     `json:"marginBottom"`
	PageSize     string      `json:"pageSize"`
	Orientation  string      `json:"orientation"`
	Locale       string      `json:"locale"`
	Barcode      BarcodeKind `json:"barcode"`
	Title        string      `json:"title"`

	// PageMargin is the browser print margin in CSS pixels for HTML previews.
	// Zero keeps the configured margin.
	PageMargin float64 `json:"pageMargin"`

	// Letterhead is a local PDF whose first page is stamped under the header.
	// It is set from configuration only.
	Letterhead string `json:"-"`
}

// DefaultSettings returns A4 portrait with 15mm margins and Bengali labels.
func DefaultSettings() Settings {
	return Settings{
		MarginLeft:   DefaultMargin,
		MarginTop:    DefaultMargin,
		MarginRight:  DefaultMargin,
		MarginBottom: DefaultMargin,
		PageSize:     "A4",
		Orientation:  OrientationPortrait,
		Locale:       "bn",
		Barcode:      BarcodeQR,
	}
}

// DecodeSettings overlays JSON settings onto defaults. Blank input yields the
// defaults.
func DecodeSettings(data []byte) (Settings, error) {
	settings := DefaultSettings()
	if len(strings.TrimSpace(string(data))) == 0 {
		return settings, nil
	}
	if err := json.Unmarshal(data, &settings); err != nil {
		return Settings{}, NewError(KindValidation, "invalid settings", err)
	}
	return settings.Normalize(), nil
}

// Normalize fills unset or out-of-range values with defaults.
func (s Settings) Normalize() Settings {
	defaults := DefaultSettings()
	fix := func(value float64) float64 {
		if value <= 0 {
			return DefaultMargin
		}
		return value
	}
	s.MarginLeft = fix(s.MarginLeft)
	s.MarginTop = fix(s.MarginTop)
	s.MarginRight = fix(s.MarginRight)
	s.MarginBottom = fix(s.MarginBottom)
	if s.PageMargin < 0 {
		s.PageMargin = 0
	}

	if size, ok := pageSizes[strings.ToLower(strings.TrimSpace(s.PageSize))]; ok {
		s.PageSize = size
	} else {
		s.PageSize = defaults.PageSize
	}

	switch strings.ToUpper(strings.TrimSpace(s.Orientation)) {
	case "L", "LANDSCAPE":
		s.Orientation = OrientationLandscape
	default:
		s.Orientation = OrientationPortrait
	}

	s.Locale = strings.TrimSpace(s.Locale)
	if s.Locale == "" {
		s.Locale = defaults.Locale
	}

	switch BarcodeKind(strings.ToLower(strings.TrimSpace(string(s.Barcode)))) {
	case BarcodeNone:
		s.Barcode = BarcodeNone
	case BarcodePDF417:
		s.Barcode = BarcodePDF417
	case BarcodeCode128:
		s.Barcode = BarcodeCode128
	default:
		s.Barcode = BarcodeQR
	}
	return s
}
