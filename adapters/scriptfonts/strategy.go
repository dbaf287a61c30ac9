// Package scriptfonts routes Bengali text to an embedded TrueType face.
package scriptfonts

import (
	"bytes"
	"fmt"
	"os"
	"unicode/utf8"

	gofont "github.com/go-text/typesetting/font"
	"github.com/go-text/typesetting/language"
	"golang.org/x/text/unicode/norm"

	"github.com/goliatone/go-questionpaper/paper"
)

// DefaultFamily is the family name the face is registered under.
const DefaultFamily = "bengali"

// bengaliSample is a Bengali letter any usable face must map.
const bengaliSample = 'ক'

// Strategy implements paper.FontStrategy for Bengali script.
type Strategy struct {
	Family string

	data []byte
}

// Load reads a TrueType font from path.
func Load(path string) (*Strategy, error) {
	if path == "" {
		return nil, paper.NewError(paper.KindValidation, "font path is required", nil)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, paper.NewError(paper.KindValidation, fmt.Sprintf("read font %q", path), err)
	}
	return FromBytes(data)
}

// FromBytes validates data as a TrueType face covering Bengali.
func FromBytes(data []byte) (*Strategy, error) {
	face, err := gofont.ParseTTF(bytes.NewReader(data))
	if err != nil {
		return nil, paper.NewError(paper.KindValidation, "parse font", err)
	}
	if _, ok := face.NominalGlyph(bengaliSample); !ok {
		return nil, paper.NewError(paper.KindValidation, "font has no Bengali glyphs", nil)
	}
	return &Strategy{Family: DefaultFamily, data: data}, nil
}

// Prepare registers the face in every style the layout uses.
func (s *Strategy) Prepare(c paper.Canvas) error {
	registrar, ok := c.(paper.FontRegistrar)
	if !ok {
		return paper.NewError(paper.KindNotImpl, "canvas cannot embed fonts", nil)
	}
	for _, style := range []string{paper.StyleRegular, paper.StyleBold, paper.StyleItalic} {
		if err := registrar.RegisterFont(s.family(), style, s.data); err != nil {
			return fmt.Errorf("register %s %q: %w", s.family(), style, err)
		}
	}
	return nil
}

// Resolve normalizes text to NFC and switches to the Bengali face when the
// text carries any Bengali rune. Other text keeps the requested font.
func (s *Strategy) Resolve(font paper.Font, text string) (paper.Font, string) {
	if text == "" || isASCII(text) {
		return font, text
	}
	text = norm.NFC.String(text)
	if !HasBengali(text) {
		return font, text
	}
	font.Family = s.family()
	return font, text
}

// HasBengali reports whether text contains a rune of the Bengali script.
func HasBengali(text string) bool {
	for _, r := range text {
		if language.LookupScript(r) == language.Bengali {
			return true
		}
	}
	return false
}

func (s *Strategy) family() string {
	if s.Family == "" {
		return DefaultFamily
	}
	return s.Family
}

func isASCII(text string) bool {
	for i := 0; i < len(text); i++ {
		if text[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}
