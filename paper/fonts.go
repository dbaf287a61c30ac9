package paper

// FontStrategy decides which registered face renders a run of text.
type FontStrategy interface {
	// Prepare registers any fonts the strategy needs on the canvas.
	Prepare(c Canvas) error
	// Resolve returns the face and the (possibly normalized) text to draw.
	Resolve(font Font, text string) (Font, string)
}

// StandardFonts uses the canvas built-in families unchanged.
type StandardFonts struct{}

func (StandardFonts) Prepare(Canvas) error { return nil }

func (StandardFonts) Resolve(font Font, text string) (Font, string) {
	return font, text
}

func (StandardFonts) SupportsLocale(locale string) bool {
	return LabelLocale(locale) == LocaleEnglish
}

// LocaleFonts is implemented by strategies that know which label catalogues
// their faces can draw.
type LocaleFonts interface {
	SupportsLocale(locale string) bool
}

// LabelsForFonts returns labels for locale, or English labels when fonts
// cannot draw the locale's script.
func LabelsForFonts(locale string, fonts FontStrategy) Labels {
	if lf, ok := fonts.(LocaleFonts); ok && !lf.SupportsLocale(locale) {
		return LabelsFor(LocaleEnglish)
	}
	return LabelsFor(locale)
}
