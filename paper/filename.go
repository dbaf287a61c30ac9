package paper

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
	"time"
	"unicode"
)

const (
	defaultFilenameTemplate = "{{.Base}}_{{.Timestamp}}_{{.Token}}"
	defaultFilenameBase     = "question-paper"
	maxFilenameBase         = 80
	tokenLength             = 8
)

type filenameData struct {
	Base      string
	Subject   string
	Timestamp string
	Date      string
	Token     string
}

// SanitizeFilename lower-cases name and keeps only [a-z0-9-_], collapsing
// everything else into single dashes.
func SanitizeFilename(name string) string {
	name = strings.TrimSuffix(strings.ToLower(strings.TrimSpace(name)), ".pdf")
	var b strings.Builder
	dash := false
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
			dash = false
		case r == '-' || unicode.IsSpace(r) || unicode.IsPunct(r) || r > unicode.MaxASCII:
			if !dash && b.Len() > 0 {
				b.WriteByte('-')
				dash = true
			}
		}
	}
	out := strings.Trim(b.String(), "-_")
	if len(out) > maxFilenameBase {
		out = strings.Trim(out[:maxFilenameBase], "-_")
	}
	return out
}

// renderFilename builds a unique output name from the request base or the
// paper subject.
func renderFilename(pattern, base string, doc Paper, now time.Time, token string) (string, error) {
	if pattern == "" {
		pattern = defaultFilenameTemplate
	}
	name := SanitizeFilename(base)
	if name == "" {
		name = SanitizeFilename(doc.Header.Subject)
	}
	if name == "" {
		name = defaultFilenameBase
	}
	token = strings.ReplaceAll(token, "-", "")
	if len(token) > tokenLength {
		token = token[:tokenLength]
	}

	data := filenameData{
		Base:      name,
		Subject:   SanitizeFilename(doc.Header.Subject),
		Timestamp: now.UTC().Format("20060102T150405Z"),
		Date:      now.UTC().Format("20060102"),
		Token:     token,
	}

	tmpl, err := template.New("filename").Parse(pattern)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}

	result := strings.TrimSpace(buf.String())
	if result == "" {
		return "", fmt.Errorf("empty filename")
	}
	if !strings.HasSuffix(strings.ToLower(result), ".pdf") {
		result += ".pdf"
	}
	return result, nil
}
