package paper

import (
	"strings"
	"sync"

	i18n "github.com/goliatone/go-i18n"
	"golang.org/x/text/language"
)

// Labels holds the localized strings printed on a paper.
type Labels struct {
	Locale      string
	Marks       string
	Class       string
	Subject     string
	TotalMarks  string
	Duration    string
	Diagram     string
	InvalidData string
	Question    string
	Part        string
	PartMarks   string
	ExamTypes   map[string]string
}

const (
	LocaleBengali = "bn"
	LocaleEnglish = "en"
)

var examTypeKeys = []string{
	"half_yearly", "annual", "final", "test", "pre_test", "model_test", "class_test", "monthly",
}

var labelCatalog = map[string]map[string]string{
	LocaleBengali: {
		"label.marks":           "নম্বর",
		"label.class":           "শ্রেণি",
		"label.subject":         "বিষয়",
		"label.total_marks":     "পূর্ণমান",
		"label.duration":        "সময়",
		"label.diagram":         "চিত্র",
		"label.invalid_data":    "প্রশ্নপত্রের তথ্য সঠিক নয়",
		"label.question":        "প্রশ্ন",
		"label.part":            "অংশ",
		"label.part_marks":      "অংশের নম্বর",
		"exam_type.half_yearly": "অর্ধবার্ষিক পরীক্ষা",
		"exam_type.annual":      "বার্ষিক পরীক্ষা",
		"exam_type.final":       "বার্ষিক পরীক্ষা",
		"exam_type.test":        "নির্বাচনী পরীক্ষা",
		"exam_type.pre_test":    "প্রাক-নির্বাচনী পরীক্ষা",
		"exam_type.model_test":  "মডেল টেস্ট",
		"exam_type.class_test":  "শ্রেণি পরীক্ষা",
		"exam_type.monthly":     "মাসিক পরীক্ষা",
	},
	LocaleEnglish: {
		"label.marks":           "marks",
		"label.class":           "Class",
		"label.subject":         "Subject",
		"label.total_marks":     "Total Marks",
		"label.duration":        "Time",
		"label.diagram":         "Diagram",
		"label.invalid_data":    "Invalid question paper data",
		"label.question":        "Question",
		"label.part":            "Part",
		"label.part_marks":      "Part Marks",
		"exam_type.half_yearly": "Half-Yearly Examination",
		"exam_type.annual":      "Annual Examination",
		"exam_type.final":       "Final Examination",
		"exam_type.test":        "Test Examination",
		"exam_type.pre_test":    "Pre-Test Examination",
		"exam_type.model_test":  "Model Test",
		"exam_type.class_test":  "Class Test",
		"exam_type.monthly":     "Monthly Examination",
	},
}

type translator interface {
	Translate(locale, key string, args ...any) (string, error)
}

var labelSets = sync.OnceValue(func() map[string]Labels {
	tr := lookup(catalogLookup)
	store := i18n.NewStaticStore(labelCatalog)
	if t, err := i18n.NewSimpleTranslator(store, i18n.WithTranslatorDefaultLocale(LocaleEnglish)); err == nil {
		if lt, ok := any(t).(translator); ok {
			tr = translatorLookup(lt)
		}
	}
	sets := make(map[string]Labels, len(labelCatalog))
	for locale := range labelCatalog {
		sets[locale] = catalogLabels(locale, tr)
	}
	return sets
})

type lookup func(locale, key string) string

func translatorLookup(t translator) lookup {
	return func(locale, key string) string {
		if msg, err := t.Translate(locale, key); err == nil && msg != "" && msg != key {
			return msg
		}
		return catalogLookup(LocaleEnglish, key)
	}
}

func catalogLookup(locale, key string) string {
	if msg, ok := labelCatalog[locale][key]; ok {
		return msg
	}
	return labelCatalog[LocaleEnglish][key]
}

func catalogLabels(locale string, tr lookup) Labels {
	exams := make(map[string]string, len(examTypeKeys))
	for _, key := range examTypeKeys {
		exams[key] = tr(locale, "exam_type."+key)
	}
	return Labels{
		Locale:      locale,
		Marks:       tr(locale, "label.marks"),
		Class:       tr(locale, "label.class"),
		Subject:     tr(locale, "label.subject"),
		TotalMarks:  tr(locale, "label.total_marks"),
		Duration:    tr(locale, "label.duration"),
		Diagram:     tr(locale, "label.diagram"),
		InvalidData: tr(locale, "label.invalid_data"),
		Question:    tr(locale, "label.question"),
		Part:        tr(locale, "label.part"),
		PartMarks:   tr(locale, "label.part_marks"),
		ExamTypes:   exams,
	}
}

// LabelLocale maps a BCP 47 locale to a label catalogue. Anything that is not
// English gets Bengali labels.
func LabelLocale(locale string) string {
	tag, err := language.Parse(strings.TrimSpace(locale))
	if err != nil {
		return LocaleBengali
	}
	if base, _ := tag.Base(); base.String() == LocaleEnglish {
		return LocaleEnglish
	}
	return LocaleBengali
}

// LabelsFor returns labels for a BCP 47 locale.
func LabelsFor(locale string) Labels {
	return labelSets()[LabelLocale(locale)]
}

// ExamType returns the label for an exam type key such as "half_yearly". Unknown
// keys are printed as given.
func (l Labels) ExamType(key string) string {
	normalized := strings.ToLower(strings.TrimSpace(key))
	normalized = strings.NewReplacer("-", "_", " ", "_").Replace(normalized)
	if label, ok := l.ExamTypes[normalized]; ok {
		return label
	}
	return strings.TrimSpace(key)
}
