package langdetect

import (
	"strings"

	"github.com/pemistahl/lingua-go"
)

// Unknown is returned whenever the classifier cannot commit to a language.
// Callers treat it as data, not as an error.
const Unknown = "unknown"

// Detector classifies text into one of the languages the service can
// translate between. It never fails: degenerate input yields Unknown.
type Detector struct {
	detector lingua.LanguageDetector
}

func NewDetector() *Detector {
	languages := []lingua.Language{
		lingua.English,
		lingua.Urdu,
		lingua.French,
		lingua.Spanish,
		lingua.German,
		lingua.Arabic,
	}

	return &Detector{
		detector: lingua.NewLanguageDetectorBuilder().
			FromLanguages(languages...).
			Build(),
	}
}

// Detect returns a lowercase ISO 639-1 code or Unknown.
func (d *Detector) Detect(text string) string {
	if strings.TrimSpace(text) == "" {
		return Unknown
	}

	language, ok := d.detector.DetectLanguageOf(text)
	if !ok {
		return Unknown
	}

	return strings.ToLower(language.IsoCode639_1().String())
}
