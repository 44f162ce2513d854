// Package escalation classifies chat text for the human-handoff flow.
//
// The classifiers are deliberately coarse keyword matching, not NLP: the
// vocabulary errs broad because a missed handoff request costs more than a
// spurious offer. Vocabularies are plain data so locales can be updated
// without touching the turn logic.
package escalation

import "strings"

// Vocabulary holds the trigger phrases for one locale.
type Vocabulary struct {
	// Version identifies the vocabulary revision.
	Version string
	// Locale is the BCP 47 language tag the phrases are written in.
	Locale string
	// HumanRequestKeywords match anywhere in a user message, case-insensitive.
	HumanRequestKeywords []string
	// AffirmativeTokens match a trimmed, case-folded user message exactly.
	AffirmativeTokens []string
	// MissingInfoPhrases match anywhere in an LLM reply, case-insensitive.
	MissingInfoPhrases []string
}

// English returns the built-in English vocabulary.
func English() Vocabulary {
	return Vocabulary{
		Version: "1",
		Locale:  "en",
		HumanRequestKeywords: []string{
			"human",
			"agent",
			"support",
			"someone real",
			"real person",
			"speak to a person",
			"talk to a person",
			"contact a person",
			"customer service",
			"representative",
			"advisor",
		},
		AffirmativeTokens: []string{
			"yes",
			"yes please",
			"ok",
			"okay",
			"sure",
			"yep",
			"yeah",
		},
		MissingInfoPhrases: []string{
			"not mentioned",
			"no information available",
			"i don't have that information",
			"i do not have that information",
			"not present on the site",
			"isn't mentioned",
			"is not mentioned",
		},
	}
}

// French returns the built-in French vocabulary.
func French() Vocabulary {
	return Vocabulary{
		Version: "1",
		Locale:  "fr",
		HumanRequestKeywords: []string{
			"humain",
			"agent",
			"support",
			"conseiller",
			"quelqu'un",
			"une personne",
			"parler à un",
			"service client",
			"vraie personne",
		},
		AffirmativeTokens: []string{
			"oui",
			"oui merci",
			"ok",
			"d'accord",
			"daccord",
			"volontiers",
			"bien sûr",
		},
		MissingInfoPhrases: []string{
			"pas mentionné",
			"pas mentionnée",
			"aucune information",
			"je ne dispose pas",
			"n'est pas présente",
			"ne figure pas",
		},
	}
}

// ForLocale returns the built-in vocabulary for a locale, defaulting to English.
func ForLocale(locale string) Vocabulary {
	if strings.HasPrefix(strings.ToLower(locale), "fr") {
		return French()
	}
	return English()
}

// Detector classifies messages against one vocabulary.
type Detector struct {
	vocab Vocabulary
}

// NewDetector creates a Detector for the given vocabulary.
func NewDetector(vocab Vocabulary) *Detector {
	return &Detector{vocab: vocab}
}

// Vocabulary returns the vocabulary the detector was built with.
func (d *Detector) Vocabulary() Vocabulary {
	return d.vocab
}

// IsExplicitHumanRequest reports whether the user message asks for a human
// agent. Substring match, case-insensitive.
func (d *Detector) IsExplicitHumanRequest(text string) bool {
	return containsAny(text, d.vocab.HumanRequestKeywords)
}

// IsAffirmativeConfirmation reports whether the user message is a bare
// affirmative. The trimmed, case-folded text must equal one of the tokens
// exactly; substrings never match, so longer sentences don't trigger.
func (d *Detector) IsAffirmativeConfirmation(text string) bool {
	trimmed := strings.ToLower(strings.TrimSpace(text))
	for _, token := range d.vocab.AffirmativeTokens {
		if trimmed == strings.ToLower(token) {
			return true
		}
	}
	return false
}

// IndicatesMissingInformation reports whether an LLM reply states that the
// requested information is absent from the supplied page content.
func (d *Detector) IndicatesMissingInformation(replyText string) bool {
	return containsAny(replyText, d.vocab.MissingInfoPhrases)
}

func containsAny(text string, phrases []string) bool {
	lowered := strings.ToLower(text)
	for _, phrase := range phrases {
		if strings.Contains(lowered, strings.ToLower(phrase)) {
			return true
		}
	}
	return false
}
