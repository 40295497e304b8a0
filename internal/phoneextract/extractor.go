package phoneextract

// Extractor runs the label walk with a fixed classifier.
type Extractor struct {
	classifier Classifier
}

// New creates an Extractor. A nil classifier falls back to
// PermissiveClassifier.
func New(classifier Classifier) *Extractor {
	if classifier == nil {
		classifier = PermissiveClassifier{}
	}
	return &Extractor{classifier: classifier}
}

// ExtractPhone returns the first accepted number in priority order.
func (e *Extractor) ExtractPhone(text string) (string, bool) {
	m, ok := e.Extract(text)
	if !ok {
		return "", false
	}
	return string(m.Number), true
}

// Extract is ExtractPhone with the label and raw candidate of the winner.
func (e *Extractor) Extract(text string) (match Match, found bool) {
	defer func() {
		if recover() != nil {
			match, found = Match{}, false
		}
	}()

	for _, label := range PriorityOrder {
		if m, ok := e.extractLabel(text, label); ok {
			return m, true
		}
	}
	return Match{}, false
}

func (e *Extractor) extractLabel(text string, label SectionLabel) (Match, bool) {
	if label.Kind() == KindField {
		value, ok := Field(text, label)
		if !ok {
			return Match{}, false
		}
		return e.accept(label, value)
	}

	span, ok := Section(text, label)
	if !ok {
		return Match{}, false
	}
	for candidate := range Candidates(span) {
		if m, ok := e.accept(label, candidate); ok {
			return m, true
		}
	}
	return Match{}, false
}

func (e *Extractor) accept(label SectionLabel, raw string) (Match, bool) {
	n, ok := Normalize(raw)
	if !ok || !IsMobile(e.classifier, n) {
		return Match{}, false
	}
	return Match{Number: n, Label: label, Raw: raw}, true
}
