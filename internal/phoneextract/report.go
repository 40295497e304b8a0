package phoneextract

// CandidateReport records what happened to one candidate.
type CandidateReport struct {
	Raw            string          `json:"raw"`
	Number         CanonicalNumber `json:"number,omitempty"`
	Normalized     bool            `json:"normalized"`
	Classification Classification  `json:"-"`
	Verdict        string          `json:"verdict"`
}

// LabelReport lists the candidates seen under one label.
type LabelReport struct {
	Label      SectionLabel      `json:"label"`
	Present    bool              `json:"present"`
	Span       string            `json:"span,omitempty"`
	Candidates []CandidateReport `json:"candidates,omitempty"`
}

// Report is a full, non short-circuiting walk over every label. It is meant
// for diagnosing records where nothing was found.
type Report struct {
	Labels []LabelReport `json:"labels"`
	Match  *Match        `json:"-"`
}

// Inspect evaluates every candidate under every label. Report.Match is the
// same winner Extract would return.
func (e *Extractor) Inspect(text string) Report {
	report := Report{Labels: make([]LabelReport, 0, len(PriorityOrder))}

	for _, label := range PriorityOrder {
		lr := LabelReport{Label: label}

		var raws []string
		if label.Kind() == KindField {
			if value, ok := Field(text, label); ok {
				lr.Present = true
				lr.Span = value
				raws = append(raws, value)
			}
		} else if span, ok := Section(text, label); ok {
			lr.Present = true
			lr.Span = span
			for candidate := range Candidates(span) {
				raws = append(raws, candidate)
			}
		}

		for _, raw := range raws {
			cr := CandidateReport{Raw: raw, Classification: Invalid}
			if n, ok := Normalize(raw); ok {
				cr.Number = n
				cr.Normalized = true
				cr.Classification = classify(e.classifier, n)
			}
			cr.Verdict = cr.Classification.String()
			lr.Candidates = append(lr.Candidates, cr)

			if report.Match == nil && cr.Classification.Accepted() {
				report.Match = &Match{Number: cr.Number, Label: label, Raw: raw}
			}
		}

		report.Labels = append(report.Labels, lr)
	}

	return report
}
