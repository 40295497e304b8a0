package phoneextract

import (
	"strings"
	"sync"
	"testing"

	"claim_contact_backend/platform/phone"
)

func newMetadataExtractor() *Extractor {
	return New(NewClassifier(phone.NewLibMetadata()))
}

func TestExtractPhoneScenarios(t *testing.T) {
	cases := []struct {
		name  string
		text  string
		want  string
		found bool
	}{
		{
			name:  "field with stray 00 prefix",
			text:  "TELEF-1:00685789868",
			want:  "685789868",
			found: true,
		},
		{
			name: "eight digit field",
			text: "TELEF-2: 91234567",
		},
		{
			name:  "description cut before claims table",
			text:  "DESCRIPCION: llamar al 612345678\n----------\nSINIESTROS\n999999999",
			want:  "612345678",
			found: true,
		},
		{
			name:  "latest manual note wins",
			text:  "OBSERVACIONES MANUALES: contacto inicial 600111222. OBSERVACIONES MANUALES: actualizado, nuevo numero 611222333",
			want:  "611222333",
			found: true,
		},
		{
			name:  "foreign mobile",
			text:  "OBSERVACIONES MANUALES: tel +33612345678",
			want:  "+33612345678",
			found: true,
		},
		{
			name:  "field separated by nbsp",
			text:  "TELEF-1:\u00a0612\u00a0345\u00a0678",
			want:  "612345678",
			found: true,
		},
		{
			name:  "nbsp table header ends the description",
			text:  "DESCRIPCION: sin telefono\nNUMERO\u00a0FECHA\u00a0RESERVA\u00a0\n611222333\nTELEF-2: 699888777",
			want:  "699888777",
			found: true,
		},
		{
			name: "no label",
			text: "Asegurado: Juan. Telefono 612345678",
		},
	}

	e := newMetadataExtractor()
	for _, tc := range cases {
		got, ok := e.ExtractPhone(tc.text)
		if ok != tc.found || got != tc.want {
			t.Errorf("%s: ExtractPhone = (%q, %v), want (%q, %v)", tc.name, got, ok, tc.want, tc.found)
		}
	}
}

func TestExtractPriorityOrder(t *testing.T) {
	text := strings.Join([]string{
		"TELEF-1: 633444555",
		"DESCRIPCION: movil 622333444",
		"OBSERVACIONES MANUALES: nuevo 611222333",
		"TELEF-2: 644555666",
	}, "\n")

	m, ok := newMetadataExtractor().Extract(text)
	if !ok {
		t.Fatal("expected a match")
	}
	if m.Number != "611222333" || m.Label != LabelManualNotes {
		t.Fatalf("expected manual notes to win, got %q from %q", m.Number, m.Label)
	}
}

func TestExtractFallsThroughLabels(t *testing.T) {
	// Sections run to the end of the text, so the fields come first here.
	text := "TELEF-1: 915555555\nTELEF-2: 0034 699 888 777\nDESCRIPCION: sin datos\nOBSERVACIONES MANUALES: fijo 912345678"

	m, ok := newMetadataExtractor().Extract(text)
	if !ok {
		t.Fatal("expected a match")
	}
	if m.Number != "+34699888777" || m.Label != LabelPhone2 {
		t.Fatalf("expected TELEF-2 mobile, got %q from %q", m.Number, m.Label)
	}
}

func TestExtractScanOrderWithinLabel(t *testing.T) {
	text := "OBSERVACIONES MANUALES: fijo 912345678, movil 699888777 o 688777666"

	got, ok := newMetadataExtractor().ExtractPhone(text)
	if !ok || got != "699888777" {
		t.Fatalf("expected first acceptable candidate, got (%q, %v)", got, ok)
	}
}

func TestExtractPermissiveAcceptsForeignLandline(t *testing.T) {
	text := "OBSERVACIONES MANUALES: oficina +33123456789"

	if _, ok := newMetadataExtractor().ExtractPhone(text); ok {
		t.Fatal("expected metadata classifier to reject a French landline")
	}

	got, ok := New(nil).ExtractPhone(text)
	if !ok || got != "+33123456789" {
		t.Fatalf("expected permissive classifier to accept, got (%q, %v)", got, ok)
	}
}

func TestExtractNeverPanics(t *testing.T) {
	e := New(panickingClassifier{})
	if _, ok := e.ExtractPhone("OBSERVACIONES MANUALES: 612345678"); ok {
		t.Fatal("expected no match when the classifier panics")
	}
	if _, ok := e.ExtractPhone(""); ok {
		t.Fatal("expected no match for empty text")
	}
}

func TestExtractDeterministicAndConcurrent(t *testing.T) {
	e := newMetadataExtractor()
	text := "DESCRIPCION: 600 111 222\nTELEF-1: 611222333"
	want, _ := e.ExtractPhone(text)

	var wg sync.WaitGroup
	errs := make(chan string, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if got, _ := e.ExtractPhone(text); got != want {
				errs <- got
			}
		}()
	}
	wg.Wait()
	close(errs)

	for got := range errs {
		t.Fatalf("expected %q from every goroutine, got %q", want, got)
	}
	if want != "600111222" {
		t.Fatalf("expected description number, got %q", want)
	}
}

func TestInspectAgreesWithExtract(t *testing.T) {
	e := newMetadataExtractor()
	text := "OBSERVACIONES MANUALES: fijo 912345678\nDESCRIPCION: movil 699888777\nTELEF-1: 611222333"

	report := e.Inspect(text)
	m, ok := e.Extract(text)
	if !ok || report.Match == nil {
		t.Fatal("expected both walks to find a number")
	}
	if *report.Match != m {
		t.Fatalf("Inspect match %+v differs from Extract %+v", *report.Match, m)
	}

	if len(report.Labels) != len(PriorityOrder) {
		t.Fatalf("expected a report per label, got %d", len(report.Labels))
	}
	notes := report.Labels[0]
	if !notes.Present || len(notes.Candidates) == 0 || notes.Candidates[0].Verdict != "not_mobile" {
		t.Fatalf("expected landline verdict under manual notes, got %+v", notes)
	}
	if report.Labels[3].Present {
		t.Fatal("expected TELEF-2 to be absent")
	}
}
