package phrases

import (
	"reflect"
	"strings"
	"testing"
)

const sampleText = `Delayed tuberculosis diagnosis remains a persistent challenge in
high-burden countries. Patients frequently experience prolonged symptomatic periods
before receiving appropriate antimicrobial treatment regimens. Healthcare systems
struggle with diagnostic infrastructure limitations across rural districts.
Molecular diagnostic platforms demonstrate substantially improved detection
sensitivity compared with conventional sputum microscopy techniques.`

func TestExtract_Deterministic(t *testing.T) {
	first, err := Extract(sampleText, DefaultConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i := 0; i < 5; i++ {
		again, err := Extract(sampleText, DefaultConfig())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("run %d differs:\nfirst: %v\nagain: %v", i, first, again)
		}
	}
}

func TestExtract_WindowLength(t *testing.T) {
	result, err := Extract(sampleText, DefaultConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result) == 0 {
		t.Fatal("expected phrases")
	}
	for _, p := range result {
		if n := len(strings.Fields(p.Text)); n != DefaultWindow {
			t.Errorf("phrase %q has %d words, want %d", p.Text, n, DefaultWindow)
		}
	}
}

func TestExtract_BudgetBound(t *testing.T) {
	// A long repetitive-but-varied document must stay within the 20 cap.
	var b strings.Builder
	sentences := []string{
		"Mycobacterial culture confirmation requires specialized laboratory containment facilities nationwide",
		"Radiographic screening programmes identified numerous previously undetected pulmonary abnormalities",
		"Community outreach initiatives substantially improved treatment adherence among vulnerable populations",
		"Genomic surveillance networks revealed unexpected transmission clusters within urban settlements",
	}
	for i := 0; i < 60; i++ {
		b.WriteString(sentences[i%len(sentences)])
		b.WriteString(" number")
		b.WriteString(strings.Repeat("x", i%5+1))
		b.WriteString(". ")
	}

	result, err := Extract(b.String(), DefaultConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result) > 20 {
		t.Errorf("got %d phrases, budget cap is 20", len(result))
	}
}

func TestExtract_FallbackShortDocument(t *testing.T) {
	result, err := Extract("Short note only.", DefaultConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result) != 1 {
		t.Fatalf("expected single fallback phrase, got %d", len(result))
	}
	if result[0].Text != "short note only" {
		t.Errorf("fallback phrase = %q", result[0].Text)
	}
}

func TestExtract_EmptyInput(t *testing.T) {
	result, err := Extract("   \n\t ", DefaultConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result) != 0 {
		t.Errorf("expected no phrases for blank input, got %v", result)
	}
}

func TestExtract_InvalidConfig(t *testing.T) {
	if _, err := Extract("some text", Config{Window: 0}); err == nil {
		t.Error("expected error for zero window")
	}
	if _, err := Extract("some text", Config{Window: 6, MaxPhrases: -1}); err == nil {
		t.Error("expected error for negative MaxPhrases")
	}
}

func TestExtract_NoOverlappingKeeps(t *testing.T) {
	result, err := Extract(sampleText, DefaultConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := range result {
		for j := range result {
			if i == j {
				continue
			}
			if strings.Contains(result[i].Text, result[j].Text) {
				t.Errorf("kept phrases overlap: %q contains %q", result[i].Text, result[j].Text)
			}
		}
	}
}

func TestIsCommonChain(t *testing.T) {
	tests := []struct {
		phrase string
		want   bool
	}{
		{"the results show that delayed diagnosis", true},
		{"on the other hand treatment adherence", true},
		{"it is and of the by", true}, // all stop-words
		{"molecular diagnostic platforms demonstrate improved sensitivity", false},
	}

	for _, tt := range tests {
		if got := isCommonChain(tt.phrase); got != tt.want {
			t.Errorf("isCommonChain(%q) = %v, want %v", tt.phrase, got, tt.want)
		}
	}
}

func TestPhraseBudget(t *testing.T) {
	tests := []struct {
		words int
		want  int
	}{
		{50, 8},
		{320, 8},
		{400, 10},
		{2000, 20},
		{10000, 20},
	}
	for _, tt := range tests {
		if got := phraseBudget(tt.words); got != tt.want {
			t.Errorf("phraseBudget(%d) = %d, want %d", tt.words, got, tt.want)
		}
	}
}
