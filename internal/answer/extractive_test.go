package answer

import (
	"context"
	"strings"
	"testing"

	"github.com/palitext/suttasearch/internal/domain"
)

func contextsFixture() []domain.SearchHit {
	return []domain.SearchHit{
		{
			BookID:               "dhp",
			ParaID:               "354",
			PaliParagraph:        "sabbadānaṃ dhammadānaṃ jināti",
			TranslationParagraph: "The gift of the dhamma excels all gifts.",
		},
		{
			BookID:               "dn16",
			ParaID:               "2.3",
			PaliParagraph:        "vayadhammā saṅkhārā",
			TranslationParagraph: "All conditioned things are subject to decay.",
		},
	}
}

func TestExtractiveEmptyContexts(t *testing.T) {
	e := NewExtractive(0, 0)
	got, err := e.Synthesize(context.Background(), "what is metta", nil, domain.LangEN)
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if !strings.Contains(got, "what is metta") {
		t.Errorf("no-match message must name the query, got %q", got)
	}
	if strings.Contains(got, "Citations:") {
		t.Errorf("no-match message must not carry a citation block, got %q", got)
	}
}

func TestExtractiveContainsSummaryAndCitations(t *testing.T) {
	e := NewExtractive(0, 0)
	got, err := e.Synthesize(context.Background(), "decay", contextsFixture(), domain.LangEN)
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if !strings.HasPrefix(got, extractiveHeader) {
		t.Errorf("answer must start with the fixed header, got %q", got)
	}
	for _, want := range []string{"Summary:", "Citations:", "[dhp:354]", "[dn16:2.3]"} {
		if !strings.Contains(got, want) {
			t.Errorf("answer missing %q", want)
		}
	}
	// English target: translation line precedes the Pali line.
	ti := strings.Index(got, "The gift of the dhamma")
	pi := strings.Index(got, "sabbadānaṃ")
	if ti < 0 || pi < 0 || ti > pi {
		t.Errorf("translation must precede pali for English targets")
	}
}

func TestExtractivePaliFirstOrdering(t *testing.T) {
	e := NewExtractive(0, 0)
	got, err := e.Synthesize(context.Background(), "dānaṃ", contextsFixture(), domain.LangPali)
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	citations := got[strings.Index(got, "Citations:"):]
	pi := strings.Index(citations, "sabbadānaṃ")
	ti := strings.Index(citations, "The gift of the dhamma")
	if pi < 0 || ti < 0 || pi > ti {
		t.Errorf("pali must precede translation for Pali targets")
	}
}

func TestExtractiveSummaryBudget(t *testing.T) {
	long := strings.Repeat("word ", 200) // ~1000 chars
	hits := []domain.SearchHit{{BookID: "b", ParaID: "1", TranslationParagraph: long}}

	e := NewExtractive(100, 6)
	got, err := e.Synthesize(context.Background(), "q", hits, domain.LangEN)
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}

	start := strings.Index(got, "Summary:\n") + len("Summary:\n")
	end := strings.Index(got, "\n\nCitations:")
	summary := got[start:end]

	if !strings.HasSuffix(summary, "…") {
		t.Errorf("truncated summary must end with ellipsis, got %q", summary)
	}
	if n := len([]rune(summary)); n > 101 {
		t.Errorf("summary length = %d runes, want <= 101", n)
	}
	if !strings.HasSuffix(strings.TrimSuffix(summary, "…"), "word") {
		t.Errorf("summary cut mid-word: %q", summary)
	}
}

func TestExtractiveSkipsEmptyContexts(t *testing.T) {
	hits := append(contextsFixture(), domain.SearchHit{BookID: "mn1", ParaID: "9"})
	e := NewExtractive(0, 0)
	got, err := e.Synthesize(context.Background(), "q", hits, domain.LangEN)
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if strings.Contains(got, "[mn1:9]") {
		t.Errorf("context with no text must be omitted from citations")
	}
}

func TestExtractiveCitationBlockCap(t *testing.T) {
	var hits []domain.SearchHit
	for i := 0; i < 10; i++ {
		hits = append(hits, domain.SearchHit{
			BookID:               "b",
			ParaID:               string(rune('a' + i)),
			TranslationParagraph: "text",
		})
	}
	e := NewExtractive(0, 6)
	got, err := e.Synthesize(context.Background(), "q", hits, domain.LangEN)
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if n := strings.Count(got, "[b:"); n != 6 {
		t.Errorf("citation blocks = %d, want 6", n)
	}
}

func TestExtractivePaliOnlySummaryFallback(t *testing.T) {
	hits := []domain.SearchHit{{BookID: "b", ParaID: "1", PaliParagraph: "appamādo amatapadaṃ"}}
	e := NewExtractive(0, 0)
	got, err := e.Synthesize(context.Background(), "q", hits, domain.LangEN)
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if !strings.Contains(got, "appamādo amatapadaṃ") {
		t.Errorf("summary must fall back to pali text when translation is absent")
	}
}

func TestBuildPrompt(t *testing.T) {
	got := BuildPrompt("what decays?", contextsFixture(), domain.LangEN)
	for _, want := range []string{
		"Answer in en.",
		"cite [book_id:para_id]",
		"Question: what decays?",
		"[dhp:354] sabbadānaṃ dhammadānaṃ jināti / The gift of the dhamma excels all gifts.",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("prompt missing %q:\n%s", want, got)
		}
	}
}

func TestCitationTagPlaceholders(t *testing.T) {
	tag := CitationTag(domain.SearchHit{})
	if tag != "[?:?]" {
		t.Errorf("tag = %q, want [?:?]", tag)
	}
}
