package config

import (
	"testing"
)

func validConfig() Config {
	return Config{
		HTTP:      HTTPConfig{Port: 8080},
		Index:     IndexConfig{URL: "http://localhost:8081"},
		Embedding: EmbeddingConfig{URL: "http://localhost:8000"},
	}
}

func TestValidate_Valid(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_InvalidPort(t *testing.T) {
	cfg := validConfig()
	cfg.HTTP.Port = 0

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for invalid port")
	}
}

func TestValidate_MissingIndexURL(t *testing.T) {
	cfg := validConfig()
	cfg.Index.URL = ""

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing index url")
	}
}

func TestValidate_MissingEmbeddingURL(t *testing.T) {
	cfg := validConfig()
	cfg.Embedding.URL = ""

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing embedding url")
	}
}

func TestValidate_InvalidLLMProvider(t *testing.T) {
	cfg := validConfig()
	cfg.LLM.Provider = "anthropic"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for unknown llm provider")
	}
}

func TestValidate_OpenAIRequiresAPIKey(t *testing.T) {
	cfg := validConfig()
	cfg.LLM.Provider = "openai"

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for openai provider without api key")
	}

	cfg.LLM.APIKey = "test-key"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error with api key set: %v", err)
	}
}

func TestValidate_NegativeFallbackMinScore(t *testing.T) {
	cfg := validConfig()
	cfg.Search.FallbackMinScore = -0.1

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for negative fallback_min_score")
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := validConfig()
	cfg.ApplyDefaults()

	if cfg.Index.Class != "Paragraph" {
		t.Errorf("index.class = %q, want Paragraph", cfg.Index.Class)
	}
	if cfg.Search.DefaultTopK != 10 {
		t.Errorf("search.default_top_k = %d, want 10", cfg.Search.DefaultTopK)
	}
	if cfg.Search.MaxTopK != 50 {
		t.Errorf("search.max_top_k = %d, want 50", cfg.Search.MaxTopK)
	}
	if cfg.Search.CandidatePool != 100 {
		t.Errorf("search.candidate_pool = %d, want 100", cfg.Search.CandidatePool)
	}
	if cfg.Search.FallbackMinScore != 0 {
		t.Errorf("search.fallback_min_score = %g, want 0 (disabled)", cfg.Search.FallbackMinScore)
	}
	if cfg.Answer.SummaryChars != 600 {
		t.Errorf("answer.summary_chars = %d, want 600", cfg.Answer.SummaryChars)
	}
	if cfg.Answer.MaxCitations != 10 {
		t.Errorf("answer.max_citations = %d, want 10", cfg.Answer.MaxCitations)
	}
	if cfg.LLM.Provider != "none" {
		t.Errorf("llm.provider = %q, want none", cfg.LLM.Provider)
	}
	if cfg.Embedding.Cache.Size != 512 {
		t.Errorf("embedding.cache.size = %d, want 512", cfg.Embedding.Cache.Size)
	}
}

func TestApplyDefaults_KeepsExplicitValues(t *testing.T) {
	cfg := validConfig()
	cfg.Search.MaxTopK = 200
	cfg.Answer.CitationBlocks = 3
	cfg.ApplyDefaults()

	if cfg.Search.MaxTopK != 200 {
		t.Errorf("search.max_top_k = %d, want 200", cfg.Search.MaxTopK)
	}
	if cfg.Answer.CitationBlocks != 3 {
		t.Errorf("answer.citation_blocks = %d, want 3", cfg.Answer.CitationBlocks)
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("SUTTA_TEST_URL", "http://weaviate:8080")

	in := []byte("url: ${SUTTA_TEST_URL}\nclass: ${SUTTA_TEST_CLASS:-Paragraph}\nempty: ${SUTTA_TEST_MISSING}\n")
	out := string(expandEnvVars(in))

	want := "url: http://weaviate:8080\nclass: Paragraph\nempty: \n"
	if out != want {
		t.Errorf("expandEnvVars:\ngot:  %q\nwant: %q", out, want)
	}
}

func TestGetEnv(t *testing.T) {
	t.Setenv("ENV", "")
	if env := GetEnv(); env != "local" {
		t.Errorf("GetEnv() = %q, want local", env)
	}

	t.Setenv("ENV", "prod")
	if env := GetEnv(); env != "prod" {
		t.Errorf("GetEnv() = %q, want prod", env)
	}
}
