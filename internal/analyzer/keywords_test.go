package analyzer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/sells-group/appraisal-cli/pkg/anthropic"
)

type llmFunc func(ctx context.Context, req anthropic.CompletionRequest) (string, error)

func (f llmFunc) Complete(ctx context.Context, req anthropic.CompletionRequest) (string, error) {
	return f(ctx, req)
}

func TestParseKeywords(t *testing.T) {
	content := `{"keyword": "domain tools", "searchVolume": "12K", "difficulty": "Medium"}
{"keyword": "buy domains", "searchVolume": "8K", "difficulty": "Hard"}
{"keyword": "domain appraisal", "searchVolume": "3K", "difficulty": "Easy"}`

	got := parseKeywords(content)
	if len(got) != 3 {
		t.Fatalf("parsed %d keywords, want 3", len(got))
	}
	if got[0].Keyword != "domain tools" || got[0].SearchVolume != "12K" || got[0].Difficulty != "Medium" {
		t.Errorf("first = %+v", got[0])
	}
	if got[2].Keyword != "domain appraisal" {
		t.Errorf("order not preserved: %+v", got)
	}
}

func TestParseKeywordsToleratesProseAndJunk(t *testing.T) {
	content := `Here are your suggestions:
{"keyword": "good one"}
{"searchVolume": "no keyword here"}
{not json at all}
{"keyword": "another", "difficulty": "Hard"}
Hope that helps!`

	got := parseKeywords(content)
	if len(got) != 2 {
		t.Fatalf("parsed %d keywords, want 2: %+v", len(got), got)
	}
	if got[0].SearchVolume != "Unknown" || got[0].Difficulty != "Medium" {
		t.Errorf("missing fields not defaulted: %+v", got[0])
	}
	if got[1].Difficulty != "Hard" {
		t.Errorf("second = %+v", got[1])
	}
}

func TestParseKeywordsCapped(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 8; i++ {
		b.WriteString(`{"keyword": "kw`)
		b.WriteByte(byte('0' + i))
		b.WriteString("\"}\n")
	}
	got := parseKeywords(b.String())
	if len(got) != maxKeywords {
		t.Fatalf("parsed %d keywords, want cap of %d", len(got), maxKeywords)
	}
	if got[0].Keyword != "kw0" || got[4].Keyword != "kw4" {
		t.Errorf("cap did not preserve order: %+v", got)
	}
}

func TestParseKeywordsEmpty(t *testing.T) {
	if got := parseKeywords("no json here at all"); got != nil {
		t.Errorf("parseKeywords = %+v, want nil", got)
	}
}

func TestKeywordProviderSuggest(t *testing.T) {
	var gotReq anthropic.CompletionRequest
	p := NewKeywordProvider(llmFunc(func(_ context.Context, req anthropic.CompletionRequest) (string, error) {
		gotReq = req
		return `{"keyword": "example store", "searchVolume": "5K", "difficulty": "Medium"}`, nil
	}), "test-model")

	got, err := p.Suggest(context.Background(), "example.com")
	if err != nil {
		t.Fatalf("Suggest: %v", err)
	}
	if len(got) != 1 || got[0].Keyword != "example store" {
		t.Errorf("got %+v", got)
	}
	if gotReq.Model != "test-model" {
		t.Errorf("Model = %q", gotReq.Model)
	}
	if !strings.Contains(gotReq.Prompt, "example.com") {
		t.Errorf("prompt does not name the domain: %q", gotReq.Prompt)
	}
	if gotReq.System == "" {
		t.Error("system prompt not set")
	}
}

func TestKeywordProviderErrors(t *testing.T) {
	p := NewKeywordProvider(llmFunc(func(context.Context, anthropic.CompletionRequest) (string, error) {
		return "", errors.New("api error")
	}), "test-model")
	if _, err := p.Suggest(context.Background(), "example.com"); err == nil {
		t.Error("expected error from failing llm")
	}

	p = NewKeywordProvider(llmFunc(func(context.Context, anthropic.CompletionRequest) (string, error) {
		return "nothing structured", nil
	}), "test-model")
	if _, err := p.Suggest(context.Background(), "example.com"); err == nil {
		t.Error("expected error for unparseable response")
	}

	p = NewKeywordProvider(nil, "test-model")
	if _, err := p.Suggest(context.Background(), "example.com"); err == nil {
		t.Error("expected error with no client")
	}
}

func TestFallbackKeywords(t *testing.T) {
	got := fallbackKeywords("example.com")
	want := []string{"example", "buy example", "example online", "example service", "example website"}
	if len(got) != len(want) {
		t.Fatalf("got %d keywords, want %d", len(got), len(want))
	}
	for i, w := range want {
		if got[i].Keyword != w {
			t.Errorf("keyword[%d] = %q, want %q", i, got[i].Keyword, w)
		}
	}
	for _, ks := range got[:4] {
		if ks.Difficulty != "Medium" {
			t.Errorf("%q difficulty = %q, want Medium", ks.Keyword, ks.Difficulty)
		}
	}
	if got[4].Difficulty != "Easy" {
		t.Errorf("last difficulty = %q, want Easy", got[4].Difficulty)
	}
}
