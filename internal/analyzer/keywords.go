package analyzer

import (
	"context"
	"encoding/json"
	"regexp"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/appraisal-cli/internal/model"
	"github.com/sells-group/appraisal-cli/pkg/anthropic"
)

const maxKeywords = 5

const keywordSystemPrompt = `You are a domain name and SEO expert. Generate 5 relevant keyword suggestions for domain names.
Each suggestion must be a JSON object on its own line in this exact format:
{"keyword": "example term", "searchVolume": "estimated monthly searches", "difficulty": "Easy|Medium|Hard"}

Provide exactly 5 suggestions, one per line.
Do not include any other text or formatting.`

// keywordProvider generates keyword suggestions with the LLM.
type keywordProvider struct {
	llm   anthropic.Client
	model string
}

// NewKeywordProvider wraps an LLM client as the keywords stage provider.
func NewKeywordProvider(c anthropic.Client, modelID string) KeywordProvider {
	return &keywordProvider{llm: c, model: modelID}
}

func (p *keywordProvider) Suggest(ctx context.Context, domain string) ([]model.KeywordSuggestion, error) {
	if p.llm == nil {
		return nil, eris.New("keywords: no llm client configured")
	}

	temp := 0.3
	content, err := p.llm.Complete(ctx, anthropic.CompletionRequest{
		Model:       p.model,
		System:      keywordSystemPrompt,
		Prompt:      "Generate 5 relevant keywords for the domain: " + domain,
		MaxTokens:   512,
		Temperature: &temp,
	})
	if err != nil {
		return nil, err
	}

	suggestions := parseKeywords(content)
	if len(suggestions) == 0 {
		return nil, eris.Errorf("keywords: no suggestions parsed from response: %.120s", content)
	}
	return suggestions, nil
}

var jsonObjectPattern = regexp.MustCompile(`\{[^{}]+\}`)

// parseKeywords extracts keyword objects from the model output, tolerating
// surrounding prose and malformed lines.
func parseKeywords(content string) []model.KeywordSuggestion {
	var out []model.KeywordSuggestion
	for _, raw := range jsonObjectPattern.FindAllString(content, -1) {
		var ks model.KeywordSuggestion
		if err := json.Unmarshal([]byte(raw), &ks); err != nil {
			continue
		}
		if ks.Keyword == "" {
			continue
		}
		if ks.SearchVolume == "" {
			ks.SearchVolume = "Unknown"
		}
		if ks.Difficulty == "" {
			ks.Difficulty = "Medium"
		}
		out = append(out, ks)
		if len(out) == maxKeywords {
			break
		}
	}
	return out
}

// fallbackKeywords derives a deterministic suggestion list from the
// domain's left-most label.
func fallbackKeywords(domain string) []model.KeywordSuggestion {
	base := strings.ToLower(strings.SplitN(domain, ".", 2)[0])
	return []model.KeywordSuggestion{
		{Keyword: base, SearchVolume: "Unknown", Difficulty: "Medium"},
		{Keyword: "buy " + base, SearchVolume: "Unknown", Difficulty: "Medium"},
		{Keyword: base + " online", SearchVolume: "Unknown", Difficulty: "Medium"},
		{Keyword: base + " service", SearchVolume: "Unknown", Difficulty: "Medium"},
		{Keyword: base + " website", SearchVolume: "Unknown", Difficulty: "Easy"},
	}
}
