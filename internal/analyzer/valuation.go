package analyzer

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/appraisal-cli/internal/model"
	"github.com/sells-group/appraisal-cli/pkg/anthropic"
)

// fallbackValuation is substituted when the valuation stage fails outright.
func fallbackValuation() model.Valuation {
	return model.Valuation{
		EstimatedValue:   500,
		ConfidenceScore:  60,
		DetailedAnalysis: "Unable to generate analysis at this time.",
	}
}

const valuationSystemPrompt = `You are a domain name valuation expert. Consider domain length, domain age, TLD value, traffic, and brand potential when determining value. Premium TLDs (.com, .net, .org) and established domains (>5 years) command higher values; short memorable domains are particularly valuable; each hyphen reduces value by roughly 40%.

Be specific with valuations and avoid rounding to the nearest thousand. Keep the analysis to 2-3 concise paragraphs about value factors only, and do not discuss confidence scores in the analysis.

Respond in exactly this format:
Estimated Value: $X
Confidence Score: Y%
Analysis: [2-3 paragraphs about value factors only]`

// llmValuer asks the LLM for a valuation and parses its structured reply.
type llmValuer struct {
	llm   anthropic.Client
	model string
}

// NewLLMValuer wraps an LLM client as the valuation stage provider.
func NewLLMValuer(c anthropic.Client, modelID string) Valuer {
	return &llmValuer{llm: c, model: modelID}
}

func (v *llmValuer) Valuate(ctx context.Context, in model.ValuationInput) (model.Valuation, error) {
	if v.llm == nil {
		return model.Valuation{}, eris.New("valuation: no llm client configured")
	}

	var b strings.Builder
	b.WriteString("Please analyze this domain and provide a detailed valuation:\n\n")
	b.WriteString("Domain: " + in.Domain + "\n")
	b.WriteString("Age: " + in.DomainAge + "\n")
	b.WriteString("TLD: " + in.TLD + "\n")
	b.WriteString("Monthly Traffic: " + in.MonthlyTraffic.String() + "\n")
	if in.Registrar != "" {
		b.WriteString("Registrar: " + in.Registrar + "\n")
	} else {
		b.WriteString("Registrar: Unknown\n")
	}
	if in.ExpiryDate != nil {
		b.WriteString("Expiry: " + in.ExpiryDate.Format("January 2, 2006") + "\n")
	} else {
		b.WriteString("Expiry: Unknown\n")
	}

	temp := 0.3
	response, err := v.llm.Complete(ctx, anthropic.CompletionRequest{
		Model:       v.model,
		System:      valuationSystemPrompt,
		Prompt:      b.String(),
		MaxTokens:   1024,
		Temperature: &temp,
	})
	if err != nil {
		return model.Valuation{}, err
	}

	return parseValuation(response)
}

var (
	valuePattern      = regexp.MustCompile(`Estimated Value: \$([0-9,]+)`)
	confidencePattern = regexp.MustCompile(`Confidence Score: (\d+)%`)
	analysisPattern   = regexp.MustCompile(`(?s)Analysis: (.+)$`)
)

// parseValuation extracts the structured fields from the model reply.
// Missing individual fields fall back to conservative defaults; a reply
// with neither a value nor a confidence is treated as unparseable.
func parseValuation(response string) (model.Valuation, error) {
	valueMatch := valuePattern.FindStringSubmatch(response)
	confMatch := confidencePattern.FindStringSubmatch(response)
	if valueMatch == nil && confMatch == nil {
		return model.Valuation{}, eris.Errorf("valuation: unparseable response: %.120s", response)
	}

	out := model.Valuation{
		EstimatedValue:   500,
		ConfidenceScore:  60,
		DetailedAnalysis: "Analysis not available",
	}
	if valueMatch != nil {
		if n, err := strconv.Atoi(strings.ReplaceAll(valueMatch[1], ",", "")); err == nil {
			out.EstimatedValue = n
		}
	}
	if confMatch != nil {
		if n, err := strconv.Atoi(confMatch[1]); err == nil {
			out.ConfidenceScore = n
		}
	}
	if m := analysisPattern.FindStringSubmatch(response); m != nil {
		out.DetailedAnalysis = strings.TrimSpace(m[1])
	}
	return out, nil
}
