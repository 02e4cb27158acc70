package gemini

import (
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// blocked reports an empty or filtered response.
func blocked(resp *genai.GenerateContentResponse) error {
	if resp == nil {
		return fmt.Errorf("empty response")
	}
	if fb := resp.PromptFeedback; fb != nil && fb.BlockReason != "" {
		if fb.BlockReasonMessage != "" {
			return fmt.Errorf("prompt blocked (%s): %s", fb.BlockReason, fb.BlockReasonMessage)
		}
		return fmt.Errorf("prompt blocked (%s)", fb.BlockReason)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0] == nil {
		return fmt.Errorf("response has no candidates")
	}
	cand := resp.Candidates[0]
	switch cand.FinishReason {
	case genai.FinishReasonSafety, genai.FinishReasonProhibitedContent, genai.FinishReasonImageSafety,
		genai.FinishReasonRecitation, genai.FinishReasonBlocklist, genai.FinishReasonSPII:
		return fmt.Errorf("response blocked (%s)", cand.FinishReason)
	}
	if cand.Content == nil || len(cand.Content.Parts) == 0 {
		return fmt.Errorf("response has no content (finish reason %q)", cand.FinishReason)
	}
	return nil
}

// responseText joins the non-thought text parts of the first candidate.
func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if err := blocked(resp); err != nil {
		return "", err
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil && part.Text != "" && !part.Thought {
			b.WriteString(part.Text)
		}
	}
	text := strings.TrimSpace(b.String())
	if text == "" {
		return "", fmt.Errorf("response has no text")
	}
	return text, nil
}

// decodeJSON decodes a JSON response, tolerating a Markdown code fence
// around it.
func decodeJSON(text string, v any) error {
	text = stripFence(text)
	if err := json.Unmarshal([]byte(text), v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func stripFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
