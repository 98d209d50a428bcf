package stratadb

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"
)

// generationRequest is the OpenAI-compatible completion request body.
type generationRequest struct {
	Model       string   `json:"model"`
	Prompt      string   `json:"prompt"`
	MaxTokens   *uint64  `json:"max_tokens,omitempty"`
	Temperature *float64 `json:"temperature,omitempty"`
	TopK        *uint64  `json:"top_k,omitempty"`
	TopP        *float64 `json:"top_p,omitempty"`
	Seed        *uint64  `json:"seed,omitempty"`
	Stop        []string `json:"stop,omitempty"`
}

type generationResponse struct {
	Choices []struct {
		Text         string `json:"text"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     uint64 `json:"prompt_tokens"`
		CompletionTokens uint64 `json:"completion_tokens"`
	} `json:"usage"`
}

func (s *Strata) modelConfig() (*ModelConfig, error) {
	raw, ok, err := s.configValue("model")
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, storeErrf(CodeModelNotConfigured,
			"no generation endpoint configured; set one with ConfigSetModel")
	}
	var mc ModelConfig
	if err := json.Unmarshal([]byte(raw), &mc); err != nil {
		return nil, storeErrf(CodeInternal, "corrupt model config: %v", err)
	}
	return &mc, nil
}

func (s *Strata) generate(c Generate) (Output, error) {
	mc, err := s.modelConfig()
	if err != nil {
		return nil, err
	}

	model := c.Model
	if model == "" {
		model = mc.Model
	}
	var stop []string
	if len(c.StopTokens) > 0 {
		text, err := s.detokenizeIDs(c.StopTokens)
		if err != nil {
			return nil, err
		}
		stop = []string{text}
	}
	body, err := json.Marshal(generationRequest{
		Model:       model,
		Prompt:      c.Prompt,
		MaxTokens:   c.MaxTokens,
		Temperature: c.Temperature,
		TopK:        c.TopK,
		TopP:        c.TopP,
		Seed:        c.Seed,
		Stop:        stop,
	})
	if err != nil {
		return nil, storeErrf(CodeInternal, "encode generation request: %v", err)
	}

	timeout := 60 * time.Second
	if mc.TimeoutMs > 0 {
		timeout = time.Duration(mc.TimeoutMs) * time.Millisecond
	}
	client := &http.Client{Timeout: timeout}

	url := strings.TrimSuffix(mc.Endpoint, "/") + "/v1/completions"
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, storeErrf(CodeInvalidArgument, "bad endpoint %q: %v", mc.Endpoint, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if mc.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+mc.APIKey)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, storeErrf(CodeIO, "generation request: %v", err)
	}
	defer resp.Body.Close()
	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 16*1024*1024))
	if err != nil {
		return nil, storeErrf(CodeIO, "read generation response: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, storeErrf(CodeIO, "generation endpoint returned %d: %s",
			resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	var gr generationResponse
	if err := json.Unmarshal(respBody, &gr); err != nil {
		return nil, storeErrf(CodeIO, "bad generation response: %v", err)
	}
	if len(gr.Choices) == 0 {
		return nil, storeErrf(CodeIO, "generation endpoint returned no choices")
	}

	s.loaded[model] = true
	return Generated{Result: GeneratedData{
		Text:             gr.Choices[0].Text,
		StopReason:       gr.Choices[0].FinishReason,
		PromptTokens:     gr.Usage.PromptTokens,
		CompletionTokens: gr.Usage.CompletionTokens,
		Model:            model,
	}}, nil
}

// tokenize is byte-level: every UTF-8 byte is one token id. This keeps
// token accounting exact and model-independent for the local path.
func (s *Strata) tokenize(c Tokenize) (Output, error) {
	ids := make([]uint32, 0, len(c.Text))
	for _, b := range []byte(c.Text) {
		ids = append(ids, uint32(b))
	}
	return TokenIds{IDs: ids, Count: uint64(len(ids)), Model: c.Model}, nil
}

func (s *Strata) detokenizeIDs(ids []uint32) (string, error) {
	buf := make([]byte, 0, len(ids))
	for _, id := range ids {
		if id > 255 {
			return "", storeErrf(CodeInvalidArgument, "token id %d outside byte-level vocabulary", id)
		}
		buf = append(buf, byte(id))
	}
	return string(buf), nil
}

func (s *Strata) detokenize(c Detokenize) (Output, error) {
	text, err := s.detokenizeIDs(c.IDs)
	if err != nil {
		return nil, err
	}
	return Text{Text: text}, nil
}

func (s *Strata) generateUnload(c GenerateUnload) (Output, error) {
	wasLoaded := s.loaded[c.Model]
	delete(s.loaded, c.Model)
	return BoolOut{Value: wasLoaded}, nil
}
