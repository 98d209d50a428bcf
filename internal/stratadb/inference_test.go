package stratadb

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenize_ByteLevel(t *testing.T) {
	s := newStore(t)

	out := mustExec(t, s, Tokenize{Model: "m", Text: "Hi"}).(TokenIds)
	assert.Equal(t, []uint32{'H', 'i'}, out.IDs)
	assert.Equal(t, uint64(2), out.Count)
	assert.Equal(t, "m", out.Model)

	// Multi-byte runes tokenize per byte.
	utf := mustExec(t, s, Tokenize{Model: "m", Text: "é"}).(TokenIds)
	assert.Equal(t, uint64(2), utf.Count)
}

func TestDetokenize_RoundTripAndVocabulary(t *testing.T) {
	s := newStore(t)

	toks := mustExec(t, s, Tokenize{Model: "m", Text: "hello é"}).(TokenIds)
	out := mustExec(t, s, Detokenize{Model: "m", IDs: toks.IDs}).(Text)
	assert.Equal(t, "hello é", out.Text)

	_, err := s.Execute(Detokenize{Model: "m", IDs: []uint32{300}})
	require.Error(t, err)
	assert.Equal(t, CodeInvalidArgument, err.(*StoreError).Code)
}

func TestGenerate_WithoutEndpointFails(t *testing.T) {
	s := newStore(t)
	_, err := s.Execute(Generate{Model: "m", Prompt: "hi"})
	require.Error(t, err)
	assert.Equal(t, CodeModelNotConfigured, err.(*StoreError).Code)
}

func TestGenerate_CallsCompletionEndpoint(t *testing.T) {
	var gotPath, gotAuth string
	var gotReq generationRequest
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{{"text": "pong", "finish_reason": "stop"}},
			"usage":   map[string]any{"prompt_tokens": 3, "completion_tokens": 1},
		})
	}))
	defer ts.Close()

	s := newStore(t)
	mustExec(t, s, ConfigSetModel{Endpoint: ts.URL, APIKey: "secret"})

	maxTokens := uint64(16)
	topK := uint64(40)
	topP := 0.9
	out := mustExec(t, s, Generate{
		Model: "tiny", Prompt: "ping", MaxTokens: &maxTokens,
		TopK: &topK, TopP: &topP,
		StopTokens: []uint32{'\n'},
	}).(Generated)

	assert.Equal(t, "/v1/completions", gotPath)
	assert.Equal(t, "Bearer secret", gotAuth)
	assert.Equal(t, "tiny", gotReq.Model)
	assert.Equal(t, "ping", gotReq.Prompt)
	require.NotNil(t, gotReq.TopK)
	assert.Equal(t, uint64(40), *gotReq.TopK)
	require.NotNil(t, gotReq.TopP)
	assert.Equal(t, 0.9, *gotReq.TopP)
	assert.Equal(t, []string{"\n"}, gotReq.Stop)

	assert.Equal(t, "pong", out.Result.Text)
	assert.Equal(t, "stop", out.Result.StopReason)
	assert.Equal(t, uint64(3), out.Result.PromptTokens)
	assert.Equal(t, uint64(1), out.Result.CompletionTokens)
	assert.Equal(t, "tiny", out.Result.Model)

	// The model now counts as loaded and can be unloaded exactly once.
	assert.Equal(t, BoolOut{Value: true}, mustExec(t, s, GenerateUnload{Model: "tiny"}))
	assert.Equal(t, BoolOut{Value: false}, mustExec(t, s, GenerateUnload{Model: "tiny"}))
}

func TestGenerate_EndpointErrorsSurfaceAsIO(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "model overloaded", http.StatusServiceUnavailable)
	}))
	defer ts.Close()

	s := newStore(t)
	mustExec(t, s, ConfigSetModel{Endpoint: ts.URL})

	_, err := s.Execute(Generate{Model: "m", Prompt: "hi"})
	require.Error(t, err)
	se := err.(*StoreError)
	assert.Equal(t, CodeIO, se.Code)
	assert.Contains(t, se.Message, "model overloaded")
}

func TestModelsList_RegistryAndLocal(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(filepath.Join(dir, "strata.db"), Options{ModelsDir: filepath.Join(dir, "models")})
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	out := mustExec(t, s, ModelsList{}).(ModelsListOut)
	require.NotEmpty(t, out.Models)
	for _, m := range out.Models {
		assert.False(t, m.IsLocal, "fresh store has no local models")
		assert.NotEmpty(t, m.ModelName)
		assert.NotEmpty(t, m.Task)
	}

	local := mustExec(t, s, ModelsLocal{}).(ModelsListOut)
	assert.Empty(t, local.Models)
}

func TestModelsPull_UnknownModelFails(t *testing.T) {
	s := newStore(t)
	_, err := s.Execute(ModelsPull{ModelName: "no-such-model"})
	require.Error(t, err)
	assert.Equal(t, CodeModelNotFound, err.(*StoreError).Code)
}
