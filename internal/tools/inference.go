package tools

import (
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/strata-ai-labs/strata-mcp/internal/convert"
	"github.com/strata-ai-labs/strata-mcp/internal/session"
	"github.com/strata-ai-labs/strata-mcp/internal/stratadb"
)

func inferenceTools() []Tool {
	return []Tool{
		{
			Def: mcp.NewTool("strata_generate",
				mcp.WithDescription("Generate text via the configured endpoint. Requires a model endpoint set with strata_configure_model. Returns text, stop_reason, prompt_tokens, completion_tokens, and model name."),
				mcp.WithString("model", mcp.Required()),
				mcp.WithString("prompt", mcp.Required()),
				mcp.WithNumber("max_tokens"),
				mcp.WithNumber("temperature"),
				mcp.WithNumber("top_k"),
				mcp.WithNumber("top_p"),
				mcp.WithNumber("seed"),
				mcp.WithArray("stop_tokens", mcp.Items(map[string]any{"type": "number"})),
			),
			Handler: inferenceGenerate,
		},
		{
			Def: mcp.NewTool("strata_tokenize",
				mcp.WithDescription("Tokenize text into token IDs. Returns ids, count, and model name."),
				mcp.WithString("model", mcp.Required()),
				mcp.WithString("text", mcp.Required()),
				mcp.WithBoolean("add_special_tokens"),
			),
			Handler: inferenceTokenize,
		},
		{
			Def: mcp.NewTool("strata_detokenize",
				mcp.WithDescription("Convert token IDs back to text. Returns the decoded text string."),
				mcp.WithString("model", mcp.Required()),
				mcp.WithArray("ids", mcp.Required(), mcp.Items(map[string]any{"type": "number"})),
			),
			Handler: inferenceDetokenize,
		},
		{
			Def: mcp.NewTool("strata_generate_unload",
				mcp.WithDescription("Unload a model's resources. Returns true if the model was loaded and is now unloaded."),
				mcp.WithString("model", mcp.Required()),
			),
			Handler: inferenceUnload,
		},
	}
}

func inferenceGenerate(s *session.Session, args map[string]any) (any, error) {
	model, err := convert.GetStringArg(args, "model")
	if err != nil {
		return nil, err
	}
	prompt, err := convert.GetStringArg(args, "prompt")
	if err != nil {
		return nil, err
	}
	maxTokens, err := convert.GetOptionalU64(args, "max_tokens")
	if err != nil {
		return nil, err
	}
	temperature, err := convert.GetOptionalF64(args, "temperature")
	if err != nil {
		return nil, err
	}
	topK, err := convert.GetOptionalU64(args, "top_k")
	if err != nil {
		return nil, err
	}
	topP, err := convert.GetOptionalF64(args, "top_p")
	if err != nil {
		return nil, err
	}
	seed, err := convert.GetOptionalU64(args, "seed")
	if err != nil {
		return nil, err
	}
	stopTokens, err := convert.GetOptionalU32Array(args, "stop_tokens")
	if err != nil {
		return nil, err
	}

	out, err := s.Execute(stratadb.Generate{
		Model:       model,
		Prompt:      prompt,
		MaxTokens:   maxTokens,
		Temperature: temperature,
		TopK:        topK,
		TopP:        topP,
		Seed:        seed,
		StopTokens:  stopTokens,
	})
	if err != nil {
		return nil, err
	}
	return convert.OutputToJSON(out)
}

func inferenceTokenize(s *session.Session, args map[string]any) (any, error) {
	model, err := convert.GetStringArg(args, "model")
	if err != nil {
		return nil, err
	}
	text, err := convert.GetStringArg(args, "text")
	if err != nil {
		return nil, err
	}
	cmd := stratadb.Tokenize{Model: model, Text: text}
	if _, ok := args["add_special_tokens"]; ok {
		v := convert.GetOptionalBool(args, "add_special_tokens", false)
		cmd.AddSpecialTokens = &v
	}
	out, err := s.Execute(cmd)
	if err != nil {
		return nil, err
	}
	return convert.OutputToJSON(out)
}

func inferenceDetokenize(s *session.Session, args map[string]any) (any, error) {
	model, err := convert.GetStringArg(args, "model")
	if err != nil {
		return nil, err
	}
	ids, err := convert.GetU32ArrayArg(args, "ids")
	if err != nil {
		return nil, err
	}
	out, err := s.Execute(stratadb.Detokenize{Model: model, IDs: ids})
	if err != nil {
		return nil, err
	}
	return convert.OutputToJSON(out)
}

func inferenceUnload(s *session.Session, args map[string]any) (any, error) {
	model, err := convert.GetStringArg(args, "model")
	if err != nil {
		return nil, err
	}
	out, err := s.Execute(stratadb.GenerateUnload{Model: model})
	if err != nil {
		return nil, err
	}
	return convert.OutputToJSON(out)
}
