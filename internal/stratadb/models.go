package stratadb

import (
	"io"
	"net/http"
	"os"
	"path/filepath"
)

// modelRegistry is the static catalog of pullable models. Pulled files
// land under Options.ModelsDir named <model>.gguf.
var modelRegistry = []struct {
	Name         string
	Task         string
	Architecture string
	DefaultQuant string
	EmbeddingDim uint64
	URL          string
}{
	{
		Name:         "all-minilm-l6-v2",
		Task:         "embedding",
		Architecture: "bert",
		DefaultQuant: "Q8_0",
		EmbeddingDim: 384,
		URL:          "https://huggingface.co/second-state/All-MiniLM-L6-v2-Embedding-GGUF/resolve/main/all-MiniLM-L6-v2-Q8_0.gguf",
	},
	{
		Name:         "qwen2.5-0.5b-instruct",
		Task:         "generation",
		Architecture: "qwen2",
		DefaultQuant: "Q4_K_M",
		URL:          "https://huggingface.co/Qwen/Qwen2.5-0.5B-Instruct-GGUF/resolve/main/qwen2.5-0.5b-instruct-q4_k_m.gguf",
	},
	{
		Name:         "tinyllama-1.1b-chat",
		Task:         "generation",
		Architecture: "llama",
		DefaultQuant: "Q4_K_M",
		URL:          "https://huggingface.co/TheBloke/TinyLlama-1.1B-Chat-v1.0-GGUF/resolve/main/tinyllama-1.1b-chat-v1.0.Q4_K_M.gguf",
	},
}

func (s *Strata) modelPath(name string) string {
	return filepath.Join(s.opts.ModelsDir, name+".gguf")
}

func (s *Strata) modelsList(localOnly bool) (Output, error) {
	models := []ModelInfo{}
	for _, m := range modelRegistry {
		info := ModelInfo{
			ModelName:    m.Name,
			Task:         m.Task,
			Architecture: m.Architecture,
			DefaultQuant: m.DefaultQuant,
			EmbeddingDim: m.EmbeddingDim,
		}
		if st, err := os.Stat(s.modelPath(m.Name)); err == nil {
			info.IsLocal = true
			info.SizeBytes = uint64(st.Size())
		}
		if localOnly && !info.IsLocal {
			continue
		}
		models = append(models, info)
	}
	return ModelsListOut{Models: models}, nil
}

func (s *Strata) modelsPull(c ModelsPull) (Output, error) {
	var url string
	for _, m := range modelRegistry {
		if m.Name == c.ModelName {
			url = m.URL
			break
		}
	}
	if url == "" {
		return nil, storeErrf(CodeModelNotFound, "model %q is not in the registry", c.ModelName)
	}

	path := s.modelPath(c.ModelName)
	if _, err := os.Stat(path); err == nil {
		return ModelsPulled{ModelName: c.ModelName, Path: path}, nil
	}
	if err := os.MkdirAll(s.opts.ModelsDir, 0o700); err != nil {
		return nil, storeErrf(CodeIO, "create models dir: %v", err)
	}

	resp, err := http.Get(url)
	if err != nil {
		return nil, storeErrf(CodeIO, "download model: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, storeErrf(CodeIO, "model download returned %d", resp.StatusCode)
	}

	// Download to a temp name and rename so a partial pull never looks
	// like a local model.
	tmp, err := os.CreateTemp(s.opts.ModelsDir, c.ModelName+".*.partial")
	if err != nil {
		return nil, storeErrf(CodeIO, "create model file: %v", err)
	}
	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return nil, storeErrf(CodeIO, "write model file: %v", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return nil, storeErrf(CodeIO, "close model file: %v", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return nil, storeErrf(CodeIO, "finalize model file: %v", err)
	}
	return ModelsPulled{ModelName: c.ModelName, Path: path}, nil
}
