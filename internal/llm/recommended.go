package llm

// ModelSpec summarizes a model worth recommending for a backend.
type ModelSpec struct {
	Name    string
	Context int
	Note    string
}

var recommendedLLMs = map[string][]ModelSpec{
	"openai": {
		{Name: "gpt-3.5-turbo", Context: 4096, Note: "fast, low cost"},
		{Name: "gpt-4", Context: 8192, Note: "high quality, high cost"},
		{Name: "gpt-4-turbo", Context: 128000, Note: "large context"},
	},
	"ollama": {
		{Name: "llama3.2", Context: 128000, Note: "3B, good default"},
		{Name: "llama3.1", Context: 128000, Note: "8B"},
		{Name: "qwen2.5", Context: 32768, Note: "3B, fast"},
		{Name: "gemma2", Context: 8192, Note: "2B, fast"},
		{Name: "phi3", Context: 128000, Note: "3.8B, fast"},
	},
}

var recommendedEmbeddings = map[string][]ModelSpec{
	"openai": {
		{Name: "text-embedding-3-small", Context: 1536, Note: "low cost"},
		{Name: "text-embedding-3-large", Context: 3072, Note: "best quality"},
	},
	"ollama": {
		{Name: "mxbai-embed-large", Context: 1024, Note: "good default"},
		{Name: "snowflake-arctic-embed", Context: 1024, Note: "retrieval tuned"},
	},
}

// RecommendedLLMs lists suggested chat models for a backend type.
func RecommendedLLMs(llmType string) []ModelSpec {
	return recommendedLLMs[llmType]
}

// RecommendedEmbeddings lists suggested embedding models for a backend
// type.
func RecommendedEmbeddings(embeddingType string) []ModelSpec {
	return recommendedEmbeddings[embeddingType]
}
