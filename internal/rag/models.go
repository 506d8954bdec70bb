package rag

// Chunk is one indexed piece of a source document.
type Chunk struct {
	ID          string `json:"id"`
	Content     string `json:"content"`
	Source      string `json:"source"`
	FileName    string `json:"fileName"`
	ChunkIndex  int    `json:"chunkIndex"`
	TotalChunks int    `json:"totalChunks"`
}

// SearchResult is a retrieved chunk with its similarity score. Score is
// 1 - distance in cosine space, so higher is closer.
type SearchResult struct {
	Chunk Chunk   `json:"chunk"`
	Score float32 `json:"score"`
	Rank  int     `json:"rank"`
}

// Answer is what the pipeline returns for a question.
type Answer struct {
	Answer        string         `json:"answer"`
	Sources       []string       `json:"sources"`
	Query         string         `json:"query"`
	Results       []SearchResult `json:"searchResults,omitempty"`
	LLMInfo       string         `json:"llmInfo,omitempty"`
	EmbeddingInfo string         `json:"embeddingInfo,omitempty"`
}

// FileResult records the outcome of ingesting a single file.
type FileResult struct {
	File   string `json:"file"`
	Chunks int    `json:"chunks,omitempty"`
	Error  string `json:"error,omitempty"`
}

// AddResult aggregates a batch ingestion.
type AddResult struct {
	Success     []FileResult `json:"success"`
	Failed      []FileResult `json:"failed"`
	TotalChunks int          `json:"totalChunks"`
}

// Stats describes the current state of the pipeline.
type Stats struct {
	CollectionName string `json:"collectionName"`
	TotalChunks    int    `json:"totalChunks"`
	StoreType      string `json:"storeType"`
	LLMInfo        string `json:"llmInfo"`
	EmbeddingInfo  string `json:"embeddingInfo"`
}
