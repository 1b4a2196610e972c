package rank

// NewScorer picks the embedding scorer when an OpenAI key is configured and
// the keyword scorer otherwise. The returned name identifies the backend.
func NewScorer(apiKey, baseURL, model string, stats *Stats) (Scorer, string, error) {
	if apiKey == "" {
		return NewKeywordScorer(stats), BackendKeyword, nil
	}
	e, err := NewOpenAIEmbedder(apiKey, baseURL, model)
	if err != nil {
		return nil, "", err
	}
	return NewEmbeddingScorer(e, stats), e.ModelInfo(), nil
}
