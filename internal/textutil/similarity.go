package textutil

// CosineSimilarity computes the cosine similarity between two fingerprints.
// Returns 0 if either fingerprint is nil or has zero norm.
func CosineSimilarity(a, b *Fingerprint) float64 {
	if a == nil || b == nil || a.norm == 0 || b.norm == 0 {
		return 0
	}
	var dot float64
	for token, count := range a.tokens {
		if other, ok := b.tokens[token]; ok {
			dot += count * other
		}
	}
	if dot == 0 {
		return 0
	}
	sim := dot / (a.norm * b.norm)
	if sim > 1 {
		// Rounding can push identical vectors a hair above one.
		sim = 1
	}
	return sim
}

// BestSimilar scores query against every entry of candidates using IDF
// weights computed over the candidates themselves. It returns the index of the
// highest scoring candidate (first one on ties) and its score, or -1 and 0
// when nothing shares a token with the query.
func BestSimilar(query string, candidates []string) (int, float64) {
	queryFP := NewFingerprint(query)
	if queryFP == nil || len(candidates) == 0 {
		return -1, 0
	}
	corpus := NewCorpus()
	prints := make([]*Fingerprint, len(candidates))
	for i, candidate := range candidates {
		prints[i] = NewFingerprint(candidate)
		corpus.Add(prints[i])
	}
	idf := corpus.IDF()
	weightedQuery := queryFP.WithIDF(idf)

	best, bestScore := -1, 0.0
	for i, fp := range prints {
		score := CosineSimilarity(weightedQuery, fp.WithIDF(idf))
		if score > bestScore {
			best, bestScore = i, score
		}
	}
	return best, bestScore
}
