package domain

// RetrievalResult is a single similarity-search hit. Ephemeral: produced per
// query and never persisted.
type RetrievalResult struct {
	// ChunkID is the matched chunk.
	ChunkID string

	// DocumentID is the chunk's parent document.
	DocumentID string

	// Sequence is the chunk's position within the document, used for
	// deterministic tie-breaking on equal scores.
	Sequence int

	// Text is the chunk content, carried so answer synthesis does not
	// need a second store round trip.
	Text string

	// Score is the similarity score, higher is better.
	Score float64
}
