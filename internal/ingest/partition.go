package ingest

// Partition splits documents into ordered chunks of at most chunkSize
// elements. Every chunk except possibly the last is full; concatenating
// the chunks in index order reproduces the input exactly. A non-positive
// chunkSize or an empty input yields no chunks.
func Partition(docs []Document, chunkSize int) []Chunk {
	if chunkSize < 1 || len(docs) == 0 {
		return nil
	}

	chunks := make([]Chunk, 0, (len(docs)+chunkSize-1)/chunkSize)
	for start := 0; start < len(docs); start += chunkSize {
		end := start + chunkSize
		if end > len(docs) {
			end = len(docs)
		}
		chunks = append(chunks, Chunk{
			Index:     len(chunks),
			Documents: docs[start:end],
		})
	}
	return chunks
}
