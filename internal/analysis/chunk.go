package analysis

// ChunkSize is the maximum number of questions sent to the AI per request.
// Larger batches tend to produce truncated or malformed JSON responses.
const ChunkSize = 20

// chunkQuestions partitions questions into ordered contiguous chunks of at
// most size items. Concatenating the chunks in order reconstructs the input
// exactly once.
func chunkQuestions(questions []string, size int) [][]string {
	if size <= 0 {
		size = ChunkSize
	}
	var chunks [][]string
	for start := 0; start < len(questions); start += size {
		end := start + size
		if end > len(questions) {
			end = len(questions)
		}
		chunks = append(chunks, questions[start:end])
	}
	return chunks
}
