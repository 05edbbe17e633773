package knowledge

import (
	"fmt"
	"strings"
)

// SplitKnowledge parses line-oriented Q:/A: knowledge text into chunks.
//
// A `Q:` line starts a new pair, an `A:` line starts (or restarts) the answer
// for the current pair, and any other non-empty line while an answer is open
// is a continuation joined with a space. Blank lines are skipped and never
// terminate a continuation. Text before the first `Q:` line is discarded.
//
// A pair is emitted only when it has both a non-empty question and a
// non-empty joined answer; incomplete fragments are silently dropped. This is
// intentional: malformed entries vanish rather than failing ingestion.
//
// Ids are positional (`kb_chunk_0`, `kb_chunk_1`, ...) and stable for a given
// input, which makes re-ingestion idempotent at the chunk-id level.
func SplitKnowledge(content string) []Chunk {
	var chunks []Chunk
	var question string
	var answer []string

	flush := func() {
		if question == "" || len(answer) == 0 {
			return
		}
		text := strings.TrimSpace(strings.Join(answer, " "))
		if text == "" {
			return
		}
		chunks = append(chunks, Chunk{
			ID:       fmt.Sprintf("kb_chunk_%d", len(chunks)),
			Question: question,
			Answer:   text,
			Text:     question + " " + text,
		})
	}

	for _, line := range strings.Split(strings.TrimSpace(content), "\n") {
		line = strings.TrimSpace(line)
		switch {
		case line == "":
			continue
		case strings.HasPrefix(line, "Q:"):
			flush()
			question = strings.TrimSpace(line[2:])
			answer = nil
		case strings.HasPrefix(line, "A:"):
			answer = []string{strings.TrimSpace(line[2:])}
		case len(answer) > 0:
			answer = append(answer, line)
		}
	}
	flush()

	return chunks
}
