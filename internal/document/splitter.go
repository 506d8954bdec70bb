package document

import (
	"strings"
	"unicode/utf8"
)

// Splitter breaks text into overlapping chunks, preferring paragraph and
// sentence boundaries over hard cuts. Sizes are in bytes.
type Splitter struct {
	ChunkSize    int
	ChunkOverlap int

	separators []string
}

func NewSplitter(chunkSize, chunkOverlap int) *Splitter {
	if chunkSize <= 0 {
		chunkSize = 1000
	}
	if chunkOverlap < 0 || chunkOverlap >= chunkSize {
		chunkOverlap = chunkSize / 5
	}
	return &Splitter{
		ChunkSize:    chunkSize,
		ChunkOverlap: chunkOverlap,
		separators:   []string{"\n\n", "\n", ". ", " "},
	}
}

// Split returns the chunks of text. Every chunk is at most
// ChunkSize+ChunkOverlap bytes, and consecutive chunks share up to
// ChunkOverlap bytes of trailing context.
func (s *Splitter) Split(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	return s.merge(s.split(text, 0))
}

// split recursively breaks text into pieces no longer than ChunkSize,
// walking down the separator list before falling back to a hard cut.
func (s *Splitter) split(text string, depth int) []string {
	if len(text) <= s.ChunkSize {
		return []string{text}
	}
	if depth >= len(s.separators) {
		return s.hardCut(text)
	}

	parts := strings.SplitAfter(text, s.separators[depth])
	if len(parts) == 1 {
		return s.split(text, depth+1)
	}

	var out []string
	for _, p := range parts {
		if p == "" {
			continue
		}
		if len(p) <= s.ChunkSize {
			out = append(out, p)
		} else {
			out = append(out, s.split(p, depth+1)...)
		}
	}
	return out
}

// hardCut slices text at ChunkSize boundaries without splitting runes.
func (s *Splitter) hardCut(text string) []string {
	var out []string
	for len(text) > s.ChunkSize {
		cut := s.ChunkSize
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
		if cut == 0 {
			break
		}
		out = append(out, text[:cut])
		text = text[cut:]
	}
	if text != "" {
		out = append(out, text)
	}
	return out
}

// merge packs pieces into chunks up to ChunkSize, seeding each new chunk
// with the trailing pieces of the previous one up to ChunkOverlap bytes.
func (s *Splitter) merge(pieces []string) []string {
	var chunks []string
	var buf []string
	bufLen := 0

	emit := func() {
		chunk := strings.TrimSpace(strings.Join(buf, ""))
		if chunk != "" {
			chunks = append(chunks, chunk)
		}
	}

	for _, p := range pieces {
		if bufLen > 0 && bufLen+len(p) > s.ChunkSize {
			emit()

			var tail []string
			tailLen := 0
			for i := len(buf) - 1; i >= 0; i-- {
				if tailLen+len(buf[i]) > s.ChunkOverlap {
					break
				}
				tail = append([]string{buf[i]}, tail...)
				tailLen += len(buf[i])
			}
			buf = tail
			bufLen = tailLen
		}
		buf = append(buf, p)
		bufLen += len(p)
	}

	if bufLen > 0 {
		chunk := strings.TrimSpace(strings.Join(buf, ""))
		// the leftover buffer can be nothing but the overlap tail of the
		// previous chunk; emitting it again would duplicate content
		if chunk != "" && (len(chunks) == 0 || !strings.HasSuffix(chunks[len(chunks)-1], chunk)) {
			chunks = append(chunks, chunk)
		}
	}

	return chunks
}
