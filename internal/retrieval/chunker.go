package retrieval

import (
	"errors"
	"fmt"
)

// ErrInvalidParameter is returned when chunk size and overlap are inconsistent.
var ErrInvalidParameter = errors.New("invalid chunk parameters")

// Chunker splits text into overlapping fixed-size windows measured in runes.
type Chunker struct {
	size    int
	overlap int
}

// NewChunker validates the window parameters: 0 <= overlap < size.
func NewChunker(size, overlap int) (*Chunker, error) {
	if size <= 0 || overlap < 0 || overlap >= size {
		return nil, fmt.Errorf("%w: size=%d overlap=%d", ErrInvalidParameter, size, overlap)
	}
	return &Chunker{size: size, overlap: overlap}, nil
}

// Size returns the window size in runes.
func (c *Chunker) Size() int { return c.size }

// Overlap returns the number of runes shared by consecutive windows.
func (c *Chunker) Overlap() int { return c.overlap }

// Split returns the windows in reading order. Consecutive windows start
// size-overlap runes apart and the last one may be shorter than size.
// Empty text yields no chunks; any other text yields at least one.
func (c *Chunker) Split(text string) []string {
	runes := []rune(text)
	if len(runes) == 0 {
		return []string{}
	}

	step := c.size - c.overlap
	count := 1
	if len(runes) > c.overlap {
		count = (len(runes) - c.overlap + step - 1) / step
	}

	chunks := make([]string, 0, count)
	for i := 0; i < count; i++ {
		start := i * step
		end := start + c.size
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[start:end]))
	}
	return chunks
}

// Chunk is a convenience wrapper around NewChunker and Split.
func Chunk(text string, size, overlap int) ([]string, error) {
	c, err := NewChunker(size, overlap)
	if err != nil {
		return nil, err
	}
	return c.Split(text), nil
}
