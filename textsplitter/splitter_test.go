package textsplitter

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"
)

type SplitterTestSuite struct {
	suite.Suite
}

func TestSplitterTestSuite(t *testing.T) {
	suite.Run(t, new(SplitterTestSuite))
}

func (s *SplitterTestSuite) TestShortTextSingleChunk() {
	splitter := NewSplitter(100, 20, nil, nil)
	chunks := splitter.SplitText("Hello world. This is a test.")
	s.Len(chunks, 1)
	s.Equal("Hello world. This is a test.", chunks[0])
}

func (s *SplitterTestSuite) TestEmptyInput() {
	splitter := NewSplitter(0, 0, nil, nil)
	s.Nil(splitter.SplitText(""))
	s.Nil(splitter.SplitText("   \n\t  "))
}

func (s *SplitterTestSuite) TestChunkSizeBound() {
	splitter := NewSplitter(1000, 200, nil, nil)
	text := strings.Repeat("The quick brown fox jumps over the lazy dog. ", 200)
	chunks := splitter.SplitText(text)
	s.Greater(len(chunks), 1)
	for _, chunk := range chunks {
		s.LessOrEqual(len([]rune(chunk)), 1000)
	}
}

func (s *SplitterTestSuite) TestDeterministic() {
	splitter := NewSplitter(1000, 200, nil, nil)
	text := strings.Repeat("Sentence one is here. Sentence two follows it. ", 150)
	first := splitter.SplitText(text)
	second := splitter.SplitText(text)
	s.Equal(first, second)
}

func (s *SplitterTestSuite) TestConsecutiveChunksOverlap() {
	splitter := NewSplitter(1000, 200, nil, nil)
	text := strings.Repeat("Alpha beta gamma delta epsilon zeta eta theta. ", 120)
	chunks := splitter.SplitText(text)
	s.Greater(len(chunks), 1)
	for i := 1; i < len(chunks); i++ {
		s.True(sharedSuffixPrefix(chunks[i-1], chunks[i]) > 0,
			"chunks %d and %d share no overlapping region", i-1, i)
	}
}

func (s *SplitterTestSuite) TestPrefersWordBoundaries() {
	splitter := NewSplitter(30, 0, nil, nil)
	text := "alpha beta gamma delta epsilon zeta eta theta iota kappa"
	chunks := splitter.SplitText(text)
	s.Greater(len(chunks), 1)
	for _, chunk := range chunks {
		for _, word := range strings.Fields(chunk) {
			s.Contains(text, word, "word %q was severed", word)
		}
	}
}

func (s *SplitterTestSuite) TestUnbrokenTextFallsBackToHardCuts() {
	splitter := NewSplitter(50, 10, nil, nil)
	text := strings.Repeat("x", 400)
	chunks := splitter.SplitText(text)
	s.Greater(len(chunks), 1)
	for _, chunk := range chunks {
		s.LessOrEqual(len(chunk), 50)
	}
}

func (s *SplitterTestSuite) TestWordTokenizerBudget() {
	splitter := NewSplitter(3, 1, NewWordTokenizer(), nil)
	chunks := splitter.SplitText("A B C D E")
	s.Greater(len(chunks), 1)
	for _, chunk := range chunks {
		s.LessOrEqual(len(strings.Fields(chunk)), 3)
	}
}

func (s *SplitterTestSuite) TestEnglishSegmenter() {
	seg, err := NewEnglishSegmenter()
	s.Require().NoError(err)

	sents := seg.Segment("Dr. Smith went home. Then he slept.")
	s.Len(sents, 2)

	splitter := NewSplitter(1000, 200, nil, seg)
	text := strings.Repeat("Dr. Smith examined the patient carefully. The results were normal. ", 40)
	chunks := splitter.SplitText(text)
	s.Greater(len(chunks), 1)
	for _, chunk := range chunks {
		s.LessOrEqual(len([]rune(chunk)), 1000)
	}
}

func (s *SplitterTestSuite) TestTikTokenTokenizer() {
	tok, err := NewTikTokenTokenizer("")
	s.Require().NoError(err)
	s.NotEmpty(tok.Encode("hello world"))
}

// sharedSuffixPrefix returns the length of the longest suffix of a that
// is a prefix of b.
func sharedSuffixPrefix(a, b string) int {
	max := len(a)
	if len(b) < max {
		max = len(b)
	}
	for n := max; n > 0; n-- {
		if strings.HasPrefix(b, a[len(a)-n:]) {
			return n
		}
	}
	return 0
}
