package reviews

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"review-harvester/pkg/models"
)

// scriptedRand replays fixed values, cycling when exhausted
type scriptedRand struct {
	values []int
	next   int
}

func (s *scriptedRand) IntN(n int) int {
	v := s.values[s.next%len(s.values)] % n
	s.next++
	return v
}

func (s *scriptedRand) Int64N(n int64) int64 {
	return int64(s.IntN(int(n)))
}

func draft(text string, rating int, images ...string) models.ReviewDraft {
	if images == nil {
		images = []string{}
	}
	return models.ReviewDraft{Text: text, Rating: rating, Images: images}
}

func texts(drafts []models.ReviewDraft) []string {
	out := make([]string, len(drafts))
	for i, d := range drafts {
		out[i] = d.Text
	}
	return out
}

func TestDedupe_FirstOccurrenceWins(t *testing.T) {
	in := []models.ReviewDraft{
		draft("Great product", 5),
		draft("Great product", 2),
	}

	out := Dedupe(in)
	require.Len(t, out, 1)
	assert.Equal(t, 5, out[0].Rating)
}

func TestDedupe_OrderAndCardinality(t *testing.T) {
	in := []models.ReviewDraft{
		draft("b", 1),
		draft("a", 2),
		draft("", 3),
		draft("b", 4),
		draft("", 5),
		draft("c", 1),
		draft("great product", 1),
		draft("Great product", 1),
		draft("a ", 1),
	}

	out := Dedupe(in)
	assert.Equal(t, []string{"b", "a", "", "c", "great product", "Great product", "a "}, texts(out))
	assert.Equal(t, 3, out[2].Rating)
	assert.LessOrEqual(t, len(out), len(in))
}

func TestDedupe_Idempotent(t *testing.T) {
	inputs := [][]models.ReviewDraft{
		nil,
		{},
		{draft("x", 1)},
		{draft("x", 1), draft("x", 2), draft("y", 3), draft("", 0), draft("", 4)},
	}

	for _, in := range inputs {
		once := Dedupe(in)
		assert.Equal(t, once, Dedupe(once))

		distinct := map[string]bool{}
		for _, d := range in {
			distinct[d.Text] = true
		}
		assert.Len(t, once, len(distinct))
	}
}

func TestDedupe_EmptyInput(t *testing.T) {
	assert.Empty(t, Dedupe(nil))
	assert.NotNil(t, Dedupe(nil))
}

func TestGenerateName_ScriptedSource(t *testing.T) {
	r := &scriptedRand{values: []int{0, 1, 2}}
	assert.Equal(t, firstNames[0]+" "+middleNames[1]+" "+lastNames[2], GenerateName(r))
}

func TestGenerateName_UsesPools(t *testing.T) {
	r := &scriptedRand{values: []int{7, 100, 3}}
	parts := strings.SplitN(GenerateName(r), " ", 2)
	require.Len(t, parts, 2)
	assert.Contains(t, firstNames, parts[0])
}

func TestEnrich_PreservesOrderAndFields(t *testing.T) {
	in := []models.ReviewDraft{
		draft("first", 5, "https://ae01.alicdn.com/kf/a.jpg"),
		draft("second", 3),
	}
	r := &scriptedRand{values: []int{0, 0, 0, 1, 1, 1}}

	out := Enrich(in, r)
	require.Len(t, out, 2)

	assert.Equal(t, "first", out[0].Text)
	assert.Equal(t, 5, out[0].Rating)
	assert.Equal(t, []string{"https://ae01.alicdn.com/kf/a.jpg"}, out[0].Images)
	assert.Equal(t, firstNames[0]+" "+middleNames[0]+" "+lastNames[0], out[0].Name)

	assert.Equal(t, "second", out[1].Text)
	assert.Equal(t, firstNames[1]+" "+middleNames[1]+" "+lastNames[1], out[1].Name)

	// drafts stay immutable
	out[0].Images[0] = "changed"
	assert.Equal(t, "https://ae01.alicdn.com/kf/a.jpg", in[0].Images[0])
}

func TestEnrich_Empty(t *testing.T) {
	out := Enrich(nil, &scriptedRand{values: []int{0}})
	assert.Empty(t, out)
	assert.NotNil(t, out)
}
