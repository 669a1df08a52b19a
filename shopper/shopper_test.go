package shopper

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGenerator struct {
	text   string
	err    error
	prompt string
}

func (f *fakeGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	f.prompt = prompt
	return f.text, f.err
}

func TestSuggest_ParsesAndPads(t *testing.T) {
	gen := &fakeGenerator{text: "Sure! Here you go:\n```json\n" +
		`[{"company":"Boat","model":"Rockerz 450","price":"₹1,499","features":"Bluetooth, 15h"},` +
		`{"company":"JBL","model":"Tune 510BT","price":"₹2,999"}]` + "\n```"}
	s := New(gen)

	out, err := s.Suggest(context.Background(), "  budget headphones ")
	require.NoError(t, err)
	require.Len(t, out, MinSuggestions)
	assert.Equal(t, "Boat", out[0].Company)
	assert.Equal(t, "Bluetooth, 15h", out[0].Features)
	assert.Equal(t, "Tune 510BT", out[1].Model)
	for _, p := range out[2:] {
		assert.Equal(t, Placeholder, p)
	}
	assert.Contains(t, gen.prompt, `"budget headphones"`)
}

func TestParse_KeepsLongLists(t *testing.T) {
	raw := `[{"company":"a"},{"company":"b"},{"company":"c"},{"company":"d"},{"company":"e"},{"company":"f"}]`
	out, err := Parse(raw)
	require.NoError(t, err)
	assert.Len(t, out, 6)
}

func TestParse_Invalid(t *testing.T) {
	for _, text := range []string{"", "no json here", "] backwards [", `[{"company": }]`} {
		_, err := Parse(text)
		assert.ErrorIs(t, err, ErrInvalidResponse, text)
	}
}

func TestSuggest_Errors(t *testing.T) {
	ctx := context.Background()

	_, err := New(&fakeGenerator{}).Suggest(ctx, "   ")
	assert.ErrorIs(t, err, ErrEmptyQuery)

	_, err = New(nil).Suggest(ctx, "phones")
	assert.ErrorIs(t, err, ErrNotConfigured)

	boom := errors.New("quota exceeded")
	_, err = New(&fakeGenerator{err: boom}).Suggest(ctx, "phones")
	assert.ErrorIs(t, err, boom)
}

func TestNewGemini_RequiresKey(t *testing.T) {
	_, err := NewGemini(context.Background(), "", "gemini-2.0-flash")
	assert.ErrorIs(t, err, ErrNotConfigured)
}
