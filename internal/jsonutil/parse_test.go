package jsonutil

import (
	"testing"

	"github.com/fpang/idea-studio/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Name string `json:"name"`
}

func TestStripMarkdownFences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"no fences", `{"a":1}`, `{"a":1}`},
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"bare fence", "```\n[1,2]\n```", `[1,2]`},
		{"too short", "```{}```", "```{}```"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripMarkdownFences(tt.in))
		})
	}
}

func TestExtractJSON(t *testing.T) {
	got, err := ExtractJSON(`Sure! [{"name":"a"}] hope that helps`)
	require.NoError(t, err)
	assert.Equal(t, `[{"name":"a"}]`, got)

	got, err = ExtractJSON(`prefix {"list":[1]} suffix`)
	require.NoError(t, err)
	assert.Equal(t, `{"list":[1]}`, got)

	_, err = ExtractJSON("no json here")
	assert.ErrorIs(t, err, domain.ErrMalformedPayload)
}

func TestParseJSON(t *testing.T) {
	got, err := ParseJSON[payload]("```json\n{\"name\":\"studio\"}\n```")
	require.NoError(t, err)
	assert.Equal(t, "studio", got.Name)

	_, err = ParseJSON[payload](`{"name": broken}`)
	assert.ErrorIs(t, err, domain.ErrMalformedPayload)

	_, err = ParseJSON[payload](`{"name": 5}`)
	assert.ErrorIs(t, err, domain.ErrMalformedPayload)
}

func TestDecodeStrict(t *testing.T) {
	_, err := DecodeStrict[payload]([]byte(`{"name":"a","extra":1}`))
	assert.Error(t, err)

	got, err := DecodeStrict[payload]([]byte(`{"name":"a"}`))
	require.NoError(t, err)
	assert.Equal(t, "a", got.Name)
}
