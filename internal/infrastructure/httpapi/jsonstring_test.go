package httpapi

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnquoteJSONMatchesEncodingJSON(t *testing.T) {
	t.Parallel()

	inputs := []string{
		`""`,
		`"plain text"`,
		`"quote \" backslash \\ slash \/"`,
		`"controls \b\f\n\r\t"`,
		`"café 中"`,
		`"emoji 😀"`,
		`"raw utf-8 é 😀"`,
	}

	for _, in := range inputs {
		var want string
		require.NoError(t, json.Unmarshal([]byte(in), &want), in)

		got, err := unquoteJSON([]byte(in))
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
}

func TestUnquoteJSONKeepsUnpairedSurrogates(t *testing.T) {
	t.Parallel()

	got, err := unquoteJSON([]byte(`"a\ud800b"`))
	require.NoError(t, err)
	assert.Equal(t, "a\xed\xa0\x80b", got)

	got, err = unquoteJSON([]byte(`"\udfff"`))
	require.NoError(t, err)
	assert.Equal(t, "\xed\xbf\xbf", got)

	got, err = unquoteJSON([]byte(`"\ud800A"`))
	require.NoError(t, err)
	assert.Equal(t, "\xed\xa0\x80A", got)
}

func TestStringField(t *testing.T) {
	t.Parallel()

	v, present, err := stringField(nil)
	require.NoError(t, err)
	assert.False(t, present)
	assert.Empty(t, v)

	_, present, err = stringField(json.RawMessage(`null`))
	require.NoError(t, err)
	assert.False(t, present)

	v, present, err = stringField(json.RawMessage(`"x"`))
	require.NoError(t, err)
	assert.True(t, present)
	assert.Equal(t, "x", v)

	_, _, err = stringField(json.RawMessage(`42`))
	assert.ErrorIs(t, err, errNotString)
}
