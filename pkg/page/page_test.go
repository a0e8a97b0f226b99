// pkg/page/page_test.go
package page

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stapi/pkg/result"
)

func TestDecodeDefaults(t *testing.T) {
	req, err := Decode(url.Values{})
	require.NoError(t, err)
	assert.Equal(t, DefaultLimit, req.Limit)
	assert.Empty(t, req.Token)
}

func TestDecodeLimitBounds(t *testing.T) {
	for _, tc := range []struct {
		limit string
		ok    bool
		want  int
	}{
		{"1", true, 1},
		{"100", true, 100},
		{"42", true, 42},
		{"0", false, 0},
		{"101", false, 0},
		{"-5", false, 0},
		{"abc", false, 0},
	} {
		req, err := Decode(url.Values{"limit": {tc.limit}})
		if tc.ok {
			require.NoError(t, err, "limit=%s", tc.limit)
			assert.Equal(t, tc.want, req.Limit)
		} else {
			require.Error(t, err, "limit=%s", tc.limit)
			f, isFailure := err.(result.Failure)
			require.True(t, isFailure)
			assert.Equal(t, result.KindInvalidPayload, f.Kind)
		}
	}
}

func TestDecodeTokenOpaque(t *testing.T) {
	tok := "whatever-the-backend-minted=="
	req, err := Decode(url.Values{"token": {tok}})
	require.NoError(t, err)
	assert.Equal(t, tok, req.Token, "token must pass through unchanged")
}

func TestDecodeBody(t *testing.T) {
	req, err := DecodeBody("tok", 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultLimit, req.Limit)
	assert.Equal(t, "tok", req.Token)

	_, err = DecodeBody("", 500)
	require.Error(t, err)
}
