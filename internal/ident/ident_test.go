package ident

// Тесты идентичности (internal/ident/ident.go).
//
// Проверяем:
//  - формат слага: длина, алфавит;
//  - детерминизм и обратимость ключа дедупликации;
//  - независимость ключа от deep-ссылки (ключ строится только из URL).

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewMessageID_Format(t *testing.T) {
	seen := make(map[string]struct{})

	for i := 0; i < 1000; i++ {
		id, err := NewMessageID()
		require.NoError(t, err)
		require.Len(t, id, slugLength)

		for _, r := range id {
			require.True(t, strings.ContainsRune(slugAlphabet, r),
				"slug %q contains rune %q outside the alphabet", id, r)
		}

		seen[id] = struct{}{}
	}

	// 1000 слагов из 33^8 пространства обязаны быть различны.
	require.Len(t, seen, 1000)
}

func TestSourceKey_DeterministicRoundTrip(t *testing.T) {
	const url = "https://www.sofiyskavoda.bg/avarii/12345"

	k1 := SourceKey(url)
	k2 := SourceKey(url)
	require.Equal(t, k1, k2)

	back, err := DecodeSourceKey(k1)
	require.NoError(t, err)
	require.Equal(t, url, back)
}

func TestSourceKey_CyrillicURL(t *testing.T) {
	const url = "https://example.bg/съобщения/ул-оборище"

	back, err := DecodeSourceKey(SourceKey(url))
	require.NoError(t, err)
	require.Equal(t, url, back)
}

func TestDecodeSourceKey_Invalid(t *testing.T) {
	_, err := DecodeSourceKey("%%%not-base64%%%")
	require.Error(t, err)
}
