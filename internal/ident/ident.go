// ident отвечает за идентичность сообщений: короткие слаги-идентификаторы
// и детерминированные ключи дедупликации источников.
package ident

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
)

// Алфавит слага: латиница в нижнем регистре и цифры без визуально
// неоднозначных символов (l, 0, 1). Слаг попадает в URL сообщения.
const (
	slugAlphabet = "abcdefghijkmnopqrstuvwxyz23456789"
	slugLength   = 8
)

// MaxIDAttempts — предел повторных генераций при коллизии _id.
// Коллизии при таком алфавите астрономически редки; исчерпание лимита
// сигнализирует о системной проблеме, а не о невезении.
const MaxIDAttempts = 5

// ErrIDExhausted — не удалось вставить сообщение за MaxIDAttempts попыток.
var ErrIDExhausted = errors.New("message id attempts exhausted")

// NewMessageID генерирует случайный слаг фиксированной длины.
// Уникальность обеспечивается атомарной вставкой по _id на стороне хранилища,
// а не самим генератором.
func NewMessageID() (string, error) {
	const op = "ident/ident/NewMessageID"

	buf := make([]byte, slugLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	out := make([]byte, slugLength)
	for i, b := range buf {
		out[i] = slugAlphabet[int(b)%len(slugAlphabet)]
	}

	return string(out), nil
}

// SourceKey выводит ключ дедупликации из каноничного URL источника.
// Кодировка детерминирована и обратима; DeepLinkURL в ключе не участвует
// никогда — две копии одного URL с разными deep-ссылками суть одно сообщение.
func SourceKey(url string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(url))
}

// DecodeSourceKey возвращает исходный URL по ключу дедупликации.
func DecodeSourceKey(key string) (string, error) {
	const op = "ident/ident/DecodeSourceKey"

	raw, err := base64.RawURLEncoding.DecodeString(key)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return string(raw), nil
}
