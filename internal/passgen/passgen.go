// Пакет passgen генерирует случайные пароли для подстановки в форму
// редактирования записи.
package passgen

import (
	"crypto/rand"
	"errors"
	"math/big"
	"strings"
)

// Наборы символов для генерации.
const (
	charsLower   = "abcdefghijklmnopqrstuvwxyz"
	charsUpper   = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	charsDigits  = "0123456789"
	charsSymbols = "!@#$%^&*-_=+?"
)

// Options определяют состав генерируемого пароля.
type Options struct {
	Length  int
	Upper   bool // Включать заглавные буквы
	Digits  bool // Включать цифры
	Symbols bool // Включать спецсимволы
}

// DefaultOptions возвращают состав по умолчанию: буквы обоих регистров,
// цифры и спецсимволы.
func DefaultOptions(length int) Options {
	return Options{Length: length, Upper: true, Digits: true, Symbols: true}
}

// Generate возвращает случайный пароль заданного состава.
// Источник случайности криптографический.
func Generate(opts Options) (string, error) {
	if opts.Length <= 0 {
		return "", errors.New("длина пароля должна быть положительной")
	}

	alphabet := charsLower
	if opts.Upper {
		alphabet += charsUpper
	}
	if opts.Digits {
		alphabet += charsDigits
	}
	if opts.Symbols {
		alphabet += charsSymbols
	}

	var b strings.Builder
	b.Grow(opts.Length)
	max := big.NewInt(int64(len(alphabet)))
	for i := 0; i < opts.Length; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b.WriteByte(alphabet[n.Int64()])
	}
	return b.String(), nil
}
