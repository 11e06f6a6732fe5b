package registry

import (
	"crypto/rand"
	"errors"
	"math/big"
)

// Match ids are short enough to read out loud.
const (
	CodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	CodeLength   = 6
)

var errEmptyAlphabet = errors.New("code alphabet is empty")

// CodeGenerator returns a func drawing length symbols from alphabet with
// crypto/rand.
func CodeGenerator(alphabet string, length int) func() (string, error) {
	max := big.NewInt(int64(len(alphabet)))
	return func() (string, error) {
		if alphabet == "" {
			return "", errEmptyAlphabet
		}
		code := make([]byte, length)
		for i := range code {
			num, err := rand.Int(rand.Reader, max)
			if err != nil {
				return "", err
			}
			code[i] = alphabet[num.Int64()]
		}
		return string(code), nil
	}
}
