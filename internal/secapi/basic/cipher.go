package basic

import (
	"crypto/rand"
	"crypto/rc4"
	"encoding/json"
	"errors"
	"fmt"

	"golang.org/x/crypto/chacha20"

	"alchemy/internal/secapi"
)

const (
	saltSize       = 32
	legacySaltSize = 16
)

// protectedData содержимое хранилища: тип -> id -> значение
type protectedData map[string]map[string]json.RawMessage

// xorCipher повторяющийся XOR-пад от идентификатора машины.
// Пустой пад оставляет данные как есть.
type xorCipher struct {
	pad  []byte
	head int
}

func newXORCipher(pad []byte) *xorCipher {
	return &xorCipher{pad: pad}
}

func (c *xorCipher) apply(buf []byte) {
	if len(c.pad) == 0 {
		return
	}
	for i := range buf {
		buf[i] ^= c.pad[c.head]
		c.head = (c.head + 1) % len(c.pad)
	}
}

// generateRandomBytes генерирует криптографически безопасные случайные байты
func generateRandomBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return nil, fmt.Errorf("ошибка генерации случайных байт: %w", err)
	}
	return b, nil
}

// clearMemory затирает буфер с открытыми данными
func clearMemory(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// encodeProtectedData шифрует документ: заголовок из соли, замаскированной
// XOR-падом, и тело ChaCha20 с солью в качестве ключа
func encodeProtectedData(doc, machineID []byte) ([]byte, error) {
	salt, err := generateRandomBytes(saltSize)
	if err != nil {
		return nil, err
	}

	body := make([]byte, len(doc))
	if err := chachaXOR(salt, body, doc); err != nil {
		return nil, err
	}

	header := append([]byte(nil), salt...)
	newXORCipher(machineID).apply(header)

	return append(header, body...), nil
}

// decodeProtectedData расшифровывает файл хранилища текущим форматом,
// а при неудаче пробует старый формат с RC4
func decodeProtectedData(raw, machineID []byte) (protectedData, error) {
	if len(raw) < saltSize {
		return nil, &secapi.ProtectedDataError{Kind: secapi.FailureTooShort}
	}

	data, err := decodeCurrent(raw, machineID)
	if err == nil {
		return data, nil
	}

	data, legacyErr := decodeLegacy(raw, machineID)
	if legacyErr == nil {
		return data, nil
	}

	return nil, &secapi.ProtectedDataError{
		Kind: secapi.FailureLegacyParse,
		Err:  errors.Join(err, legacyErr),
	}
}

func decodeCurrent(raw, machineID []byte) (protectedData, error) {
	salt := append([]byte(nil), raw[:saltSize]...)
	newXORCipher(machineID).apply(salt)

	doc := make([]byte, len(raw)-saltSize)
	if err := chachaXOR(salt, doc, raw[saltSize:]); err != nil {
		return nil, err
	}
	defer clearMemory(doc)

	return parseProtectedData(doc)
}

func decodeLegacy(raw, machineID []byte) (protectedData, error) {
	salt := append([]byte(nil), raw[:legacySaltSize]...)
	newXORCipher(machineID).apply(salt)

	c, err := rc4.NewCipher(salt)
	if err != nil {
		return nil, fmt.Errorf("ошибка инициализации rc4: %w", err)
	}

	doc := make([]byte, len(raw)-legacySaltSize)
	c.XORKeyStream(doc, raw[legacySaltSize:])
	defer clearMemory(doc)

	return parseProtectedData(doc)
}

func chachaXOR(key, dst, src []byte) error {
	nonce := make([]byte, chacha20.NonceSize)
	c, err := chacha20.NewUnauthenticatedCipher(key, nonce)
	if err != nil {
		return fmt.Errorf("ошибка инициализации chacha20: %w", err)
	}
	c.XORKeyStream(dst, src)
	return nil
}

func parseProtectedData(doc []byte) (protectedData, error) {
	var data protectedData
	if err := json.Unmarshal(doc, &data); err != nil {
		return nil, &secapi.ProtectedDataError{Kind: secapi.FailureParse, Err: err}
	}
	if data == nil {
		data = make(protectedData)
	}
	return data, nil
}
