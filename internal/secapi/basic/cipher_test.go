package basic

import (
	"crypto/rc4"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alchemy/internal/secapi"
)

// encodeLegacy builds a store file in the old 16-byte salt RC4 format
func encodeLegacy(t *testing.T, doc, machineID []byte) []byte {
	t.Helper()

	salt, err := generateRandomBytes(legacySaltSize)
	require.NoError(t, err)

	c, err := rc4.NewCipher(salt)
	require.NoError(t, err)
	body := make([]byte, len(doc))
	c.XORKeyStream(body, doc)

	header := append([]byte(nil), salt...)
	newXORCipher(machineID).apply(header)
	return append(header, body...)
}

func TestXORCipher(t *testing.T) {
	pad := []byte{0x01, 0x02, 0x03}
	buf := []byte{0x10, 0x20, 0x30, 0x40, 0x50}

	newXORCipher(pad).apply(buf)
	assert.Equal(t, []byte{0x11, 0x22, 0x33, 0x41, 0x52}, buf)

	newXORCipher(pad).apply(buf)
	assert.Equal(t, []byte{0x10, 0x20, 0x30, 0x40, 0x50}, buf)
}

func TestXORCipher_EmptyPad(t *testing.T) {
	buf := []byte("plain")
	newXORCipher(nil).apply(buf)
	assert.Equal(t, []byte("plain"), buf)
}

func TestEncodeDecode_RoundTrip(t *testing.T) {
	machineID := []byte("0123456789abcdef")
	doc := []byte(`{"credentials":{"agni":[{"identifier":{"type":"account","account_name":"foo"}}]}}`)

	blob, err := encodeProtectedData(doc, machineID)
	require.NoError(t, err)
	assert.Len(t, blob, saltSize+len(doc))
	assert.NotContains(t, string(blob), "credentials")

	data, err := decodeProtectedData(blob, machineID)
	require.NoError(t, err)
	assert.Contains(t, data, "credentials")
	assert.JSONEq(t, `[{"identifier":{"type":"account","account_name":"foo"}}]`, string(data["credentials"]["agni"]))
}

func TestEncode_FreshSalt(t *testing.T) {
	doc := []byte(`{}`)
	a, err := encodeProtectedData(doc, nil)
	require.NoError(t, err)
	b, err := encodeProtectedData(doc, nil)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestDecode_Legacy(t *testing.T) {
	machineID := []byte("legacy-machine")
	doc := []byte(`{"credentials":{"agni":[{"identifier":{"type":"agent","first_name":"Foo","last_name":"Bar"}}]}}`)

	data, err := decodeProtectedData(encodeLegacy(t, doc, machineID), machineID)
	require.NoError(t, err)

	var list []secapi.StoredCredential
	require.NoError(t, json.Unmarshal(data["credentials"]["agni"], &list))
	require.Len(t, list, 1)
	assert.Equal(t, "Foo", list[0].Identifier.FirstName)
}

func TestDecode_TooShort(t *testing.T) {
	_, err := decodeProtectedData(make([]byte, saltSize-1), nil)
	require.Error(t, err)

	var pde *secapi.ProtectedDataError
	require.ErrorAs(t, err, &pde)
	assert.Equal(t, secapi.FailureTooShort, pde.Kind)
}

func TestDecode_Garbage(t *testing.T) {
	garbage, err := generateRandomBytes(128)
	require.NoError(t, err)

	_, err = decodeProtectedData(garbage, []byte("id"))
	require.Error(t, err)
	assert.ErrorIs(t, err, secapi.ErrProtectedData)

	var pde *secapi.ProtectedDataError
	require.ErrorAs(t, err, &pde)
	assert.Equal(t, secapi.FailureLegacyParse, pde.Kind)
}

func TestDecode_WrongMachine(t *testing.T) {
	blob, err := encodeProtectedData([]byte(`{"a":{"b":1}}`), []byte("machine-a"))
	require.NoError(t, err)

	_, err = decodeProtectedData(blob, []byte("machine-b"))
	assert.ErrorIs(t, err, secapi.ErrProtectedData)
}
