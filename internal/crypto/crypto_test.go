package crypto

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEncryptor(t *testing.T) *Encryptor {
	t.Helper()
	key, err := GenerateKey()
	require.NoError(t, err)
	enc, err := NewEncryptorFromBase64(key)
	require.NoError(t, err)
	return enc
}

func TestNewEncryptor_KeySize(t *testing.T) {
	for _, size := range []int{0, 16, 31, 33, 64} {
		_, err := NewEncryptor(make([]byte, size))
		assert.ErrorIs(t, err, ErrInvalidKeySize, "size %d", size)
	}
	_, err := NewEncryptor(make([]byte, KeySize))
	assert.NoError(t, err)
}

func TestNewEncryptorFromBase64_Invalid(t *testing.T) {
	_, err := NewEncryptorFromBase64("not-valid-base64!!!")
	assert.Error(t, err)

	_, err = NewEncryptorFromBase64(base64.StdEncoding.EncodeToString(make([]byte, 16)))
	assert.ErrorIs(t, err, ErrInvalidKeySize)
}

func TestEncryptDecrypt(t *testing.T) {
	enc := newTestEncryptor(t)

	for _, plain := range []string{"aas_et/master-token", "ünïcödé 🔑", strings.Repeat("x", 4096)} {
		sealed, err := enc.Encrypt(plain)
		require.NoError(t, err)
		assert.NotEqual(t, plain, sealed)

		opened, err := enc.Decrypt(sealed)
		require.NoError(t, err)
		assert.Equal(t, plain, opened)
	}
}

func TestEncrypt_FreshNonce(t *testing.T) {
	enc := newTestEncryptor(t)
	a, err := enc.Encrypt("same")
	require.NoError(t, err)
	b, err := enc.Encrypt("same")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestEncrypt_Empty(t *testing.T) {
	enc := newTestEncryptor(t)
	sealed, err := enc.Encrypt("")
	require.NoError(t, err)
	assert.Empty(t, sealed)

	opened, err := enc.Decrypt("")
	require.NoError(t, err)
	assert.Empty(t, opened)
}

func TestDecrypt_Failures(t *testing.T) {
	enc := newTestEncryptor(t)

	_, err := enc.Decrypt("!!!")
	assert.Error(t, err)

	_, err = enc.Decrypt(base64.StdEncoding.EncodeToString([]byte("short")))
	assert.ErrorIs(t, err, ErrCiphertextTooShort)

	sealed, err := newTestEncryptor(t).Encrypt("secret")
	require.NoError(t, err)
	_, err = enc.Decrypt(sealed)
	assert.ErrorIs(t, err, ErrDecryptionFailed)
}
