package signing

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"encoding/base64"
	"errors"
	"fmt"
)

var (
	// ErrInvalidKeySize is a configuration error: AES keys are 16, 24 or 32 bytes.
	ErrInvalidKeySize = errors.New("signing: aes key must be 16, 24 or 32 bytes")
	// ErrInvalidPadding means the plaintext does not end in valid PKCS#7 padding.
	ErrInvalidPadding = errors.New("signing: invalid pkcs7 padding")
	// ErrInvalidBlock means the ciphertext (or iv) is not a whole number of blocks.
	ErrInvalidBlock = errors.New("signing: ciphertext is not a multiple of the block size")
)

func newBlock(key []byte) (cipher.Block, error) {
	switch len(key) {
	case 16, 24, 32:
	default:
		return nil, fmt.Errorf("%w: got %d", ErrInvalidKeySize, len(key))
	}
	return aes.NewCipher(key)
}

// PKCS7Pad pads b to a multiple of blockSize.
func PKCS7Pad(b []byte, blockSize int) []byte {
	n := blockSize - len(b)%blockSize
	return append(append([]byte(nil), b...), bytes.Repeat([]byte{byte(n)}, n)...)
}

// PKCS7Unpad strips and validates PKCS#7 padding.
func PKCS7Unpad(b []byte, blockSize int) ([]byte, error) {
	if len(b) == 0 || len(b)%blockSize != 0 {
		return nil, ErrInvalidPadding
	}
	n := int(b[len(b)-1])
	if n == 0 || n > blockSize || n > len(b) {
		return nil, ErrInvalidPadding
	}
	for _, c := range b[len(b)-n:] {
		if int(c) != n {
			return nil, ErrInvalidPadding
		}
	}
	return b[:len(b)-n], nil
}

// EncryptECB encrypts plaintext with AES-ECB and PKCS#7 padding.
func EncryptECB(key, plaintext []byte) ([]byte, error) {
	block, err := newBlock(key)
	if err != nil {
		return nil, err
	}
	bs := block.BlockSize()
	src := PKCS7Pad(plaintext, bs)
	out := make([]byte, len(src))
	for i := 0; i < len(src); i += bs {
		block.Encrypt(out[i:i+bs], src[i:i+bs])
	}
	return out, nil
}

// DecryptECB reverses EncryptECB.
func DecryptECB(key, ciphertext []byte) ([]byte, error) {
	block, err := newBlock(key)
	if err != nil {
		return nil, err
	}
	bs := block.BlockSize()
	if len(ciphertext) == 0 || len(ciphertext)%bs != 0 {
		return nil, ErrInvalidBlock
	}
	out := make([]byte, len(ciphertext))
	for i := 0; i < len(ciphertext); i += bs {
		block.Decrypt(out[i:i+bs], ciphertext[i:i+bs])
	}
	return PKCS7Unpad(out, bs)
}

// EncryptCBC encrypts plaintext with AES-CBC and PKCS#7 padding.
func EncryptCBC(key, iv, plaintext []byte) ([]byte, error) {
	block, err := newBlock(key)
	if err != nil {
		return nil, err
	}
	if len(iv) != block.BlockSize() {
		return nil, ErrInvalidBlock
	}
	src := PKCS7Pad(plaintext, block.BlockSize())
	out := make([]byte, len(src))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(out, src)
	return out, nil
}

// DecryptCBC reverses EncryptCBC.
func DecryptCBC(key, iv, ciphertext []byte) ([]byte, error) {
	block, err := newBlock(key)
	if err != nil {
		return nil, err
	}
	bs := block.BlockSize()
	if len(iv) != bs || len(ciphertext) == 0 || len(ciphertext)%bs != 0 {
		return nil, ErrInvalidBlock
	}
	out := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(out, ciphertext)
	return PKCS7Unpad(out, bs)
}

// EncryptECBBase64 encrypts a UTF-8 string and returns standard Base64.
func EncryptECBBase64(key []byte, plaintext string) (string, error) {
	ct, err := EncryptECB(key, []byte(plaintext))
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(ct), nil
}

// DecryptECBBase64 reverses EncryptECBBase64.
func DecryptECBBase64(key []byte, ciphertext string) (string, error) {
	ct, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", fmt.Errorf("signing: decode ciphertext: %w", err)
	}
	pt, err := DecryptECB(key, ct)
	if err != nil {
		return "", err
	}
	return string(pt), nil
}

// DecryptCBCBase64 decodes Base64 key, iv and ciphertext and decrypts them.
// This is the layout used by mini-program encrypted payloads.
func DecryptCBCBase64(key, iv, ciphertext string) ([]byte, error) {
	k, err := base64.StdEncoding.DecodeString(key)
	if err != nil {
		return nil, fmt.Errorf("signing: decode key: %w", err)
	}
	v, err := base64.StdEncoding.DecodeString(iv)
	if err != nil {
		return nil, fmt.Errorf("signing: decode iv: %w", err)
	}
	ct, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return nil, fmt.Errorf("signing: decode ciphertext: %w", err)
	}
	return DecryptCBC(k, v, ct)
}
