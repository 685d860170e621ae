// Package random generates the tokens and suffixes handed out to visitors.
package random

import (
	crand "crypto/rand"
	"encoding/binary"
	"math/big"
	mrand "math/rand"
	"sync"
	"time"
)

const charset = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

var (
	mu  sync.Mutex
	rnd = mrand.New(mrand.NewSource(seed()))
)

func seed() int64 {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return time.Now().UnixNano()
	}
	return int64(binary.LittleEndian.Uint64(b[:]))
}

// String returns a non cryptographic random string, good enough for slug
// suffixes.
func String(length int) string {
	mu.Lock()
	defer mu.Unlock()

	b := make([]byte, length)
	for i := range b {
		b[i] = charset[rnd.Intn(len(charset))]
	}
	return string(b)
}

// StringSecure returns a random string read from crypto/rand. Visitor
// tokens and oauth states use it.
func StringSecure(length int) (string, error) {
	l := big.NewInt(int64(len(charset)))

	b := make([]byte, length)
	for i := range b {
		num, err := crand.Int(crand.Reader, l)
		if err != nil {
			return "", err
		}
		b[i] = charset[num.Int64()]
	}
	return string(b), nil
}
