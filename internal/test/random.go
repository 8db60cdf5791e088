package test

import (
	"math/rand"
	"sync"
	"time"
)

var (
	rngMu sync.Mutex
	rng   = rand.New(rand.NewSource(time.Now().UnixNano()))
)

// RandomDigits returns a pseudo-random string of n decimal digits, handy for
// phone numbers and track suffixes.
func RandomDigits(n int) string {
	buf := make([]byte, n)
	for i := range buf {
		buf[i] = byte('0' + randomIntn(10))
	}
	return string(buf)
}

// RandomTrackNumber returns a track number shaped like a carrier code: two
// letters followed by digits.
func RandomTrackNumber() string {
	const letters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	return string([]byte{letters[randomIntn(len(letters))], letters[randomIntn(len(letters))]}) + RandomDigits(9)
}

func randomIntn(n int) int {
	rngMu.Lock()
	defer rngMu.Unlock()
	return rng.Intn(n)
}
