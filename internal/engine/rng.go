package engine

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"
	"strconv"
)

// fairHexPrefix is the number of digest hex characters turned into the raw draw.
const fairHexPrefix = 8

// Digest returns hex(HMAC-SHA256(key=secretSeed, "secret:client:nonce")).
// Anyone holding the revealed secret can recompute it.
func Digest(secretSeed, clientSeed string, nonce uint64) string {
	h := hmac.New(sha256.New, []byte(secretSeed))
	fmt.Fprintf(h, "%s:%s:%d", secretSeed, clientSeed, nonce)
	return hex.EncodeToString(h.Sum(nil))
}

// RawDraw parses the first 8 hex characters of the digest as a uint32.
func RawDraw(secretSeed, clientSeed string, nonce uint64) uint32 {
	d := Digest(secretSeed, clientSeed, nonce)
	r, err := strconv.ParseUint(d[:fairHexPrefix], 16, 32)
	if err != nil {
		// hex.EncodeToString only emits [0-9a-f]
		panic(fmt.Sprintf("engine: malformed digest %q: %v", d, err))
	}
	return uint32(r)
}

// FairInt maps a draw onto [min, max] as min + r mod (max-min+1).
// It is a pure function of its inputs. A collapsed or inverted range yields min.
func FairInt(secretSeed, clientSeed string, nonce uint64, min, max int64) int64 {
	if max <= min {
		return min
	}
	r := uint64(RawDraw(secretSeed, clientSeed, nonce))
	span := uint64(max-min) + 1
	if span == 0 {
		// [MinInt64, MaxInt64]: every uint32 fits.
		return min + int64(r)
	}
	return min + int64(r%span)
}

// ByteGenerator streams HMAC-SHA256 output in 32-byte rounds keyed by a
// seed string. The shuffle strategies use it to expand a single fair draw
// into as many uniform floats as a permutation needs.
type ByteGenerator struct {
	key          string
	domain       string
	nonce        uint64
	currentRound uint64
	currentPos   int
	buffer       [32]byte
}

// NewByteGenerator creates a generator positioned at cursor.
func NewByteGenerator(key, domain string, nonce uint64, cursor uint64) *ByteGenerator {
	bg := &ByteGenerator{
		key:          key,
		domain:       domain,
		nonce:        nonce,
		currentRound: cursor / 32,
		currentPos:   int(cursor % 32),
	}
	bg.generateRound()
	return bg
}

// Next returns the next byte from the stream.
func (bg *ByteGenerator) Next() byte {
	if bg.currentPos >= 32 {
		bg.currentRound++
		bg.currentPos = 0
		bg.generateRound()
	}

	b := bg.buffer[bg.currentPos]
	bg.currentPos++
	return b
}

// NextFloat consumes exactly 4 bytes and returns a float in [0, 1).
func (bg *ByteGenerator) NextFloat() float64 {
	return bytesToFloat([4]byte{bg.Next(), bg.Next(), bg.Next(), bg.Next()})
}

func (bg *ByteGenerator) generateRound() {
	h := hmac.New(sha256.New, []byte(bg.key))
	fmt.Fprintf(h, "%s:%d:%d", bg.domain, bg.nonce, bg.currentRound)
	copy(bg.buffer[:], h.Sum(nil))
}

func bytesToFloat(bytes [4]byte) float64 {
	result := 0.0
	for i, b := range bytes {
		result += float64(b) / math.Pow(256, float64(i+1))
	}
	return result
}
