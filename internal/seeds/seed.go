package seeds

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DefaultPeriod is the length of one seed epoch.
const DefaultPeriod = 30 * time.Minute

// ErrSeedNotFound is returned by History lookups that match nothing.
var ErrSeedNotFound = errors.New("seed not found")

// Seed is one epoch's secret/public pair.
type Seed struct {
	Epoch      int64     `json:"epoch"`
	SecretSeed string    `json:"secret_seed,omitempty"`
	PublicHash string    `json:"public_hash"`
	PostedAt   time.Time `json:"posted_at"`
	Revealed   bool      `json:"revealed"`
}

// Public returns a copy safe to publish: the secret is blanked until revealed.
func (s Seed) Public() Seed {
	if !s.Revealed {
		s.SecretSeed = ""
	}
	return s
}

// IsZero reports whether no seed has been activated yet.
func (s Seed) IsZero() bool { return s.PublicHash == "" }

// History is the append-only audit record of every activated seed.
type History interface {
	// AppendSeed stores seed unless its epoch already exists. It reports
	// whether a row was written.
	AppendSeed(ctx context.Context, seed Seed) (bool, error)
	SeedByEpoch(ctx context.Context, epoch int64) (Seed, error)
	SeedsBetween(ctx context.Context, from, to time.Time) ([]Seed, error)
	LatestSeed(ctx context.Context) (Seed, error)
	// RevealBefore marks every unrevealed seed older than epoch as revealed
	// and returns the epochs it changed, oldest first.
	RevealBefore(ctx context.Context, epoch int64) ([]int64, error)
}

// DisclosureMode selects the commit/reveal ordering of the rotation protocol.
type DisclosureMode string

const (
	// DiscloseOnRotation publishes hash and secret together when the epoch
	// begins. This matches the reference bot.
	DiscloseOnRotation DisclosureMode = "rotation"
	// CommitReveal publishes only the hash while the epoch is current and
	// reveals the secret when the next epoch supersedes it.
	CommitReveal DisclosureMode = "commit-reveal"
)

// ParseDisclosureMode accepts the config spelling of a mode.
func ParseDisclosureMode(s string) (DisclosureMode, error) {
	switch DisclosureMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", DiscloseOnRotation:
		return DiscloseOnRotation, nil
	case CommitReveal:
		return CommitReveal, nil
	default:
		return "", fmt.Errorf("unknown disclosure mode %q", s)
	}
}

// HashSeed returns hex(SHA256(s)).
func HashSeed(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

// EpochAt returns floor(t / period) in Unix seconds.
func EpochAt(t time.Time, period time.Duration) int64 {
	secs := int64(period / time.Second)
	if secs <= 0 {
		secs = int64(DefaultPeriod / time.Second)
	}
	return t.Unix() / secs
}

// EpochStart returns the wall-clock instant an epoch begins.
func EpochStart(epoch int64, period time.Duration) time.Time {
	return time.Unix(epoch*int64(period/time.Second), 0).UTC()
}

// Derive computes the seed pair for an epoch:
// secret = hex(SHA256(decimal epoch)), public = hex(SHA256(secret)).
func Derive(epoch int64) (secret, public string) {
	secret = HashSeed(strconv.FormatInt(epoch, 10))
	return secret, HashSeed(secret)
}

// VerifySeed checks that the public hash commits to the secret.
func VerifySeed(s Seed) bool {
	return s.SecretSeed != "" && HashSeed(s.SecretSeed) == s.PublicHash
}
