package jobs

import (
	"crypto/rand"
	"encoding/binary"
	"sync"
	"time"
)

// Job IDs are ULIDs: 48-bit millisecond timestamp then 80 random bits,
// Crockford base32 encoded, so they sort by creation time.

const crockford = "0123456789ABCDEFGHJKMNPQRSTVWXYZ"

var (
	idMu    sync.Mutex
	lastTS  uint64
	lastSeq uint16
)

// NewID returns a new 26-character ULID.
func NewID() string {
	return newIDAt(time.Now())
}

func newIDAt(t time.Time) string {
	idMu.Lock()
	ts := uint64(t.UnixMilli())
	if ts == lastTS {
		lastSeq++
	} else {
		lastTS = ts
		lastSeq = 0
	}
	seq := lastSeq
	idMu.Unlock()

	var b [16]byte
	binary.BigEndian.PutUint64(b[0:8], ts<<16)
	rand.Read(b[6:])
	// Sequence in the first random bytes keeps IDs unique within one ms.
	binary.BigEndian.PutUint16(b[6:8], seq)
	return encodeULID(b)
}

// encodeULID writes 128 bits as 26 base32 digits, most significant first.
// The leading digit carries only the top 3 bits.
func encodeULID(b [16]byte) string {
	hi := binary.BigEndian.Uint64(b[0:8])
	lo := binary.BigEndian.Uint64(b[8:16])

	var out [26]byte
	for i := len(out) - 1; i >= 0; i-- {
		out[i] = crockford[lo&31]
		lo = lo>>5 | hi<<59
		hi >>= 5
	}
	return string(out[:])
}
