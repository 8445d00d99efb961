package cache

import (
	"encoding/binary"
	"encoding/hex"

	"github.com/zeebo/xxh3"
)

// Digest identifies one cached validation: the checked bytes plus every
// setting that can change the diagnostics.
type Digest [16]byte

func (d Digest) String() string { return hex.EncodeToString(d[:]) }

// IsZero reports whether d was never computed.
func (d Digest) IsZero() bool { return d == Digest{} }

// Key combines the content hash with the settings: H(content || p1 || 0 || p2 || 0 ...).
// Parts are order sensitive, callers pass them in a fixed order.
func Key(content uint64, parts ...string) Digest {
	h := xxh3.New()
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], content)
	_, _ = h.Write(buf[:])
	for _, p := range parts {
		_, _ = h.WriteString(p)
		_, _ = h.Write([]byte{0})
	}
	return Digest(h.Sum128().Bytes())
}
