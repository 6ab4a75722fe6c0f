package bot

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"

	"github.com/tchesnutt/halite3/internal/sim/policy"
)

// commandDigest hashes the ordered command list and the spawn flag. Replays
// compare it turn by turn.
func commandDigest(turn int, cmds []policy.Command, spawn bool) string {
	h := sha256.New()
	var tmp [8]byte
	writeU64(h, &tmp, uint64(turn))
	writeU64(h, &tmp, uint64(len(cmds)))
	for _, c := range cmds {
		writeU64(h, &tmp, uint64(c.Ship))
		flag := byte(c.Dir)
		if c.Convert {
			flag = 0xff
		}
		h.Write([]byte{flag})
	}
	if spawn {
		h.Write([]byte{1})
	} else {
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

type hashWriter interface {
	Write(p []byte) (n int, err error)
}

func writeU64(h hashWriter, tmp *[8]byte, v uint64) {
	binary.LittleEndian.PutUint64(tmp[:], v)
	h.Write(tmp[:])
}
