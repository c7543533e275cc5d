package driver

import (
	"crypto/sha256"
	"encoding/binary"
	"strconv"
)

// Digest is a SHA-256 value.
type Digest [32]byte

// IsZero reports whether d was never computed.
func (d Digest) IsZero() bool {
	return d == Digest{}
}

// combineDigest: H(content || schema || part1 || part2 ...). Parts are
// length-prefixed so that ("ab","c") and ("a","bc") differ.
func combineDigest(content [32]byte, parts ...string) Digest {
	h := sha256.New()
	_, _ = h.Write(content[:])
	var buf [4]byte
	binary.LittleEndian.PutUint16(buf[:2], diskCacheSchemaVersion)
	_, _ = h.Write(buf[:2])
	for _, p := range parts {
		binary.LittleEndian.PutUint32(buf[:], uint32(len(p))) // #nosec G115 -- lengths of config strings
		_, _ = h.Write(buf[:])
		_, _ = h.Write([]byte(p))
	}
	var out Digest
	copy(out[:], h.Sum(nil))
	return out
}

// resultKey identifies the check result of a file's content under one
// ruleset configuration.
func resultKey(contentHash [32]byte, fingerprint string, maxDiagnostics int) Digest {
	return combineDigest(contentHash, fingerprint, strconv.Itoa(maxDiagnostics))
}
