package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed digests.
// Version suffix enables future algorithm migration.
const (
	DomainFrame = "dehydra/frame/v1"
	DomainTrace = "dehydra/trace/v1"
)

// hashWithDomain computes SHA256(domain + 0x00 + data).
// The null byte separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// FrameDigest computes the content digest of one tick frame, given as its
// canonical map form. Identical register contents at the same tick always
// produce the same digest.
func FrameDigest(frame map[string]any) (string, error) {
	canonical, err := MarshalCanonical(frame)
	if err != nil {
		return "", fmt.Errorf("FrameDigest: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainFrame, canonical), nil
}

// ChainDigest folds a frame digest into a running trace digest. The empty
// string is the digest of an empty trace.
func ChainDigest(prev, frameDigest string) string {
	return hashWithDomain(DomainTrace, []byte(prev+frameDigest))
}

// TraceDigest folds a sequence of frames into one digest. Two runs with the
// same digest produced the same register values on every tick.
func TraceDigest(frames []map[string]any) (string, error) {
	digest := ""
	for i, f := range frames {
		fd, err := FrameDigest(f)
		if err != nil {
			return "", fmt.Errorf("frame %d: %w", i, err)
		}
		digest = ChainDigest(digest, fd)
	}
	return digest, nil
}
