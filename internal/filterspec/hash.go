package filterspec

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"golang.org/x/text/unicode/norm"
)

// DomainSpec separates specification hashes from other content hashes.
const DomainSpec = "sift/spec/v1"

// canonicalize renders members as compact JSON in document order with
// NFC-normalised text, so equivalent specifications hash identically.
func canonicalize(members []member) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, m := range members {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(m.Key)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		if err := json.Compact(&buf, m.Value); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return norm.NFC.Bytes(buf.Bytes()), nil
}

// JSON returns the canonical JSON form of the specification.
func (s *Spec) JSON() []byte {
	if s == nil || s.canonical == nil {
		return []byte("{}")
	}
	out := make([]byte, len(s.canonical))
	copy(out, s.canonical)
	return out
}

// Hash returns the content hash of the specification:
// SHA256(domain + 0x00 + canonical JSON), hex encoded.
func (s *Spec) Hash() string {
	h := sha256.New()
	h.Write([]byte(DomainSpec))
	h.Write([]byte{0x00})
	h.Write(s.JSON())
	return hex.EncodeToString(h.Sum(nil))
}
