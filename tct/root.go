package tct

import "github.com/holiman/uint256"

// frModulusDecimal is the BLS12-377 scalar field modulus. Wire values are
// checked against it before ever being handed to fr.Element, so that a
// non-canonical encoding is rejected cheaply (the "Root decode" failure
// kind) rather than silently reduced.
const frModulusDecimal = "8444461749428370424248824938781546531375899335154063827935233455917409239041"

var frModulus = mustDecimalUint256(frModulusDecimal)

func mustDecimalUint256(s string) *uint256.Int {
	v, err := uint256.FromDecimal(s)
	if err != nil {
		panic(err)
	}
	return v
}

// isCanonical256 reports whether the little-endian encoding b represents a
// value strictly below the scalar field modulus.
func isCanonical256(b [32]byte) bool {
	be := reverseBytes(b[:])
	v := new(uint256.Int).SetBytes(be)
	return v.Cmp(frModulus) < 0
}

func reverseBytes(b []byte) []byte {
	out := make([]byte, len(b))
	for i, v := range b {
		out[len(b)-1-i] = v
	}
	return out
}

// EncodeRoot returns the canonical 32-byte little-endian wire encoding of
// a root hash (identical for the tree root, block root or epoch root —
// all three are plain field elements).
func EncodeRoot(h Hash) [32]byte {
	return h.Bytes()
}

// DecodeRoot decodes a 32-byte little-endian wire value into a Hash,
// rejecting any value at or above the scalar field modulus.
func DecodeRoot(b [32]byte) (Hash, error) {
	el, err := canonicalElement(b)
	if err != nil {
		return Hash{}, err
	}
	return Hash{el: el}, nil
}
