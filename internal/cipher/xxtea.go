package cipher

// XXTEA is a corrected block TEA variant operating over whole buffers of
// 32-bit little-endian words rather than TEA's fixed 64-bit block, which is
// why it is implemented directly instead of through a generic TEA/XTEA
// library: none of those expose the variable-length, variable-round-count
// form spec.md §4.11 requires (6 + 52/words cycles, i.e. 6 + 52/(n+1) where
// n = words-1, as spec.md phrases it). Key is a 16-byte (4-word) array;
// spec.md says the master key is
// "padded/truncated to 16 bytes" before use.
const delta = 0x9E3779B9

// mx is the per-round mixing function from the reference XXTEA algorithm.
func mx(sum, y, z uint32, p uint32, e uint32, key [4]uint32) uint32 {
	return ((z>>5 ^ y<<2) + (y>>3 ^ z<<4)) ^ ((sum ^ y) + (key[(p&3)^e] ^ z))
}

// XXTEADecrypt decrypts data in place, interpreting it as a little-endian
// uint32 word array. len(data) must be a multiple of 4 and represent at
// least 2 words; shorter buffers are returned unchanged, matching the
// reference algorithm's n<2 no-op case.
func XXTEADecrypt(data []byte, key [16]byte) {
	n := len(data) / 4
	if n < 2 {
		return
	}
	v := bytesToWords(data, n)
	k := bytesToKeyWords(key)

	rounds := 6 + 52/n
	sum := uint32(rounds) * delta
	y := v[0]
	for ; rounds > 0; rounds-- {
		e := (sum >> 2) & 3
		for p := n - 1; p > 0; p-- {
			z := v[p-1]
			v[p] -= mx(sum, y, z, uint32(p), e, k)
			y = v[p]
		}
		z := v[n-1]
		v[0] -= mx(sum, y, z, 0, e, k)
		y = v[0]
		sum -= delta
	}

	wordsToBytes(v, data)
}

// XXTEAEncrypt is the inverse of XXTEADecrypt, provided for round-trip
// testing (spec.md §8: "XXTEA round-trip on any word-aligned buffer of
// length ≥ 2 words"). The production path only ever decrypts script blobs.
func XXTEAEncrypt(data []byte, key [16]byte) {
	n := len(data) / 4
	if n < 2 {
		return
	}
	v := bytesToWords(data, n)
	k := bytesToKeyWords(key)

	rounds := 6 + 52/n
	sum := uint32(0)
	z := v[n-1]
	for q := rounds; q > 0; q-- {
		sum += delta
		e := (sum >> 2) & 3
		for p := 0; p < n-1; p++ {
			y := v[p+1]
			v[p] += mx(sum, y, z, uint32(p), e, k)
			z = v[p]
		}
		y := v[0]
		v[n-1] += mx(sum, y, z, uint32(n-1), e, k)
		z = v[n-1]
	}

	wordsToBytes(v, data)
}

func bytesToWords(data []byte, n int) []uint32 {
	v := make([]uint32, n)
	for i := 0; i < n; i++ {
		v[i] = uint32(data[i*4]) | uint32(data[i*4+1])<<8 | uint32(data[i*4+2])<<16 | uint32(data[i*4+3])<<24
	}
	return v
}

func wordsToBytes(v []uint32, data []byte) {
	for i, w := range v {
		data[i*4] = byte(w)
		data[i*4+1] = byte(w >> 8)
		data[i*4+2] = byte(w >> 16)
		data[i*4+3] = byte(w >> 24)
	}
}

func bytesToKeyWords(key [16]byte) [4]uint32 {
	var k [4]uint32
	for i := range k {
		k[i] = uint32(key[i*4]) | uint32(key[i*4+1])<<8 | uint32(key[i*4+2])<<16 | uint32(key[i*4+3])<<24
	}
	return k
}

// PadKey truncates or zero-pads an arbitrary-length key to 16 bytes, per
// spec.md §4.11 ("key padded/truncated to 16 bytes").
func PadKey(key []byte) [16]byte {
	var k [16]byte
	copy(k[:], key)
	return k
}
