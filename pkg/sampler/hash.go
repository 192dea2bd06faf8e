package sampler

// fmix32 is the MurmurHash3 finalizer. It is a bijection on uint32.
func fmix32(h uint32) uint32 {
	h ^= h >> 16
	h *= 0x85ebca6b
	h ^= h >> 13
	h *= 0xc2b2ae35
	h ^= h >> 16
	return h
}

// Hash mixes a tile index and frame number into a 32-bit stream id.
// For a fixed frame the mapping from tile to id is injective, so concurrently
// running tile tasks never share a stream.
func Hash(tile, frame uint32) uint32 {
	return fmix32(fmix32(tile) ^ frame)
}
