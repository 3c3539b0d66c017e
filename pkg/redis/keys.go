package redis

import "strings"

// HashTag returns the part of key Redis Cluster hashes to pick a slot: the
// first non-empty {...} section, or the whole key when there is none.
func HashTag(key string) string {
	start := strings.IndexByte(key, '{')
	if start < 0 {
		return key
	}
	end := strings.IndexByte(key[start+1:], '}')
	if end <= 0 {
		return key
	}
	return key[start+1 : start+1+end]
}

// SameSlot reports whether every key hashes to the same cluster slot, which
// multi-key commands such as LMOVE require.
func SameSlot(keys ...string) bool {
	for _, key := range keys[1:] {
		if HashTag(key) != HashTag(keys[0]) {
			return false
		}
	}
	return true
}

// CompanionKey derives a key that shares the slot of key, so both can be used
// in one multi-key command on a cluster.
func CompanionKey(key, suffix string) string {
	tag := HashTag(key)
	if tag != key {
		return key + suffix
	}
	return "{" + key + "}" + suffix
}
