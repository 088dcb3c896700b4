package store

import "sync"

// keyPool provides reusable byte slices for building database keys.
var keyPool = sync.Pool{
	New: func() any {
		// Prefix + "lidx:" + index name + value + NanoID fits comfortably.
		return make([]byte, 0, 256)
	},
}

// buildKey constructs a primary key from prefix and id using a pooled buffer.
// Callers MUST call releaseKey when done with the key.
//
//	key := buildKey("question:", questionID)
//	defer releaseKey(key)
//	item, err := txn.Get(key)
func buildKey(prefix, id string) []byte {
	buf, _ := keyPool.Get().([]byte)
	buf = buf[:0]
	buf = append(buf, prefix...)
	buf = append(buf, id...)
	return buf
}

// buildIndexKey constructs a unique index key: prefix + "idx:" + name + ":" + value.
// Callers MUST call releaseKey when done with the key.
func buildIndexKey(prefix, indexName, value string) []byte {
	buf, _ := keyPool.Get().([]byte)
	buf = buf[:0]
	buf = append(buf, prefix...)
	buf = append(buf, uniqueIndexMarker...)
	buf = append(buf, indexName...)
	buf = append(buf, ':')
	buf = append(buf, value...)
	return buf
}

// listIndexPrefix returns the scan prefix of a non-unique index bucket:
// prefix + "lidx:" + name + ":" + value + ":".
func listIndexPrefix(prefix, indexName, value string) []byte {
	buf := make([]byte, 0, len(prefix)+len(listIndexMarker)+len(indexName)+len(value)+2)
	buf = append(buf, prefix...)
	buf = append(buf, listIndexMarker...)
	buf = append(buf, indexName...)
	buf = append(buf, ':')
	buf = append(buf, value...)
	buf = append(buf, ':')
	return buf
}

// releaseKey returns a key buffer to the pool for reuse.
// After calling this, the key slice must not be used.
func releaseKey(key []byte) {
	// Avoid keeping oversized buffers in the pool.
	if cap(key) <= 512 {
		keyPool.Put(key[:0])
	}
}
