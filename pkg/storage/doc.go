// Package storage persists the text artifacts of the storefront.
//
// A Backend moves opaque byte blobs addressed by a Key. Three backends are
// provided:
//
//   - FileBackend writes one flat file per artifact under a data directory
//   - RedisBackend writes one string value per artifact under a namespace
//   - MemoryBackend keeps everything in process, for tests
//
// The encoding of the blobs is the concern of package codec.
package storage
