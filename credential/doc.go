// Package credential holds the single persisted bearer token of a client
// process. Implementations are durable across restarts until cleared,
// except [MemoryStore], which exists for tests and ephemeral clients.
//
// One logical writer is assumed. Stores are goroutine-safe but do not
// coordinate between processes sharing the same backing file or key.
package credential
