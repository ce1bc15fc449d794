// Package credentials keeps accounts and tokens in memory and, depending on
// the backend, mirrors every change to the encrypted store on disk.
//
// # Backends
//
//   - FileRepository: the whole snapshot is flushed through a Persister after
//     every mutation. A mutation that fails to persist leaves the in-memory
//     state untouched.
//   - MemoryRepository: session-scoped, nothing is written. Used where secret
//     storage is delegated to a platform vault.
//
// # Locking
//
// Writers are serialized by a dedicated mutex that covers the
// clone-mutate-flush cycle. The snapshot itself sits behind an RWMutex that is
// never held across I/O, so reads are served from memory while a flush is in
// progress and observe the last committed state.
//
// Lookup misses return common.ErrAccountNotFound. Deleting an id that is not
// present is not an error.
package credentials
