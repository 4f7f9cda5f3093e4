// Package fs provides filesystem abstractions for testability and fault injection.
//
// The package defines two key interfaces:
//
//   - [File]: an open file that can be read, written, truncated and synced;
//     [OSFile] recovers the *os.File needed for memory mapping
//   - [FileSystem]: opening, removing and inspecting files
//
// # Implementations
//
//   - [LocalFS]: production implementation using the standard os package
//   - [FaultyFS]: test utility that injects open, truncate, write, sync and close failures
//
// Mapped buffers open their backing file through a FileSystem so tests can
// verify that I/O failures surface as I/O errors rather than bounds violations:
//
//	ffs := fs.NewFaultyFS(nil)
//	ffs.AddRule("records.bin", fs.Fault{FailOnTruncate: true})
//	_, err := mem.OpenMapped("records.bin", 4096, mem.WithFileSystem(ffs))
//	// errors.Is(err, mem.ErrIO) == true
package fs
