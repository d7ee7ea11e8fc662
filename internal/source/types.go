package source

import (
	"encoding/hex"

	"lukechampine.com/blake3"
)

type (
	// FileID uniquely identifies a source file within a FileSet.
	FileID uint32
	// FileFlags encodes metadata about a source file.
	FileFlags uint8
)

const (
	// FileVirtual marks files added from memory (tests, define values, stdin).
	FileVirtual FileFlags = 1 << iota
	FileHadBOM
	FileNormalizedCRLF
)

// Digest is a 256-bit blake3 content hash.
type Digest [32]byte

// Sum hashes content with blake3.
func Sum(content []byte) Digest {
	return Digest(blake3.Sum256(content))
}

// Combine hashes a digest followed by extra byte chunks, used to mix a config
// fingerprint into a content hash.
func Combine(base Digest, extra ...[]byte) Digest {
	h := blake3.New(32, nil)
	_, _ = h.Write(base[:])
	for _, chunk := range extra {
		_, _ = h.Write(chunk)
	}
	var out Digest
	copy(out[:], h.Sum(nil))
	return out
}

// String returns the hex form of the digest.
func (d Digest) String() string { return hex.EncodeToString(d[:]) }

// IsZero reports whether the digest was never computed.
func (d Digest) IsZero() bool { return d == Digest{} }

// File captures metadata and content for a single source file.
type File struct {
	ID      FileID
	Path    string
	Content []byte
	LineIdx []uint32
	Hash    Digest
	Flags   FileFlags
}

// LineCol represents a human-readable position in a source file.
type LineCol struct {
	Line uint32 // 1-based
	Col  uint32 // 1-based, in bytes
}

// NewVirtualFile builds a standalone file that does not belong to any FileSet.
// Define values are parsed from such files.
func NewVirtualFile(name string, content []byte) *File {
	return &File{
		Path:    normalizePath(name),
		Content: content,
		LineIdx: buildLineIndex(content),
		Hash:    Sum(content),
		Flags:   FileVirtual,
	}
}
