package models

import (
	"time"
)

// FileType is the coarse content class assigned by the classifier
type FileType string

const (
	TypeImage    FileType = "image"
	TypeText     FileType = "text"
	TypeCode     FileType = "code"
	TypeHashLike FileType = "hash-like"
	TypeBinary   FileType = "binary"
	TypeUnknown  FileType = "unknown"
)

// File is a file read into memory together with its digest
type File struct {
	Path      string    // Full file path
	Name      string    // File name
	Extension string    // File extension (without dot)
	Size      int64     // File size in bytes
	ModTime   time.Time // Modification time
	Content   []byte    // File content
	Hash      string    // Crypto digest (hex)
}

// FileInfo contains basic file information without content
type FileInfo struct {
	Path     string
	Size     int64
	ModTime  time.Time
	IsDir    bool
	IsHidden bool
}

// FileRecord is a walked file with its classification. Never persisted.
type FileRecord struct {
	Path    string
	Type    FileType // image, text, binary or unknown
	Subtype FileType // image, text, code, hash-like, binary or unknown
	Size    int64
}
