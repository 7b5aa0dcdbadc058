// Package models defines the domain types for quire.
package models

import "time"

// EntryKind tags a listing entry as a regular file or a directory.
type EntryKind int

const (
	KindFile EntryKind = iota
	KindDir
)

// String returns "file" or "dir".
func (k EntryKind) String() string {
	if k == KindDir {
		return "dir"
	}
	return "file"
}

// Entry is one direct child of a storage root.
type Entry struct {
	Name string    `json:"name"`
	Kind EntryKind `json:"kind"`
}

// IsFile reports whether the entry should be converted.
func (e Entry) IsFile() bool {
	return e.Kind == KindFile
}

// Page describes one output file written by a conversion run.
type Page struct {
	Source   string `json:"source"`
	Output   string `json:"output"`
	Title    string `json:"title,omitempty"`
	Checksum string `json:"checksum"`
	Bytes    int    `json:"bytes"`
}

// Build is one recorded run of the converter.
type Build struct {
	ID         int64     `json:"id"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at,omitempty"`
	SourceDir  string    `json:"source_dir"`
	BookDir    string    `json:"book_dir"`
	Templated  bool      `json:"templated"`
	PageCount  int       `json:"page_count"`
}
