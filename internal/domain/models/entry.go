package models

import (
	"path"
	"strings"
	"time"
)

// Kind distinguishes folders from files.
type Kind string

const (
	KindFolder Kind = "folder"
	KindFile   Kind = "file"
)

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	return k == KindFolder || k == KindFile
}

// ParseKind maps a user-supplied string to a Kind.
// Plural forms are accepted so that route segments like "folders" work.
func ParseKind(s string) (Kind, bool) {
	switch s {
	case "folder", "folders":
		return KindFolder, true
	case "file", "files":
		return KindFile, true
	}
	return "", false
}

// Entry is a folder or file inside the storage root.
//
// Path is relative to the root, slash separated, and is the entry's identity:
// favorites and UI state are keyed by it, never by Name.
type Entry struct {
	Path    string    `json:"path"`
	Name    string    `json:"name"`
	Kind    Kind      `json:"kind"`
	Size    int64     `json:"size"` // bytes; recursive aggregate for folders
	ModTime time.Time `json:"mod_time"`
}

// IsFolder returns true if the entry is a folder.
func (e Entry) IsFolder() bool {
	return e.Kind == KindFolder
}

// Ext returns the lowercase extension of the entry name including the dot.
func (e Entry) Ext() string {
	return strings.ToLower(path.Ext(e.Name))
}

// Parent returns the relative path of the folder containing the entry.
// Entries directly under the root return "".
func (e Entry) Parent() string {
	dir := path.Dir(e.Path)
	if dir == "." || dir == "/" {
		return ""
	}
	return dir
}

