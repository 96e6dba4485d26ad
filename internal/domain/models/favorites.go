package models

// FavoriteSet is the persisted favorites document.
//
// Folders and Files hold relative paths in the order they were starred.
// Entries may refer to paths that no longer exist; readers filter them.
type FavoriteSet struct {
	Folders []string `json:"folders"`
	Files   []string `json:"files"`
}

// Paths returns the slice for the given kind.
func (s FavoriteSet) Paths(k Kind) []string {
	if k == KindFolder {
		return s.Folders
	}
	return s.Files
}

// Len returns the total number of stored favorites.
func (s FavoriteSet) Len() int {
	return len(s.Folders) + len(s.Files)
}
