// Package navstate resolves the "current folder" path token carried in
// requests into a location confined to the storage root.
package navstate

import (
	"path"
	"path/filepath"
	"strings"

	"github.com/dalemusser/inclouds/internal/app/system/fserr"
)

// RootToken identifies the storage root. Navigating "back to root" resets to it.
const RootToken = ""

// Crumb is one breadcrumb link.
type Crumb struct {
	Name  string
	Token string
}

// Location is a resolved folder position.
type Location struct {
	Token  string // normalized relative path, slash separated
	Abs    string // absolute filesystem path
	IsRoot bool
	Parent string // token of the containing folder; RootToken at top level
	Crumbs []Crumb
}

// Clean normalizes a relative path token. Backslashes are treated as
// separators. Absolute paths and tokens that climb above the root are
// rejected with a PathEscape error.
func Clean(token string) (string, error) {
	t := strings.TrimSpace(strings.ReplaceAll(token, `\`, "/"))
	if t == "" {
		return RootToken, nil
	}
	if path.IsAbs(t) || filepath.IsAbs(t) || filepath.VolumeName(t) != "" {
		return "", fserr.PathEscape("resolve", token)
	}
	c := path.Clean(t)
	if c == "." {
		return RootToken, nil
	}
	if c == ".." || strings.HasPrefix(c, "../") {
		return "", fserr.PathEscape("resolve", token)
	}
	return c, nil
}

// Abs joins a cleaned token onto root and verifies the result stays inside it.
func Abs(root, token string) (string, error) {
	c, err := Clean(token)
	if err != nil {
		return "", err
	}
	abs := filepath.Join(root, filepath.FromSlash(c))
	rel, err := filepath.Rel(root, abs)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fserr.PathEscape("resolve", token)
	}
	return abs, nil
}

// Resolve derives the active folder from a path token.
func Resolve(root, token string) (Location, error) {
	c, err := Clean(token)
	if err != nil {
		return Location{}, err
	}
	abs, err := Abs(root, c)
	if err != nil {
		return Location{}, err
	}
	loc := Location{
		Token:  c,
		Abs:    abs,
		IsRoot: c == RootToken,
		Parent: Parent(c),
		Crumbs: []Crumb{{Name: "Home", Token: RootToken}},
	}
	if !loc.IsRoot {
		acc := ""
		for _, seg := range strings.Split(c, "/") {
			acc = Join(acc, seg)
			loc.Crumbs = append(loc.Crumbs, Crumb{Name: seg, Token: acc})
		}
	}
	return loc, nil
}

// Join builds a child token from a parent token and an entry name.
func Join(parent, name string) string {
	if parent == RootToken {
		return name
	}
	return parent + "/" + name
}

// Parent returns the token of the folder containing token.
func Parent(token string) string {
	dir := path.Dir(token)
	if dir == "." || dir == "/" {
		return RootToken
	}
	return dir
}

// Base returns the last segment of token.
func Base(token string) string {
	if token == RootToken {
		return ""
	}
	return path.Base(token)
}
