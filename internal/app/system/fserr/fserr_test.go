package fserr

import (
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"testing"
)

func TestKindsMatchWithErrorsIs(t *testing.T) {
	tests := []struct {
		name string
		err  error
		kind error
	}{
		{"not found", NotFound("delete", "a.txt"), ErrNotFound},
		{"conflict", Conflict("rename", "b.txt"), ErrConflict},
		{"escape", PathEscape("create folder", "../etc"), ErrPathEscape},
		{"io", IO("upload", "c.txt", errors.New("disk full")), ErrIO},
		{"validation", Validation("create folder", "", "Folder name is required."), ErrValidation},
		{"corrupt", CorruptState("load favorites", "favorites.json", errors.New("bad json")), ErrCorruptState},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !errors.Is(tt.err, tt.kind) {
				t.Errorf("errors.Is(%v, %v) = false", tt.err, tt.kind)
			}
			if got := Kind(tt.err); got != tt.kind {
				t.Errorf("Kind() = %v, want %v", got, tt.kind)
			}
			wrapped := fmt.Errorf("handler: %w", tt.err)
			if got := Kind(wrapped); got != tt.kind {
				t.Errorf("Kind(wrapped) = %v, want %v", got, tt.kind)
			}
		})
	}
}

func TestFromOS(t *testing.T) {
	_, statErr := os.Stat("/definitely/not/here")
	if got := FromOS("stat", "x", statErr); !errors.Is(got, ErrNotFound) {
		t.Errorf("FromOS(not exist) = %v, want ErrNotFound", got)
	}
	if !errors.Is(FromOS("stat", "x", statErr), fs.ErrNotExist) {
		t.Error("FromOS should keep the underlying cause")
	}
	if got := FromOS("mkdir", "x", fs.ErrExist); !errors.Is(got, ErrConflict) {
		t.Errorf("FromOS(exist) = %v, want ErrConflict", got)
	}
	if got := FromOS("write", "x", fs.ErrPermission); !errors.Is(got, ErrIO) {
		t.Errorf("FromOS(permission) = %v, want ErrIO", got)
	}
	if FromOS("noop", "x", nil) != nil {
		t.Error("FromOS(nil) should be nil")
	}
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{NotFound("op", "p"), http.StatusNotFound},
		{Conflict("op", "p"), http.StatusConflict},
		{PathEscape("op", "p"), http.StatusBadRequest},
		{Validation("op", "p", "bad"), http.StatusBadRequest},
		{IO("op", "p", errors.New("x")), http.StatusInternalServerError},
		{errors.New("plain"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := HTTPStatus(tt.err); got != tt.want {
			t.Errorf("HTTPStatus(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestMessage(t *testing.T) {
	if got := Message(Validation("create folder", "", "Folder name is required.")); got != "Folder name is required." {
		t.Errorf("Message(validation) = %q", got)
	}
	if got := Message(Conflict("rename", "docs/b.txt")); got != "docs/b.txt already exists." {
		t.Errorf("Message(conflict) = %q", got)
	}
	got := Message(IO("upload", "a.txt", errors.New("/var/secret/path: no space")))
	if got != "Could not upload a.txt. Please try again." {
		t.Errorf("Message(io) = %q", got)
	}
	if Message(nil) != "" {
		t.Error("Message(nil) should be empty")
	}
}
