// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"github.com/dalemusser/inclouds/internal/app/store/favorites"
	pagestore "github.com/dalemusser/inclouds/internal/app/store/pages"
	"github.com/dalemusser/inclouds/internal/app/store/tree"
	"github.com/dalemusser/inclouds/internal/app/system/auditlog"
	"github.com/dalemusser/inclouds/internal/app/system/flash"
	"github.com/dalemusser/inclouds/internal/app/system/remote"
)

// DBDeps holds the backends this WAFFLE app works against.
//
// There is no database: the storage tree on disk and the favorites JSON
// document are the persistent state. ConnectDB builds everything here and
// the later lifecycle hooks receive it.
type DBDeps struct {
	// Persistent state
	Tree      *tree.Store
	Favorites *favorites.Store
	Pages     *pagestore.Store

	// Remote viewer for office documents
	Remote remote.Uploader

	// Flash messages carried in a signed session cookie
	Flash *flash.Manager

	// Audit events for every mutation
	Audit *auditlog.Logger
}
