// internal/app/system/viewdata/viewdata.go
package viewdata

import (
	"html/template"
	"net/http"

	"github.com/dalemusser/inclouds/internal/app/system/flash"
	"github.com/dalemusser/inclouds/internal/app/system/htmlsanitize"
	"github.com/dalemusser/inclouds/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/httpnav"
	"github.com/gorilla/csrf"
)

// BaseVM contains common fields for all view models.
// Embed this struct in your feature-specific view models.
//
// Usage:
//
//	type myPageData struct {
//	    viewdata.BaseVM
//	    // page-specific fields...
//	}
//
//	data := myPageData{
//	    BaseVM: viewdata.NewBaseVM(w, r, "Page Title", "/library"),
//	    // page-specific fields...
//	}
type BaseVM struct {
	// Site settings (from config)
	SiteName   string
	FooterHTML template.HTML

	// Page context
	Title       string
	BackURL     string
	CurrentPath string

	// Security
	CSRFToken string // CSRF token for forms (use in hidden input field)

	// One-shot messages from the previous request
	Flashes []flash.Message
}

var (
	settings = models.SiteSettings{SiteName: models.DefaultSiteName}
	flashes  *flash.Manager
)

// Init sets the site settings and flash manager used by every page.
// Call this once at startup from bootstrap.
func Init(s models.SiteSettings, fm *flash.Manager) {
	settings = s
	flashes = fm
}

// Settings returns the site settings set by Init.
func Settings() models.SiteSettings {
	return settings
}

// New creates a BaseVM for the request and consumes pending flash messages.
// Call it before writing anything to w.
func New(w http.ResponseWriter, r *http.Request) BaseVM {
	footer := settings.FooterHTML
	if footer == "" {
		footer = models.DefaultFooterHTML
	}
	return BaseVM{
		SiteName:    settings.Name(),
		FooterHTML:  htmlsanitize.SanitizeToHTML(string(footer)),
		CurrentPath: httpnav.CurrentPath(r),
		CSRFToken:   csrf.Token(r),
		Flashes:     flashes.Pop(w, r),
	}
}

// NewBaseVM is New plus the page title and back link.
func NewBaseVM(w http.ResponseWriter, r *http.Request, title, backDefault string) BaseVM {
	vm := New(w, r)
	vm.Title = title
	vm.BackURL = httpnav.ResolveBackURL(r, backDefault)
	return vm
}
