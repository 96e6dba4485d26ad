// internal/domain/models/sitesettings.go
package models

import "html/template"

// Default values used when no site settings are configured.
const (
	DefaultSiteName   = "InClouds"
	DefaultFooterHTML = `<p>InClouds file manager</p>`
)

// SiteSettings holds site-wide display settings. They come from config;
// there is no admin editor.
type SiteSettings struct {
	SiteName   string
	FooterHTML template.HTML
}

// Name returns the configured site name or the default.
func (s SiteSettings) Name() string {
	if s.SiteName == "" {
		return DefaultSiteName
	}
	return s.SiteName
}
