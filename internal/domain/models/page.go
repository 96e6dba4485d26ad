package models

// Page is a content page such as About.
type Page struct {
	Slug    string
	Title   string
	Content string // raw HTML; sanitized before display
}
