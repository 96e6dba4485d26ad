// Package preview decides how a file is presented in the browser based on
// its extension, and which Content-Type it is served with.
package preview

import (
	"path"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// Kind is the presentation used for a file.
type Kind string

const (
	KindImage  Kind = "image"
	KindVideo  Kind = "video"
	KindAudio  Kind = "audio"
	KindOffice Kind = "office"
	KindText   Kind = "text"
	KindHTML   Kind = "html"
	KindOther  Kind = "other"
)

// Info is the presentation decision for one file name.
type Info struct {
	Kind Kind
	MIME string // known MIME type for the extension, empty if unknown
}

// Inline reports whether the browser can render the file directly.
func (i Info) Inline() bool {
	switch i.Kind {
	case KindImage, KindVideo, KindAudio, KindText, KindHTML:
		return true
	}
	return false
}

// RemoteLink reports whether the file is offered through the remote
// viewer link instead of an inline preview.
func (i Info) RemoteLink() bool {
	return i.Kind == KindOffice || i.Kind == KindOther
}

var byExt = map[string]Info{
	".png":  {KindImage, "image/png"},
	".jpg":  {KindImage, "image/jpeg"},
	".jpeg": {KindImage, "image/jpeg"},
	".gif":  {KindImage, "image/gif"},

	".mp4": {KindVideo, "video/mp4"},
	".mov": {KindVideo, "video/quicktime"},
	".avi": {KindVideo, "video/x-msvideo"},

	".mp3": {KindAudio, "audio/mpeg"},
	".wav": {KindAudio, "audio/wav"},

	".doc":  {KindOffice, "application/msword"},
	".docx": {KindOffice, "application/vnd.openxmlformats-officedocument.wordprocessingml.document"},
	".xls":  {KindOffice, "application/vnd.ms-excel"},
	".xlsx": {KindOffice, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"},
	".ppt":  {KindOffice, "application/vnd.ms-powerpoint"},
	".pptx": {KindOffice, "application/vnd.openxmlformats-officedocument.presentationml.presentation"},

	".txt":  {KindText, "text/plain; charset=utf-8"},
	".md":   {KindText, "text/markdown; charset=utf-8"},
	".csv":  {KindText, "text/csv; charset=utf-8"},
	".json": {KindText, "application/json"},
	".log":  {KindText, "text/plain; charset=utf-8"},

	".html": {KindHTML, "text/html; charset=utf-8"},
	".htm":  {KindHTML, "text/html; charset=utf-8"},
}

// For returns the presentation for a file name. Matching ignores case.
func For(name string) Info {
	if info, ok := byExt[strings.ToLower(path.Ext(name))]; ok {
		return info
	}
	return Info{Kind: KindOther}
}

// ContentType returns the type to serve the file at abs with. The known
// extension table wins; otherwise the content is sniffed.
func ContentType(abs, name string) string {
	if info := For(name); info.MIME != "" {
		return info.MIME
	}
	m, err := mimetype.DetectFile(abs)
	if err != nil {
		return "application/octet-stream"
	}
	return m.String()
}

// InlineContentType is ContentType made safe for inline display. Markup
// types are downgraded to plain text so uploaded pages never execute in
// the application's origin.
func InlineContentType(abs, name string) string {
	ct := ContentType(abs, name)
	base := strings.TrimSpace(strings.SplitN(ct, ";", 2)[0])
	switch base {
	case "text/html", "application/xhtml+xml", "image/svg+xml", "text/xml", "application/xml", "text/javascript", "application/javascript":
		return "text/plain; charset=utf-8"
	}
	return ct
}

// Icon returns an icon name for the file list.
func Icon(name string) string {
	info := For(name)
	switch info.Kind {
	case KindImage, KindVideo, KindAudio:
		return string(info.Kind)
	case KindOffice:
		switch {
		case strings.Contains(info.MIME, "spreadsheet") || strings.Contains(info.MIME, "excel"):
			return "spreadsheet"
		case strings.Contains(info.MIME, "presentation") || strings.Contains(info.MIME, "powerpoint"):
			return "presentation"
		}
		return "document"
	case KindText, KindHTML:
		return "text"
	}
	if strings.EqualFold(path.Ext(name), ".pdf") {
		return "pdf"
	}
	return "file"
}
