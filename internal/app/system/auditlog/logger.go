// internal/app/system/auditlog/logger.go
package auditlog

import (
	"context"
	"net/http"
	"strconv"

	"github.com/dalemusser/inclouds/internal/app/system/network"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// Event categories.
const (
	CategoryStorage   = "storage"
	CategoryFavorites = "favorites"
)

// Event types.
const (
	EventFolderCreated   = "folder_created"
	EventFileUploaded    = "file_uploaded"
	EventEntryRenamed    = "entry_renamed"
	EventFolderDeleted   = "folder_deleted"
	EventFileDeleted     = "file_deleted"
	EventFavoriteAdded   = "favorite_added"
	EventFavoriteRemoved = "favorite_removed"
	EventFavoritesPruned = "favorites_pruned"
)

// Event is one audited mutation.
type Event struct {
	Category      string
	EventType     string
	Path          string
	IP            string
	UserAgent     string
	RequestID     string
	Success       bool
	FailureReason string
	Details       map[string]string
}

// Config holds audit logging configuration.
type Config struct {
	// Mode controls where events go.
	// Values: "log" (zap), "off" (disabled)
	Mode string
}

// Logger records mutations of the storage tree and favorites as structured
// zap events.
type Logger struct {
	zapLog *zap.Logger
	config Config
}

// New creates a new audit Logger.
func New(zapLog *zap.Logger, config Config) *Logger {
	return &Logger{
		zapLog: zapLog,
		config: config,
	}
}

func (l *Logger) logToZap(event Event) {
	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("category", event.Category),
		zap.String("event_type", event.EventType),
		zap.String("path", event.Path),
		zap.Bool("success", event.Success),
		zap.String("ip", event.IP),
	}
	if event.RequestID != "" {
		fields = append(fields, zap.String("request_id", event.RequestID))
	}
	if event.FailureReason != "" {
		fields = append(fields, zap.String("failure_reason", event.FailureReason))
	}
	for k, v := range event.Details {
		fields = append(fields, zap.String("detail_"+k, v))
	}

	if event.Success {
		l.zapLog.Info("audit event", fields...)
	} else {
		l.zapLog.Warn("audit event", fields...)
	}
}

// Log records an audit event based on configuration.
// If the logger is nil, this is a no-op (allows tests to use nil audit logger).
func (l *Logger) Log(ctx context.Context, event Event) {
	if l == nil || l.config.Mode == "off" {
		return
	}
	if event.RequestID == "" {
		event.RequestID = chimw.GetReqID(ctx)
	}
	l.logToZap(event)
}

func (l *Logger) storage(r *http.Request, eventType, path string, err error, details map[string]string) {
	ev := Event{
		Category:  CategoryStorage,
		EventType: eventType,
		Path:      path,
		IP:        network.ClientIP(r),
		UserAgent: r.UserAgent(),
		Success:   err == nil,
		Details:   details,
	}
	if err != nil {
		ev.FailureReason = err.Error()
	}
	l.Log(r.Context(), ev)
}

// --- Storage Events ---

// FolderCreated logs a folder creation attempt.
func (l *Logger) FolderCreated(r *http.Request, path string, err error) {
	l.storage(r, EventFolderCreated, path, err, nil)
}

// FileUploaded logs an upload attempt.
func (l *Logger) FileUploaded(r *http.Request, path string, size int64, err error) {
	l.storage(r, EventFileUploaded, path, err, map[string]string{
		"size": strconv.FormatInt(size, 10),
	})
}

// EntryRenamed logs a rename attempt.
func (l *Logger) EntryRenamed(r *http.Request, from, to string, err error) {
	l.storage(r, EventEntryRenamed, from, err, map[string]string{"new_path": to})
}

// FolderDeleted logs a recursive folder deletion attempt.
func (l *Logger) FolderDeleted(r *http.Request, path string, err error) {
	l.storage(r, EventFolderDeleted, path, err, nil)
}

// FileDeleted logs a file deletion attempt.
func (l *Logger) FileDeleted(r *http.Request, path string, err error) {
	l.storage(r, EventFileDeleted, path, err, nil)
}

// --- Favorites Events ---

// FavoriteToggled logs a favorite being added or removed.
func (l *Logger) FavoriteToggled(r *http.Request, path, kind string, on bool) {
	eventType := EventFavoriteRemoved
	if on {
		eventType = EventFavoriteAdded
	}
	l.Log(r.Context(), Event{
		Category:  CategoryFavorites,
		EventType: eventType,
		Path:      path,
		IP:        network.ClientIP(r),
		UserAgent: r.UserAgent(),
		Success:   true,
		Details:   map[string]string{"kind": kind},
	})
}

// FavoritesPruned logs removal of stale favorites.
func (l *Logger) FavoritesPruned(r *http.Request, removed int) {
	l.Log(r.Context(), Event{
		Category:  CategoryFavorites,
		EventType: EventFavoritesPruned,
		IP:        network.ClientIP(r),
		UserAgent: r.UserAgent(),
		Success:   true,
		Details:   map[string]string{"removed": strconv.Itoa(removed)},
	})
}
