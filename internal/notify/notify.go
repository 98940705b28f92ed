// Package notify turns editor events into desktop notifications.
package notify

import (
	"fmt"
	"image"
	"image/png"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/example/swingmark/internal/config"
	"github.com/example/swingmark/internal/platform"
)

// Event identifies a notification trigger.
type Event string

const (
	// EventSave fires when queued changes reach the repository.
	EventSave Event = "save"
	// EventExport fires when an annotated frame, PDF or JSON file is written.
	EventExport Event = "export"
	// EventCopy fires when data is copied to the clipboard.
	EventCopy Event = "copy"
	// EventFailure fires when a save or export fails.
	EventFailure Event = "failure"
)

// EventPreference describes formatting for a notification event.
type EventPreference struct {
	Template string
}

// Preferences describes notification behaviour loaded from configuration.
type Preferences struct {
	Title  string
	Events map[Event]EventPreference
}

// DefaultPreferences returns the default notification settings.
func DefaultPreferences() Preferences {
	return Preferences{
		Title: "Swingmark",
		Events: map[Event]EventPreference{
			EventSave:    {Template: "Saved %s"},
			EventExport:  {Template: "Exported %s"},
			EventCopy:    {Template: "Copied %s to clipboard"},
			EventFailure: {Template: "Failed: %s"},
		},
	}
}

// LoadPreferences reads templates from SWINGMARK_NOTIFY_* variables.
func LoadPreferences(getenv func(string) string) Preferences {
	prefs := DefaultPreferences()
	if v := strings.TrimSpace(getenv("SWINGMARK_NOTIFY_TITLE")); v != "" {
		prefs.Title = v
	}
	for _, event := range []Event{EventSave, EventExport, EventCopy, EventFailure} {
		key := "SWINGMARK_NOTIFY_" + strings.ToUpper(string(event)) + "_TEXT"
		if v := strings.TrimSpace(getenv(key)); v != "" {
			prefs.Events[event] = EventPreference{Template: v}
		}
	}
	return prefs
}

// Sender delivers one notification. platform.Notify is the default.
type Sender func(title, body string, opts platform.Options) error

// Notifier sends OS-level notifications based on the configured preferences.
// A nil Notifier is valid and sends nothing.
type Notifier struct {
	prefs   Preferences
	enabled map[Event]bool
	send    Sender
}

// New creates a new Notifier using the provided preferences.
func New(prefs Preferences) *Notifier {
	cloned := Preferences{Title: prefs.Title, Events: make(map[Event]EventPreference, len(prefs.Events))}
	for k, v := range prefs.Events {
		cloned.Events[k] = v
	}
	return &Notifier{prefs: cloned, enabled: make(map[Event]bool), send: platform.Notify}
}

// FromConfig enables the events switched on in cfg's [notify] section.
func FromConfig(cfg *config.Config, prefs Preferences) *Notifier {
	n := New(prefs)
	n.Enable(EventSave, cfg.Notify.Save)
	n.Enable(EventExport, cfg.Notify.Export)
	n.Enable(EventCopy, cfg.Notify.Copy)
	n.Enable(EventFailure, cfg.Notify.Failure)
	return n
}

// WithSender replaces the delivery function.
func (n *Notifier) WithSender(s Sender) *Notifier {
	n.send = s
	return n
}

// Enable toggles the notifier for the provided event.
func (n *Notifier) Enable(event Event, enabled bool) {
	if n == nil {
		return
	}
	if n.enabled == nil {
		n.enabled = make(map[Event]bool)
	}
	n.enabled[event] = enabled
}

// Save reports how many changes for video reached the repository.
func (n *Notifier) Save(video string, changes int) {
	if !n.enabledFor(EventSave) {
		return
	}
	noun := "changes"
	if changes == 1 {
		noun = "change"
	}
	n.dispatch(EventSave, fmt.Sprintf("%d %s to %s", changes, noun, video), platform.Options{})
}

// Export reports a written file. A rendered frame, when given, becomes the
// notification icon.
func (n *Notifier) Export(path string, preview image.Image) {
	if !n.enabledFor(EventExport) {
		return
	}
	detail := strings.TrimSpace(path)
	if abs, err := filepath.Abs(path); err == nil {
		detail = abs
	}
	opts := platform.Options{}
	if preview != nil {
		if icon, cleanup, err := createPreview(preview); err != nil {
			log.Printf("notification preview: %v", err)
		} else {
			defer cleanup()
			opts.IconPath = icon
		}
	}
	n.dispatch(EventExport, detail, opts)
}

// Copy sends a clipboard notification.
func (n *Notifier) Copy(detail string) {
	if !n.enabledFor(EventCopy) {
		return
	}
	if strings.TrimSpace(detail) == "" {
		detail = "frame"
	}
	n.dispatch(EventCopy, detail, platform.Options{})
}

// Failure reports a failed operation.
func (n *Notifier) Failure(op string, err error) {
	if err == nil || !n.enabledFor(EventFailure) {
		return
	}
	n.dispatch(EventFailure, fmt.Sprintf("%s: %v", op, err), platform.Options{Critical: true})
}

func (n *Notifier) enabledFor(event Event) bool {
	if n == nil || n.enabled == nil {
		return false
	}
	return n.enabled[event]
}

func (n *Notifier) dispatch(event Event, detail string, opts platform.Options) {
	template := strings.TrimSpace(n.prefs.Events[event].Template)
	if template == "" || n.send == nil {
		return
	}
	body := strings.TrimSpace(fmt.Sprintf(template, strings.TrimSpace(detail)))
	if body == "" {
		return
	}
	if err := n.send(n.prefs.Title, body, opts); err != nil {
		log.Printf("notification %s: %v", event, err)
	}
}

func createPreview(img image.Image) (string, func(), error) {
	f, err := os.CreateTemp("", "swingmark-preview-*.png")
	if err != nil {
		return "", nil, err
	}
	path := f.Name()
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return "", nil, err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return "", nil, err
	}
	cleanup := func() {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			log.Printf("remove preview: %v", err)
		}
	}
	return path, cleanup, nil
}
