// Package notify sends desktop notifications about captures.
package notify

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"github.com/example/scrcap/internal/logger"
)

// Event identifies a notification trigger.
type Event string

const (
	// EventCapture emits a notification when a capture completes.
	EventCapture Event = "capture"
	// EventSave emits a notification when an image is persisted to disk.
	EventSave Event = "save"
	// EventCopy emits a notification when data is copied to the clipboard.
	EventCopy Event = "copy"
	// EventAutoFailure emits a notification when auto capture stops after an error.
	EventAutoFailure Event = "auto_failure"
)

// AppName is reported to the notification server.
const AppName = "scrcap"

// Options carries the optional parts of a notification.
type Options struct {
	// IconPath points to an image file shown with the notification.
	IconPath string
	// Image is sent inline as the image-data hint.
	Image *ImageData
	// Critical asks the server to keep the notification until dismissed.
	Critical bool
}

// send delivers one notification. Tests replace it.
var send = platformNotify

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
		Title: AppName,
		Events: map[Event]EventPreference{
			EventCapture:     {Template: "Captured %s"},
			EventSave:        {Template: "Saved %s"},
			EventCopy:        {Template: "Copied %s to clipboard"},
			EventAutoFailure: {Template: "Auto capture stopped: %s"},
		},
	}
}

// Notifier sends desktop notifications for the enabled events.
type Notifier struct {
	prefs   Preferences
	enabled map[Event]bool
}

// New creates a new Notifier using the provided preferences.
func New(prefs Preferences) *Notifier {
	cloned := Preferences{Title: prefs.Title, Events: make(map[Event]EventPreference, len(prefs.Events))}
	for k, v := range prefs.Events {
		cloned.Events[k] = v
	}
	return &Notifier{prefs: cloned, enabled: make(map[Event]bool)}
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

// Capture sends a capture notification with a thumbnail of img.
func (n *Notifier) Capture(detail string, img image.Image) {
	if !n.enabledFor(EventCapture) {
		return
	}
	n.dispatch(EventCapture, detail, Options{Image: thumbnail(img)})
}

// Save sends a save notification naming the written file.
func (n *Notifier) Save(path string, img image.Image) {
	if !n.enabledFor(EventSave) {
		return
	}
	detail := strings.TrimSpace(path)
	opts := Options{Image: thumbnail(img)}
	if abs, err := filepath.Abs(path); err == nil {
		detail = abs
		if _, statErr := os.Stat(abs); statErr == nil && opts.Image == nil {
			opts.IconPath = abs
		}
	}
	n.dispatch(EventSave, detail, opts)
}

// Copy sends a clipboard notification.
func (n *Notifier) Copy(detail string) {
	if !n.enabledFor(EventCopy) {
		return
	}
	if strings.TrimSpace(detail) == "" {
		detail = "image"
	}
	n.dispatch(EventCopy, detail, Options{})
}

// AutoFailure reports the error that stopped auto capture.
func (n *Notifier) AutoFailure(err error) {
	if err == nil || !n.enabledFor(EventAutoFailure) {
		return
	}
	n.dispatch(EventAutoFailure, err.Error(), Options{Critical: true})
}

func (n *Notifier) enabledFor(event Event) bool {
	if n == nil || n.enabled == nil {
		return false
	}
	return n.enabled[event]
}

func (n *Notifier) dispatch(event Event, detail string, opts Options) {
	template := strings.TrimSpace(n.template(event))
	if template == "" {
		return
	}
	body := strings.TrimSpace(fmt.Sprintf(template, strings.TrimSpace(detail)))
	if body == "" {
		return
	}
	if err := send(n.prefs.Title, body, opts); err != nil {
		logger.WithComponent("notify").Warn().Err(err).Str("event", string(event)).Msg("notification failed")
	}
}

func (n *Notifier) template(event Event) string {
	if pref, ok := n.prefs.Events[event]; ok {
		return pref.Template
	}
	return ""
}
