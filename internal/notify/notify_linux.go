//go:build linux

package notify

import (
	"github.com/godbus/dbus/v5"
)

const (
	urgencyNormal   byte = 1
	urgencyCritical byte = 2
)

// notificationHints builds the hint dictionary for opts.
func notificationHints(opts Options) map[string]dbus.Variant {
	hints := map[string]dbus.Variant{}
	if opts.Image != nil {
		hints["image-data"] = dbus.MakeVariant(*opts.Image)
	}
	if opts.IconPath != "" {
		hints["image-path"] = dbus.MakeVariant(opts.IconPath)
	}
	urgency := urgencyNormal
	if opts.Critical {
		urgency = urgencyCritical
	}
	hints["urgency"] = dbus.MakeVariant(urgency)
	return hints
}

// platformNotify sends a notification over the freedesktop notification interface.
func platformNotify(title, body string, opts Options) error {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return err
	}
	defer conn.Close()

	timeout := int32(5000)
	if opts.Critical {
		timeout = 0
	}
	obj := conn.Object("org.freedesktop.Notifications", "/org/freedesktop/Notifications")
	call := obj.Call("org.freedesktop.Notifications.Notify", 0,
		AppName, uint32(0), opts.IconPath, title, body, []string{}, notificationHints(opts), timeout)
	return call.Err
}
