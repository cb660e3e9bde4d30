//go:build !linux

package notify

// platformNotify is a no-op off Linux.
func platformNotify(title, body string, opts Options) error {
	return nil
}
