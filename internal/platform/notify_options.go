// Package platform sends desktop notifications through the host's
// notification center.
package platform

// AppName is the application name shown by notification centers.
const AppName = "swingmark"

// Options configures how a notification is displayed on the host platform.
type Options struct {
	// IconPath, when non-empty, points to an image file the notification center
	// should display with the notification if supported by the platform.
	IconPath string
	// Critical marks failures so they stay on screen where supported.
	Critical bool
}

// timeout returns the display time in milliseconds; zero means until
// dismissed.
func (o Options) timeout() int32 {
	if o.Critical {
		return 0
	}
	return 5000
}
