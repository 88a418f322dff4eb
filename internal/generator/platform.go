package generator

import "github.com/gogetdata/ggd-docs/internal/models"

// Icons shown in the platform columns of the index table
const (
	LinuxSymbol  = `<i class="fa fa-linux"></i>`
	OSXSymbol    = `<i class="fa fa-apple"></i>`
	NoarchSymbol = `<i class="fa fa-desktop"></i>`
	DotSymbol    = `<i class="fa fa-dot-circle-o"></i>`
)

// Markers are the rendered platform cells of one record
type Markers struct {
	Linux  string
	OSX    string
	Noarch string
}

// PlatformMarkers resolves the platform cells of an entry. A noarch entry
// shows the noarch icon and a generic dot for linux and osx, never the
// per-OS icons.
func PlatformMarkers(e models.ChannelVersionEntry) Markers {
	if e.IsNoarch() {
		return Markers{
			Linux:  DotSymbol,
			OSX:    DotSymbol,
			Noarch: NoarchSymbol,
		}
	}

	var m Markers
	if e.HasPlatform(models.PlatformLinux) {
		m.Linux = LinuxSymbol
	}
	if e.HasPlatform(models.PlatformOSX) {
		m.OSX = OSXSymbol
	}
	return m
}
