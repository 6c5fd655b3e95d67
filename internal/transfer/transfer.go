// Package transfer moves a serialized backup across the process boundary.
//
// A host offers some subset of the capabilities below. Each host environment
// has one Exporter built from the capabilities it has, and Adapter picks the
// exporter for the current platform on every call.
package transfer

import (
	"context"
	"errors"
	"io"
)

// ShareTitle is the title attached to shared backups.
const ShareTitle = "Backup de notebk"

// User-facing export messages.
const (
	MsgCopiedToClipboard = "Backup copiado al portapapeles"
	MsgExportFailed      = "Error al exportar el backup"
)

// ErrUnavailable reports a capability the host does not offer.
var ErrUnavailable = errors.New("capability unavailable")

// Payload is a serialized backup ready to leave the process.
type Payload struct {
	Filename string
	Title    string
	Content  []byte
}

// Channel names the way a backup left the process.
type Channel string

const (
	ChannelShare     Channel = "share"
	ChannelClipboard Channel = "clipboard"
	ChannelDownload  Channel = "download"
)

// Result describes the outcome of an export. A successful export may still
// carry an advisory Message.
type Result struct {
	Success  bool    `json:"success"`
	Channel  Channel `json:"channel,omitempty"`
	Message  string  `json:"message,omitempty"`
	Location string  `json:"location,omitempty"`
}

type (
	// Sharer hands the payload to a native share target.
	Sharer interface {
		CanShare(ctx context.Context) bool
		Share(ctx context.Context, p Payload) error
	}

	// Clipboard receives the payload text when sharing is unavailable.
	Clipboard interface {
		WriteText(ctx context.Context, text string) error
	}

	// Downloader saves the payload as a named file and reports where it went.
	Downloader interface {
		Download(ctx context.Context, p Payload) (string, error)
	}

	// Picker yields a single file-like input for import.
	Picker interface {
		Pick(ctx context.Context) (io.ReadCloser, error)
	}

	// Exporter is one host environment's way of exporting.
	Exporter interface {
		Export(ctx context.Context, p Payload) Result
	}
)
