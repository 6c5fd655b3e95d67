package transfer

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"strings"

	"notebk/internal/log"
)

// Platform identifies the host environment.
type Platform string

const (
	PlatformAuto    Platform = "auto"
	PlatformNative  Platform = "native"
	PlatformBrowser Platform = "browser"
)

// ParsePlatform validates a HOST_PLATFORM value.
func ParsePlatform(s string) (Platform, error) {
	switch p := Platform(strings.ToLower(strings.TrimSpace(s))); p {
	case PlatformAuto, PlatformNative, PlatformBrowser:
		return p, nil
	case "":
		return PlatformAuto, nil
	default:
		return "", fmt.Errorf("unknown platform %q: want auto, native or browser", s)
	}
}

// Detector answers which host the process runs on. It is queried once per
// export.
type Detector func() Platform

// NewDetector resolves a configured platform. A fixed setting always wins;
// auto means native on Android and Termux hosts and browser elsewhere.
func NewDetector(setting Platform, getenv func(string) string) Detector {
	if getenv == nil {
		getenv = os.Getenv
	}
	return func() Platform {
		switch setting {
		case PlatformNative, PlatformBrowser:
			return setting
		}
		if runtime.GOOS == "android" || getenv("TERMUX_VERSION") != "" {
			return PlatformNative
		}
		return PlatformBrowser
	}
}

// Native exports through a share target and falls back to the clipboard.
type Native struct {
	Sharer    Sharer
	Clipboard Clipboard
}

func (n Native) Export(ctx context.Context, p Payload) Result {
	if n.Sharer != nil && n.Sharer.CanShare(ctx) {
		if p.Title == "" {
			p.Title = ShareTitle
		}
		if err := n.Sharer.Share(ctx, p); err != nil {
			log.FromContext(ctx).WarnContext(ctx, "Share failed", log.FieldChannel, ChannelShare, log.FieldError, err)
			return Result{Channel: ChannelShare, Message: MsgExportFailed}
		}
		return Result{Success: true, Channel: ChannelShare}
	}

	if n.Clipboard == nil {
		return Result{Message: MsgExportFailed}
	}
	if err := n.Clipboard.WriteText(ctx, string(p.Content)); err != nil {
		log.FromContext(ctx).WarnContext(ctx, "Clipboard write failed", log.FieldChannel, ChannelClipboard, log.FieldError, err)
		return Result{Channel: ChannelClipboard, Message: MsgExportFailed}
	}
	return Result{Success: true, Channel: ChannelClipboard, Message: MsgCopiedToClipboard}
}

// Browser exports by saving a named file.
type Browser struct {
	Downloader Downloader
}

func (b Browser) Export(ctx context.Context, p Payload) Result {
	if b.Downloader == nil {
		return Result{Message: MsgExportFailed}
	}
	loc, err := b.Downloader.Download(ctx, p)
	if err != nil {
		log.FromContext(ctx).WarnContext(ctx, "Download failed",
			log.FieldChannel, ChannelDownload, log.FieldFilename, p.Filename, log.FieldError, err)
		return Result{Channel: ChannelDownload, Message: MsgExportFailed}
	}
	return Result{Success: true, Channel: ChannelDownload, Location: loc}
}

// Adapter dispatches each export to exactly one host exporter.
type Adapter struct {
	detect  Detector
	native  Exporter
	browser Exporter
	logger  *log.Logger
}

func NewAdapter(detect Detector, native, browser Exporter, logger *log.Logger) *Adapter {
	if logger == nil {
		logger = log.Discard()
	}
	return &Adapter{
		detect:  detect,
		native:  native,
		browser: browser,
		logger:  logger.WithComponent(log.ComponentTransfer),
	}
}

// Export sends p through the exporter of the detected platform.
func (a *Adapter) Export(ctx context.Context, p Payload) Result {
	platform := a.detect()
	exp := a.browser
	if platform == PlatformNative {
		exp = a.native
	}
	if exp == nil {
		a.logger.ErrorContext(ctx, "No exporter for platform", "platform", platform)
		return Result{Message: MsgExportFailed}
	}

	res := exp.Export(log.IntoContext(ctx, a.logger), p)
	a.logger.InfoContext(ctx, "Backup exported",
		log.FieldOperation, log.OpExport,
		"platform", platform,
		log.FieldChannel, res.Channel,
		log.FieldSuccess, res.Success,
		log.FieldFilename, p.Filename)
	return res
}
