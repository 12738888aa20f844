//go:build unix

package sixel

import (
	"context"
	"image"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sys/unix"
)

func pixelSize(fd uintptr) (image.Point, bool) {
	ws, err := unix.IoctlGetWinsize(int(fd), unix.TIOCGWINSZ)
	if err != nil || ws.Xpixel == 0 || ws.Ypixel == 0 {
		return image.Point{}, false
	}
	return image.Pt(int(ws.Xpixel), int(ws.Ypixel)), true
}

// watchResize calls fn on SIGWINCH until ctx ends.
func watchResize(ctx context.Context, fn func()) {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGWINCH)
	defer signal.Stop(sig)
	for {
		select {
		case <-ctx.Done():
			return
		case <-sig:
			fn()
		}
	}
}
