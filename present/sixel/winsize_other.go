//go:build !unix

package sixel

import (
	"context"
	"image"
)

func pixelSize(fd uintptr) (image.Point, bool) { return image.Point{}, false }

// watchResize waits for ctx; resizes are not signaled on this platform.
func watchResize(ctx context.Context, fn func()) { <-ctx.Done() }
