package consts

import (
	"errors"
)

var (
	ErrNotImplemented = errors.New(`not implemented`)
	ErrNilReceiver    = errors.New(`nil receiver`)
	ErrNilParam       = errors.New(`nil parameter`)
	ErrNilImage       = errors.New(`nil image`)
	ErrClosed         = errors.New(`session closed`)
	ErrLayoutSize     = errors.New(`wrong layout size`)
	ErrProtocol       = errors.New(`mirror protocol violation`)
	ErrAtlasSize      = errors.New(`tile atlas smaller than initial record population`)
	ErrCellSize       = errors.New(`invalid cell pixel size`)
	ErrUnknownSignal  = errors.New(`unknown display signal`)

	ErrPlatformNotSupported = errors.New(`platform not supported`)
)

const (
	LibraryName = `cellmatrix`

	// EnvFont is the font description read at host startup
	// ("Family 12", "/path/to/font.ttf 16px").
	EnvFont = `TERMINAL_FONT`
	// EnvFontFile names a TrueType file overriding the embedded font.
	EnvFontFile = `CELLMATRIX_FONT`
)
