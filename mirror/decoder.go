package mirror

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/srlehn/cellmatrix/internal/consts"
	"github.com/srlehn/cellmatrix/internal/errors"
	"github.com/srlehn/cellmatrix/matrix"
)

// Kind is the type of a display stream message.
type Kind uint8

const (
	KindCells Kind = iota
	KindDispatch
	KindSynchronize
	KindReplicate
	KindFrameStatus
	KindFrameList
	KindDefine
	KindIntegrate
)

var kindNames = [...]string{
	KindCells:       `cells`,
	KindDispatch:    `dispatch`,
	KindSynchronize: `synchronize`,
	KindReplicate:   `replicate`,
	KindFrameStatus: `frame-status`,
	KindFrameList:   `frame-list`,
	KindDefine:      `define`,
	KindIntegrate:   `integrate`,
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return `unknown`
}

// Message is one decoded element of a display stream.
//
//	cells         Area, Cells
//	replicate     Area (destination), Source
//	frame-status  Current, Last
//	frame-list    Titles
//	define        Identity, Text
//	integrate     Identity, Text (resource), Area.Lines, Area.Span
type Message struct {
	Kind     Kind
	Area     matrix.Area
	Source   matrix.Area
	Cells    []matrix.Cell
	Identity int32
	Text     string
	Current  uint16
	Last     uint16
	Titles   []string
}

func (m Message) String() string {
	switch m.Kind {
	case KindCells:
		return fmt.Sprintf(`%s %s`, m.Kind, m.Area)
	case KindReplicate:
		return fmt.Sprintf(`%s %s <- %s`, m.Kind, m.Area, m.Source)
	case KindFrameStatus:
		return fmt.Sprintf(`%s %d/%d`, m.Kind, m.Current, m.Last)
	case KindFrameList:
		return fmt.Sprintf(`%s %s`, m.Kind, strings.Join(m.Titles, `, `))
	case KindDefine:
		return fmt.Sprintf(`%s %d %q`, m.Kind, m.Identity, m.Text)
	case KindIntegrate:
		return fmt.Sprintf(`%s %d %dx%d %s`, m.Kind, m.Identity, m.Area.Lines, m.Area.Span, m.Text)
	default:
		return m.Kind.String()
	}
}

// Decoder reads a display stream.
type Decoder struct {
	r     *bufio.Reader
	area  [matrix.AreaSize]byte
	cells []byte
}

func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{r: bufio.NewReader(r)}
}

// Next returns the next message. A stream ending between messages yields
// io.EOF.
func (d *Decoder) Next() (Message, error) {
	if d == nil {
		return Message{}, errors.NilReceiver()
	}
	hdr, err := d.readArea()
	if err != nil {
		return Message{}, err
	}
	if !hdr.Empty() {
		return d.readCells(hdr)
	}
	sig, err := d.readArea()
	if err != nil {
		return Message{}, errors.New(unexpected(err))
	}
	return d.readSignal(sig)
}

func (d *Decoder) readArea() (matrix.Area, error) {
	if _, err := io.ReadFull(d.r, d.area[:]); err != nil {
		return matrix.Area{}, errors.New(err)
	}
	return matrix.DecodeArea(d.area[:])
}

func (d *Decoder) readCells(area matrix.Area) (Message, error) {
	if area.Volume() > MaxCells {
		return Message{}, errors.WrapPrefix(consts.ErrProtocol, `cells message too large `+area.String(), 0)
	}
	n := area.Volume() * matrix.CellSize
	if cap(d.cells) < n {
		d.cells = make([]byte, n)
	}
	b := d.cells[:n]
	if _, err := io.ReadFull(d.r, b); err != nil {
		return Message{}, errors.New(unexpected(err))
	}
	cells, err := matrix.DecodeCells(b)
	if err != nil {
		return Message{}, err
	}
	return Message{Kind: KindCells, Area: area, Cells: cells}, nil
}

func (d *Decoder) readSignal(sig matrix.Area) (Message, error) {
	switch sig.Span {
	case SignalDispatch:
		return Message{Kind: KindDispatch}, nil
	case SignalSynchronize:
		return Message{Kind: KindSynchronize}, nil
	case SignalReplicate:
		dst, err := d.readArea()
		if err != nil {
			return Message{}, errors.New(unexpected(err))
		}
		src, err := d.readArea()
		if err != nil {
			return Message{}, errors.New(unexpected(err))
		}
		return Message{Kind: KindReplicate, Area: dst, Source: src}, nil
	case SignalFrameStatus:
		return Message{Kind: KindFrameStatus, Current: sig.TopOffset, Last: sig.LeftOffset}, nil
	case SignalFrameList:
		titles := make([]string, 0, sig.Lines)
		for range sig.Lines {
			t, err := d.readText()
			if err != nil {
				return Message{}, err
			}
			titles = append(titles, t)
		}
		return Message{Kind: KindFrameList, Titles: titles}, nil
	case SignalDefine:
		var b [4]byte
		if err := d.readFull(b[:]); err != nil {
			return Message{}, err
		}
		text, err := d.readText()
		if err != nil {
			return Message{}, err
		}
		return Message{Kind: KindDefine, Identity: int32(le.Uint32(b[:])), Text: text}, nil
	case SignalIntegrate:
		var b [8]byte
		if err := d.readFull(b[:]); err != nil {
			return Message{}, err
		}
		text, err := d.readText()
		if err != nil {
			return Message{}, err
		}
		return Message{
			Kind:     KindIntegrate,
			Identity: int32(le.Uint32(b[0:])),
			Area:     matrix.Area{Lines: le.Uint16(b[4:]), Span: le.Uint16(b[6:])},
			Text:     text,
		}, nil
	default:
		return Message{}, errors.WrapPrefix(consts.ErrUnknownSignal, fmt.Sprintf(`%#04x`, sig.Span), 0)
	}
}

func (d *Decoder) readFull(b []byte) error {
	if _, err := io.ReadFull(d.r, b); err != nil {
		return errors.New(unexpected(err))
	}
	return nil
}

func (d *Decoder) readText() (string, error) {
	var n [2]byte
	if err := d.readFull(n[:]); err != nil {
		return ``, err
	}
	b := make([]byte, le.Uint16(n[:]))
	if err := d.readFull(b); err != nil {
		return ``, err
	}
	return string(b), nil
}
