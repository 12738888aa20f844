package device

import (
	"log/slog"
	"strconv"
	"sync"

	"github.com/google/uuid"

	"github.com/srlehn/cellmatrix/control"
	"github.com/srlehn/cellmatrix/internal/logx"
	"github.com/srlehn/cellmatrix/matrix"
)

// Session is the state shared by a host and its application: the screen,
// the matrix parameters, the current event and the defined expressions.
// Hosts embed it to implement the accessor part of Device.
type Session struct {
	id          uuid.UUID
	logger      *slog.Logger
	screen      *matrix.Screen
	params      matrix.Parameters
	status      control.Status
	text        []byte
	expressions *Expressions

	frameMu     sync.Mutex
	frameStatus [2]uint16
	frameTitles []string
}

var _ logx.LoggerProvider = (*Session)(nil)

// NewSession creates a session with a blank screen sized to params.
func NewSession(params matrix.Parameters, logger *slog.Logger) *Session {
	if logger == nil {
		logger = logx.Discard()
	}
	id := uuid.New()
	return &Session{
		id:          id,
		logger:      logger.With(`session`, id.String()),
		screen:      matrix.NewScreen(params.YCells, params.XCells),
		params:      params,
		expressions: NewExpressions(),
	}
}

func (s *Session) ID() uuid.UUID                  { return s.id }
func (s *Session) Logger() *slog.Logger           { return s.logger }
func (s *Session) Screen() *matrix.Screen         { return s.screen }
func (s *Session) Dimensions() *matrix.Parameters { return &s.params }
func (s *Session) Status() *control.Status        { return &s.status }
func (s *Session) Expressions() *Expressions      { return s.expressions }

// TransferText returns the text of the current event. The result is empty
// (never nil) when TextLength is zero.
func (s *Session) TransferText() []byte {
	if s.status.TextLength == 0 || len(s.text) == 0 {
		return []byte{}
	}
	return s.text[:min(int(s.status.TextLength), len(s.text))]
}

func (s *Session) Define(expression string) int32 { return s.expressions.Define(expression) }

// Apply makes ev the current event. Resize events carrying matrix
// parameters replace the dimensions and resize the screen; their text is
// consumed.
func (s *Session) Apply(ev Event) {
	s.status = ev.Status
	s.status.TextLength = uint32(len(ev.Text))
	s.text = append(s.text[:0], ev.Text...)
	if !s.status.Is(control.ScreenResize) || len(ev.Text) != matrix.ParametersSize {
		return
	}
	p, err := matrix.DecodeParameters(ev.Text)
	if logx.IsErr(err, s, slog.LevelWarn) {
		return
	}
	s.params = p
	s.screen.Resize(p.YCells, p.XCells)
	s.status.TextLength = 0
	s.text = s.text[:0]
	logx.Debug(`screen resized`, s, `lines`, p.YCells, `span`, p.XCells)
}

// SetFrameStatus records the frame status reported by the application.
func (s *Session) SetFrameStatus(current, last uint16) {
	s.frameMu.Lock()
	s.frameStatus = [2]uint16{current, last}
	s.frameMu.Unlock()
	logx.Debug(`frame status`, s, `current`, current, `last`, last)
}

// SetFrameList records the frame titles reported by the application.
func (s *Session) SetFrameList(titles ...string) {
	s.frameMu.Lock()
	s.frameTitles = append(s.frameTitles[:0], titles...)
	s.frameMu.Unlock()
	logx.Debug(`frame list`, s, `titles`, titles)
}

// Frames returns the last reported frame status and titles.
func (s *Session) Frames() (current, last uint16, titles []string) {
	s.frameMu.Lock()
	defer s.frameMu.Unlock()
	return s.frameStatus[0], s.frameStatus[1], append([]string(nil), s.frameTitles...)
}

// Title formats the frame state for window titles.
func (s *Session) Title() string {
	current, last, titles := s.Frames()
	if int(current) < len(titles) {
		return titles[current]
	}
	if last == 0 {
		return ``
	}
	return `frame ` + strconv.Itoa(int(current)+1) + `/` + strconv.Itoa(int(last)+1)
}
