package control

import (
	"strings"

	"github.com/iancoleman/strcase"
)

// Instruction is an abstract application command dispatched through the
// instruction key range.
type Instruction int32

const (
	InstructionVoid Instruction = iota

	SessionStatus
	SessionClone
	SessionCreate
	SessionClose
	SessionSave
	SessionSynchronize
	SessionInterrupt
	SessionQuit
	SessionSwitch
	SessionRestore

	FrameStatus
	FrameClone
	FrameCreate
	FrameClose
	FrameSelect
	FrameNext
	FramePrevious
	FrameTranspose

	ResourceStatus
	ResourceClone
	ResourceCreate
	ResourceClose
	ResourceRelocate
	ResourceCycle
	ResourceOpen
	ResourceSave
	ResourceReload

	ElementsStatus
	ElementsClone
	ElementsSeek
	ElementsFind
	ElementsNext
	ElementsPrevious
	ElementsUndo
	ElementsRedo
	ElementsSelect
	ElementsInsert
	ElementsDelete
	ElementsSelectAll
	ElementsHover

	ScreenRefresh
	ScreenResize

	ViewScroll
	ViewPan

	TimeElapsed

	instructionSentinel
)

var instructionClasses = [...]string{`session`, `frame`, `resource`, `elements`, `screen`, `view`, `time`}

var instructionNames = [...]string{
	SessionStatus:      `SessionStatus`,
	SessionClone:       `SessionClone`,
	SessionCreate:      `SessionCreate`,
	SessionClose:       `SessionClose`,
	SessionSave:        `SessionSave`,
	SessionSynchronize: `SessionSynchronize`,
	SessionInterrupt:   `SessionInterrupt`,
	SessionQuit:        `SessionQuit`,
	SessionSwitch:      `SessionSwitch`,
	SessionRestore:     `SessionRestore`,
	FrameStatus:        `FrameStatus`,
	FrameClone:         `FrameClone`,
	FrameCreate:        `FrameCreate`,
	FrameClose:         `FrameClose`,
	FrameSelect:        `FrameSelect`,
	FrameNext:          `FrameNext`,
	FramePrevious:      `FramePrevious`,
	FrameTranspose:     `FrameTranspose`,
	ResourceStatus:     `ResourceStatus`,
	ResourceClone:      `ResourceClone`,
	ResourceCreate:     `ResourceCreate`,
	ResourceClose:      `ResourceClose`,
	ResourceRelocate:   `ResourceRelocate`,
	ResourceCycle:      `ResourceCycle`,
	ResourceOpen:       `ResourceOpen`,
	ResourceSave:       `ResourceSave`,
	ResourceReload:     `ResourceReload`,
	ElementsStatus:     `ElementsStatus`,
	ElementsClone:      `ElementsClone`,
	ElementsSeek:       `ElementsSeek`,
	ElementsFind:       `ElementsFind`,
	ElementsNext:       `ElementsNext`,
	ElementsPrevious:   `ElementsPrevious`,
	ElementsUndo:       `ElementsUndo`,
	ElementsRedo:       `ElementsRedo`,
	ElementsSelect:     `ElementsSelect`,
	ElementsInsert:     `ElementsInsert`,
	ElementsDelete:     `ElementsDelete`,
	ElementsSelectAll:  `ElementsSelectAll`,
	ElementsHover:      `ElementsHover`,
	ScreenRefresh:      `ScreenRefresh`,
	ScreenResize:       `ScreenResize`,
	ViewScroll:         `ViewScroll`,
	ViewPan:            `ViewPan`,
	TimeElapsed:        `TimeElapsed`,
}

// Valid reports whether i names an instruction.
func (i Instruction) Valid() bool { return i > InstructionVoid && i < instructionSentinel }

// Name is the Go identifier of the instruction.
func (i Instruction) Name() string {
	if !i.Valid() {
		return ``
	}
	return instructionNames[i]
}

func (i Instruction) split() (class, op string) {
	snake := strcase.ToSnake(i.Name())
	for _, c := range instructionClasses {
		if strings.HasPrefix(snake, c+`_`) {
			return c, strings.ReplaceAll(strings.TrimPrefix(snake, c+`_`), `_`, ``)
		}
	}
	return ``, snake
}

// Class is the instruction class, "session" for SessionClose.
func (i Instruction) Class() string { c, _ := i.split(); return c }

// Operation is the operation within the class, "close" for SessionClose.
func (i Instruction) Operation() string { _, op := i.split(); return op }

// String is "class/operation".
func (i Instruction) String() string {
	if !i.Valid() {
		return `void`
	}
	c, op := i.split()
	return c + `/` + op
}

// ParseInstruction is the inverse of String.
func ParseInstruction(s string) (Instruction, bool) {
	for i := SessionStatus; i < instructionSentinel; i++ {
		if i.String() == s {
			return i, true
		}
	}
	return InstructionVoid, false
}

// Instructions lists all instructions in dispatch order.
func Instructions() []Instruction {
	ret := make([]Instruction, 0, instructionSentinel-1)
	for i := SessionStatus; i < instructionSentinel; i++ {
		ret = append(ret, i)
	}
	return ret
}
