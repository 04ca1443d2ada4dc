package domain

import (
	"fmt"
	"strings"
)

// Stage is a position in the four-step sales pipeline.
type Stage string

const (
	StageProspection   Stage = "PROSPECTION"
	StageQualification Stage = "QUALIFICATION"
	StageNegotiation   Stage = "NEGOTIATION"
	StageClosed        Stage = "CLOSED"
)

var stageOrder = []Stage{StageProspection, StageQualification, StageNegotiation, StageClosed}

// Stages returns the pipeline stages in board order.
func Stages() []Stage {
	out := make([]Stage, len(stageOrder))
	copy(out, stageOrder)
	return out
}

// IsValid reports whether s is one of the four pipeline stages.
func (s Stage) IsValid() bool {
	switch s {
	case StageProspection, StageQualification, StageNegotiation, StageClosed:
		return true
	}
	return false
}

// Label is the column title shown on the board.
func (s Stage) Label() string {
	switch s {
	case StageProspection:
		return "Prospection"
	case StageQualification:
		return "Qualification"
	case StageNegotiation:
		return "Negotiation"
	case StageClosed:
		return "Closed"
	}
	return string(s)
}

// ParseStage accepts the wire name in any case.
func ParseStage(raw string) (Stage, error) {
	s := Stage(strings.ToUpper(strings.TrimSpace(raw)))
	if !s.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidStage, raw)
	}
	return s, nil
}

// Status is the outcome of an opportunity.
type Status string

const (
	StatusInProgress Status = "IN_PROGRESS"
	StatusWon        Status = "WON"
	StatusLost       Status = "LOST"
)

// IsValid reports whether s is a known status.
func (s Status) IsValid() bool {
	switch s {
	case StatusInProgress, StatusWon, StatusLost:
		return true
	}
	return false
}

// IsTerminal reports whether s is WON or LOST.
func (s Status) IsTerminal() bool {
	return s == StatusWon || s == StatusLost
}

// ParseStatus accepts the wire name in any case.
func ParseStatus(raw string) (Status, error) {
	s := Status(strings.ToUpper(strings.TrimSpace(raw)))
	if !s.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, raw)
	}
	return s, nil
}

// ClosingStatuses are the statuses an owner may pick once an opportunity is CLOSED.
func ClosingStatuses() []Status {
	return []Status{StatusWon, StatusLost}
}

// Phase couples stage and status so that an open stage can only carry IN_PROGRESS.
//
// The fields are unexported: a Phase is either Open(stage) or Closed(status) and can
// only be built through OpenPhase, ClosedPhase, WithStage and WithStatus. The zero
// value is Open(PROSPECTION).
type Phase struct {
	stage  Stage
	status Status
}

// OpenPhase builds a phase for one of the three open stages.
func OpenPhase(stage Stage) (Phase, error) {
	if !stage.IsValid() {
		return Phase{}, fmt.Errorf("%w: %q", ErrInvalidStage, stage)
	}
	if stage == StageClosed {
		return Phase{}, fmt.Errorf("%w: CLOSED is not an open stage", ErrInvalidStage)
	}
	return Phase{stage: stage, status: StatusInProgress}, nil
}

// ClosedPhase builds a CLOSED phase carrying status.
func ClosedPhase(status Status) (Phase, error) {
	if !status.IsValid() {
		return Phase{}, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	return Phase{stage: StageClosed, status: status}, nil
}

// Stage returns the pipeline stage.
func (p Phase) Stage() Stage {
	if p.stage == "" {
		return StageProspection
	}
	return p.stage
}

// Status returns IN_PROGRESS for every open stage.
func (p Phase) Status() Status {
	if p.status == "" || p.Stage() != StageClosed {
		return StatusInProgress
	}
	return p.status
}

// IsClosed reports whether the phase sits in the CLOSED stage.
func (p Phase) IsClosed() bool {
	return p.Stage() == StageClosed
}

// WithStage moves the phase to stage. Leaving CLOSED resets the status to IN_PROGRESS,
// entering CLOSED starts at IN_PROGRESS and staying in CLOSED keeps the status.
func (p Phase) WithStage(stage Stage) (Phase, error) {
	if stage == StageClosed {
		if p.IsClosed() {
			return p, nil
		}
		return ClosedPhase(StatusInProgress)
	}
	return OpenPhase(stage)
}

// WithStatus sets the status of a CLOSED phase.
func (p Phase) WithStatus(status Status) (Phase, error) {
	if !p.IsClosed() {
		return p, ErrStatusRequiresClosed
	}
	return ClosedPhase(status)
}

// String renders "STAGE/STATUS".
func (p Phase) String() string {
	return string(p.Stage()) + "/" + string(p.Status())
}

// PhaseFromWire rebuilds a phase from the separate stage/status fields the backend
// sends. An open stage always normalizes to IN_PROGRESS.
func PhaseFromWire(stage Stage, status Status) (Phase, error) {
	if stage == "" {
		stage = StageProspection
	}
	if status == "" {
		status = StatusInProgress
	}
	if stage != StageClosed {
		return OpenPhase(stage)
	}
	return ClosedPhase(status)
}
