package driver

import "time"

// Stage describes a per-file checking phase.
type Stage string

const (
	// StageLoad reads the file into the FileSet.
	StageLoad Stage = "load"
	// StageLex tokenizes the file.
	StageLex Stage = "lex"
	// StageSniff runs the ruleset over the tokens.
	StageSniff Stage = "sniff"
	// StageCache covers a result served from the disk cache.
	StageCache Stage = "cache"
)

// Status captures progress state within a stage.
type Status string

const (
	// StatusQueued indicates the file is waiting for a worker.
	StatusQueued Status = "queued"
	// StatusWorking indicates the file is in the given stage.
	StatusWorking Status = "working"
	// StatusDone indicates the file finished.
	StatusDone Status = "done"
	// StatusError indicates the file could not be checked.
	StatusError Status = "error"
)

// Event reports progress for a file (or for the whole pass when File is empty).
type Event struct {
	File    string
	Stage   Stage
	Status  Status
	Err     error
	Elapsed time.Duration
}

// ProgressSink consumes progress events. Implementations must be safe
// for concurrent use; workers emit from their own goroutines.
type ProgressSink interface {
	OnEvent(Event)
}

// ChannelSink forwards events into a channel.
type ChannelSink struct {
	Ch chan<- Event
}

func (s ChannelSink) OnEvent(evt Event) {
	if s.Ch == nil {
		return
	}
	s.Ch <- evt
}

func emit(sink ProgressSink, file string, stage Stage, status Status, err error, elapsed time.Duration) {
	if sink == nil {
		return
	}
	sink.OnEvent(Event{File: file, Stage: stage, Status: status, Err: err, Elapsed: elapsed})
}
