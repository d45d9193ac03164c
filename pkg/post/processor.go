// APT program processor
//
// Copyright (C) 2026  Go Migration Team
//
// This file may be distributed under the terms of the GNU GPLv3 license.

// Package post runs APT programs through a dialect handler set.
//
// A Processor owns one session. It reads statements, starts the program
// when the source does not, dispatches every command and closes the
// program at the end of input. Problems confined to one command are
// counted and reported; only output failures stop the run.
package post

import (
	stderrors "errors"
	"fmt"
	"io"

	"aptpost/pkg/apt"
	"aptpost/pkg/errors"
	"aptpost/pkg/log"
	"aptpost/pkg/macro"
	"aptpost/pkg/session"
)

// Summary counts what a run did.
type Summary struct {
	Commands int // dispatched commands, skipped ones included
	Blocks   int // lines written
	Skipped  int // commands that produced a recoverable error
	Unknown  int // commands without handler
	Warnings int // diagnostic comments written
}

func (sum Summary) String() string {
	return fmt.Sprintf("%d commands, %d blocks, %d skipped, %d unknown, %d warnings",
		sum.Commands, sum.Blocks, sum.Skipped, sum.Unknown, sum.Warnings)
}

// Processor drives one program.
type Processor struct {
	set *macro.Set
	s   *session.Session
	log *log.Logger

	commands int
	skipped  int
	unknown  int
}

// New creates a processor dispatching to set.
func New(set *macro.Set, s *session.Session) *Processor {
	return &Processor{
		set: set,
		s:   s,
		log: s.Log.WithPrefix("post"),
	}
}

// Session returns the session the processor writes through.
func (p *Processor) Session() *session.Session { return p.s }

// Set returns the handler set.
func (p *Processor) Set() *macro.Set { return p.set }

// Run processes every statement of r and closes the program. The summary
// is valid even when an error is returned.
func (p *Processor) Run(r io.Reader) (Summary, error) {
	defer p.s.Metrics.RunSeconds.Timer(nil)()

	rd := apt.NewReader(r)
	if enc := rd.Encoding(); enc != "" {
		p.log.Debug("source encoding %s", enc)
	}
	for {
		cmd, err := rd.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			if !errors.Is(err, errors.ErrAPTParse) {
				return p.finish(), err
			}
			p.skipped++
			p.log.WithError(err).Warn("statement skipped")
			continue
		}
		if err := p.Process(cmd); err != nil {
			return p.finish(), err
		}
	}

	if err := p.Close(); err != nil {
		return p.finish(), err
	}
	sum := p.finish()
	p.log.Info("%s: %s", p.set.Name(), sum)
	return sum, nil
}

// Process dispatches a single command, running INIT first when the
// program has not been started. A PARTNO may precede INIT so that the
// part name reaches the header. The returned error is always fatal.
func (p *Processor) Process(cmd apt.Command) error {
	if !p.s.Initialized() && cmd.Major() != "INIT" && cmd.Major() != "PARTNO" {
		if err := p.set.Run(p.s, "INIT", nil); err != nil {
			if err := p.handle(apt.NewCommand("INIT", nil, nil), err); err != nil {
				return err
			}
		}
	}

	p.commands++
	p.s.Metrics.RecordCommand(cmd.Major())
	if err := p.set.Dispatch(p.s, cmd); err != nil {
		return p.handle(cmd, err)
	}
	return nil
}

// Close ends a started program with FINI unless the source did.
func (p *Processor) Close() error {
	if !p.s.Initialized() || p.s.Vars.Has(session.VarFinished) {
		return nil
	}
	p.log.Debug("no FINI in source, closing the program")
	if err := p.set.Run(p.s, "FINI", nil); err != nil {
		return p.handle(apt.NewCommand("FINI", nil, nil), err)
	}
	return nil
}

// Summary returns the counts so far.
func (p *Processor) Summary() Summary {
	return Summary{
		Commands: p.commands,
		Blocks:   p.s.Out.Lines(),
		Skipped:  p.skipped,
		Unknown:  p.unknown,
		Warnings: p.s.Warnings(),
	}
}

func (p *Processor) finish() Summary {
	sum := p.Summary()
	if blocks := uint64(sum.Blocks); blocks > p.s.Metrics.Blocks.Total() {
		p.s.Metrics.Blocks.Add(nil, blocks-p.s.Metrics.Blocks.Total())
	}
	return sum
}

// handle applies the error policy to err raised by cmd. It returns nil
// when processing may continue.
func (p *Processor) handle(cmd apt.Command, err error) error {
	var pe *errors.PostError
	if stderrors.As(err, &pe) {
		if pe.Line == 0 {
			pe.SetLine(cmd.Line())
		}
		if pe.Command == "" {
			pe.SetCommand(cmd.Major())
		}
	}
	if !errors.Recoverable(err) {
		p.log.WithError(err).Error("%s failed", cmd.Major())
		return err
	}

	p.skipped++
	entry := p.log.WithField("line", cmd.Line()).WithField("command", cmd.Major())
	switch errors.CodeOf(err) {
	case errors.ErrUnknownCommand:
		p.unknown++
		p.s.Metrics.RecordUnknown(cmd.Major())
		entry.Warn("no handler, command skipped")
	case errors.ErrArcGeometry:
		return p.s.Warn("%s skipped: %s%s", cmd.Major(), pe.Message, at(cmd))
	case errors.ErrInvalidParam:
		return p.s.Warn("%s%s", pe.Message, at(cmd))
	default:
		entry.WithError(err).Warn("command skipped")
	}
	return nil
}

func at(cmd apt.Command) string {
	if cmd.Line() > 0 {
		return fmt.Sprintf(" at line %d", cmd.Line())
	}
	return ""
}
