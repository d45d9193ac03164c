// Interactive APT shell
//
// Copyright (C) 2026  Go Migration Team
//
// This file may be distributed under the terms of the GNU GPLv3 license.

package main

import (
	"bytes"
	"strings"

	"github.com/chzyer/readline"
	"github.com/pterm/pterm"

	"aptpost/pkg/apt"
	"aptpost/pkg/config"
	"aptpost/pkg/macro"
	"aptpost/pkg/post"
	"aptpost/pkg/session"
)

// shell reads one APT statement per line and prints the blocks it
// produced. HELP lists the commands of the dialect, QUIT or <ctrl>D ends
// the program.
type shell struct {
	repl *readline.Instance
	p    *post.Processor
	out  *bytes.Buffer
	line int
}

func interactive(set *macro.Set, ctrl *config.Controller, opts []session.Option) error {
	initDisplay()

	repl, err := readline.New("apt> ")
	if err != nil {
		return err
	}
	defer repl.Close()

	var out bytes.Buffer
	sh := &shell{
		repl: repl,
		p:    post.New(set, session.New(ctrl, &out, opts...)),
		out:  &out,
	}
	pterm.Info.Printf("aptpost shell, dialect %s\n", set.Name())
	pterm.Info.Println("HELP lists commands, quit with QUIT or <ctrl>D")
	return sh.loop()
}

func initDisplay() {
	pterm.Info.Prefix = pterm.Prefix{
		Text:  " APT ",
		Style: pterm.NewStyle(pterm.BgCyan, pterm.FgBlack),
	}
	pterm.Error.Prefix = pterm.Prefix{
		Text:  " Error",
		Style: pterm.NewStyle(pterm.BgRed, pterm.FgBlack),
	}
}

func (sh *shell) loop() error {
	for {
		text, err := sh.repl.Readline()
		if err != nil { // io.EOF or interrupt
			break
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		sh.line++

		switch strings.ToUpper(text) {
		case "QUIT", "EXIT":
			return sh.close()
		case "HELP":
			pterm.Println(sh.p.Set().Usage())
			continue
		}

		cmd, err := apt.ParseLine(text, sh.line)
		if err != nil {
			pterm.Error.Println(err)
			continue
		}
		if err := sh.p.Process(cmd); err != nil {
			sh.flush()
			return err
		}
		sh.flush()
	}
	return sh.close()
}

// close writes the program end unless FINI was given.
func (sh *shell) close() error {
	err := sh.p.Close()
	sh.flush()
	pterm.Info.Println(sh.p.Summary())
	return err
}

func (sh *shell) flush() {
	if sh.out.Len() == 0 {
		return
	}
	pterm.Print(sh.out.String())
	sh.out.Reset()
}
