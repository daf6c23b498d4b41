package cmd

import (
	"os"

	"github.com/creativeprojects/imapmirror/storage"
	"github.com/creativeprojects/imapmirror/term"
	"github.com/pterm/pterm"
	xterm "golang.org/x/term"
)

type progressBar struct {
	pbar *pterm.ProgressbarPrinter
}

func newProgressBar(name string, total int) storage.Progress {
	pbar, err := pterm.DefaultProgressbar.WithTotal(total).WithTitle(name).WithRemoveWhenDone(true).Start()
	if err != nil {
		term.Debugf("cannot display progress: %v", err)
		return &progressBar{}
	}
	return &progressBar{
		pbar: pbar,
	}
}

func (p *progressBar) Update(done, total int) {
	if p.pbar == nil {
		return
	}
	if p.pbar.Total != total {
		p.pbar.Total = total
	}
	if done > p.pbar.Current {
		p.pbar.Add(done - p.pbar.Current)
	}
}

func (p *progressBar) Done() {
	if p.pbar == nil {
		return
	}
	_, _ = p.pbar.Stop()
}

// showProgress is false when quiet, when the protocol is displayed or when the output is not a terminal
func showProgress() bool {
	if global.quiet || term.Enabled(term.LevelTrace) {
		return false
	}
	return xterm.IsTerminal(int(os.Stdout.Fd()))
}
