package storage

import "time"

// Progress receives the advancement of the synchronization of a mailbox
type Progress interface {
	// Update is called with the number of messages processed so far
	Update(done, total int)
	// Done is called once the mailbox is finished
	Done()
}

// ProgressFactory creates the progress of a mailbox
type ProgressFactory func(name string, total int) Progress

const progressInterval = time.Second

// throttledProgress only forwards an update when the percentage changes,
// or after progressInterval
type throttledProgress struct {
	target      Progress
	total       int
	lastPercent int
	lastUpdate  time.Time
	now         func() time.Time
}

func (e *Engine) startProgress(name string, total int) *throttledProgress {
	progress := &throttledProgress{
		total:      total,
		lastUpdate: e.now(),
		now:        e.now,
	}
	if e.newProgress != nil && total > 0 {
		progress.target = e.newProgress(name, total)
	}
	return progress
}

func (p *throttledProgress) Update(done int) {
	if p.target == nil || p.total <= 0 {
		return
	}
	percent := done * 100 / p.total
	now := p.now()
	if percent == p.lastPercent && now.Sub(p.lastUpdate) < progressInterval && done != p.total {
		return
	}
	p.lastPercent = percent
	p.lastUpdate = now
	p.target.Update(done, p.total)
}

func (p *throttledProgress) Done() {
	if p.target == nil {
		return
	}
	p.target.Done()
}
