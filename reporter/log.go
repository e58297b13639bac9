package reporter

import (
	"sync"
	"time"
)

type logRecorder struct {
	m    sync.Mutex
	logs []string
}

func (r *logRecorder) log(s string) {
	r.m.Lock()
	defer r.m.Unlock()
	r.logs = append(r.logs, s)
}

func (r *logRecorder) error(s string) {
	r.log(s)
}

func (r *logRecorder) all() []string {
	r.m.Lock()
	defer r.m.Unlock()
	logs := make([]string, len(r.logs))
	copy(logs, r.logs)
	return logs
}

type durationMeasurer struct {
	m       sync.Mutex
	started time.Time
	total   time.Duration
	running bool
}

func (d *durationMeasurer) start() {
	d.m.Lock()
	defer d.m.Unlock()
	if d.running {
		return
	}
	d.started = time.Now()
	d.running = true
}

func (d *durationMeasurer) stop() {
	d.m.Lock()
	defer d.m.Unlock()
	if !d.running {
		return
	}
	d.total += time.Since(d.started)
	d.running = false
}

func (d *durationMeasurer) get() time.Duration {
	d.m.Lock()
	defer d.m.Unlock()
	if d.running {
		return d.total + time.Since(d.started)
	}
	return d.total
}
