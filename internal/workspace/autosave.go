package workspace

import (
	"sync"
	"time"
)

// AutoSaveConfig controls the two save timers.
type AutoSaveConfig struct {
	Enabled       bool
	Interval      time.Duration
	DebounceDelay time.Duration
}

// AutoSavePatch is a partial AutoSaveConfig; nil fields keep the
// current value.
type AutoSavePatch struct {
	Enabled       *bool
	Interval      *time.Duration
	DebounceDelay *time.Duration
}

// autosaver owns the debounce and interval timers for one store.
// The two timers are independent: whichever fires first performs the
// save and the other keeps its own cadence. The save routine tolerates
// firing with nothing to save.
type autosaver struct {
	mu       sync.Mutex
	cfg      AutoSaveConfig
	save     func()
	debounce *time.Timer
	ticker   *time.Ticker
	done     chan struct{}
	running  bool
}

func newAutosaver(cfg AutoSaveConfig, save func()) *autosaver {
	if cfg.Interval <= 0 {
		cfg.Interval = 30 * time.Second
	}
	if cfg.DebounceDelay <= 0 {
		cfg.DebounceDelay = 2 * time.Second
	}
	return &autosaver{cfg: cfg, save: save}
}

func (a *autosaver) config() AutoSaveConfig {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.cfg
}

// configure merges the patch and, if the timers are running, tears
// them down and re-arms with the new settings.
func (a *autosaver) configure(patch AutoSavePatch) AutoSaveConfig {
	a.mu.Lock()
	if patch.Enabled != nil {
		a.cfg.Enabled = *patch.Enabled
	}
	if patch.Interval != nil && *patch.Interval > 0 {
		a.cfg.Interval = *patch.Interval
	}
	if patch.DebounceDelay != nil && *patch.DebounceDelay > 0 {
		a.cfg.DebounceDelay = *patch.DebounceDelay
	}
	cfg := a.cfg
	wasRunning := a.running
	a.stopLocked()
	if cfg.Enabled && (wasRunning || patch.Enabled != nil) {
		a.startLocked()
	}
	a.mu.Unlock()
	return cfg
}

// enable arms the interval timer; subsequent edits arm the debounce.
func (a *autosaver) enable() {
	a.mu.Lock()
	a.cfg.Enabled = true
	if !a.running {
		a.startLocked()
	}
	a.mu.Unlock()
}

// disable clears both timers.
func (a *autosaver) disable() {
	a.mu.Lock()
	a.cfg.Enabled = false
	a.stopLocked()
	a.mu.Unlock()
}

// stop clears both timers without touching the enabled flag; called
// on workspace teardown.
func (a *autosaver) stop() {
	a.mu.Lock()
	a.stopLocked()
	a.mu.Unlock()
}

// touch re-arms the debounce timer after an edit. Only the most
// recent edit's quiet period decides when the debounce save fires.
func (a *autosaver) touch() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.running {
		return
	}
	if a.debounce != nil {
		a.debounce.Stop()
	}
	a.debounce = time.AfterFunc(a.cfg.DebounceDelay, a.save)
}

func (a *autosaver) startLocked() {
	a.running = true
	a.ticker = time.NewTicker(a.cfg.Interval)
	a.done = make(chan struct{})
	go a.intervalLoop(a.ticker, a.done)
}

func (a *autosaver) stopLocked() {
	if !a.running {
		return
	}
	a.running = false
	if a.debounce != nil {
		a.debounce.Stop()
		a.debounce = nil
	}
	a.ticker.Stop()
	close(a.done)
	a.ticker = nil
	a.done = nil
}

func (a *autosaver) intervalLoop(ticker *time.Ticker, done chan struct{}) {
	for {
		select {
		case <-ticker.C:
			a.save()
		case <-done:
			return
		}
	}
}
