package macro

import (
	"log/slog"
	"maps"
	"math"
	"math/rand/v2"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/Alia5/kb2pad/hid"
	"github.com/Alia5/kb2pad/input"
)

// Emitter receives synthetic events. at is the scheduled time of the event, which may
// be earlier than the tick that delivers it.
//
// Emitters are called with the engine lock held and must not call back into the Engine.
type Emitter interface {
	EmitKey(key hid.Code, down bool, at int64) error
	EmitMouse(button input.MouseButton, down bool, at int64) error
	EmitWheel(delta int, at int64) error
}

// Status is the role a macro currently has.
type Status uint8

const (
	Idle Status = iota
	Recording
	Playing
)

func (s Status) String() string {
	switch s {
	case Recording:
		return "recording"
	case Playing:
		return "playing"
	default:
		return "idle"
	}
}

const (
	DefaultDoubleClickMs  = 400
	DefaultSimultaneousMs = 60
)

// Options tunes an Engine. Zero values select defaults.
type Options struct {
	// Roll returns a number in [0,100) for random conditions.
	Roll func() int64
	// ComboRepeatMs returns the global repeat interval for held combos.
	ComboRepeatMs func() int64
	// DoubleClickMs is the maximum gap between clicks counted as one multi-click.
	DoubleClickMs int64
	// SimultaneousMs is the maximum spread of presses counted as simultaneous.
	SimultaneousMs int64
}

type recording struct {
	macro *Macro
	last  int64
}

type frame struct {
	actions []Action
	idx     int
}

type player struct {
	macro   *Macro
	start   int64
	speed   float64
	cum     int64
	passCum int64
	stack   []frame
	vars    map[string]int64
	keys    map[hid.Code]struct{}
	buttons map[input.MouseButton]struct{}
}

type triggerState struct {
	lastFired []int64
	latched   []bool
}

// Engine owns every macro and combo. A single mutex serializes edits, trigger
// evaluation, recording and playback.
type Engine struct {
	mu      sync.Mutex
	logger  *slog.Logger
	state   *input.State
	emitter Emitter
	opts    Options

	nextID   ID
	macros   []*Macro
	combos   []*Combo
	triggers map[ID]*triggerState

	rec  *recording
	play *player

	// physical press times, -1 when released
	keyDownAt   [256]int64
	mouseDownAt [8]int64

	combo comboState

	blocked atomic.Pointer[[256]bool]
}

// NewEngine returns an engine reading key state from state and emitting through emitter.
func NewEngine(state *input.State, emitter Emitter, logger *slog.Logger, opts Options) *Engine {
	if opts.Roll == nil {
		opts.Roll = func() int64 { return rand.Int64N(100) }
	}
	if opts.ComboRepeatMs == nil {
		opts.ComboRepeatMs = func() int64 { return 100 }
	}
	if opts.DoubleClickMs <= 0 {
		opts.DoubleClickMs = DefaultDoubleClickMs
	}
	if opts.SimultaneousMs <= 0 {
		opts.SimultaneousMs = DefaultSimultaneousMs
	}
	if logger == nil {
		logger = slog.Default()
	}
	e := &Engine{
		logger:   logger,
		state:    state,
		emitter:  emitter,
		opts:     opts,
		triggers: map[ID]*triggerState{},
	}
	for i := range e.keyDownAt {
		e.keyDownAt[i] = -1
	}
	for i := range e.mouseDownAt {
		e.mouseDownAt[i] = -1
	}
	e.combo.init()
	return e
}

func (e *Engine) find(id ID) (int, *Macro) {
	for i, m := range e.macros {
		if m.ID == id {
			return i, m
		}
	}
	return -1, nil
}

// Create adds an empty macro and returns its id.
func (e *Engine) Create(name string) ID {
	return e.Add(Macro{Name: name, Speed: 1})
}

// Add stores a copy of m under a new id and returns the id.
func (e *Engine) Add(m Macro) ID {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.nextID++
	m = m.Clone()
	m.ID = e.nextID
	m.Speed = normalizeSpeed(m.Speed)
	e.macros = append(e.macros, &m)
	e.triggers[m.ID] = newTriggerState(len(m.Triggers))
	return m.ID
}

func newTriggerState(n int) *triggerState {
	ts := &triggerState{lastFired: make([]int64, n), latched: make([]bool, n)}
	for i := range ts.lastFired {
		ts.lastFired[i] = math.MinInt64
	}
	return ts
}

// Update replaces the macro with m.ID. A macro being played is stopped first.
func (e *Engine) Update(m Macro, now int64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, cur := e.find(m.ID)
	if cur == nil {
		return false
	}
	if e.play != nil && e.play.macro == cur {
		e.stopPlayback(now)
	}
	*cur = m.Clone()
	cur.Speed = normalizeSpeed(cur.Speed)
	e.triggers[m.ID] = newTriggerState(len(cur.Triggers))
	return true
}

// Delete removes a macro, stopping any recording or playback of it.
func (e *Engine) Delete(id ID, now int64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	i, m := e.find(id)
	if m == nil {
		return false
	}
	if e.play != nil && e.play.macro == m {
		e.stopPlayback(now)
	}
	if e.rec != nil && e.rec.macro == m {
		e.rec = nil
	}
	e.macros = slices.Delete(e.macros, i, i+1)
	delete(e.triggers, id)
	return true
}

// Get returns a copy of the macro with id.
func (e *Engine) Get(id ID) (Macro, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, m := e.find(id)
	if m == nil {
		return Macro{}, false
	}
	return m.Clone(), true
}

// List returns copies of every macro in creation order.
func (e *Engine) List() []Macro {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]Macro, len(e.macros))
	for i, m := range e.macros {
		out[i] = m.Clone()
	}
	return out
}

// Clear stops everything and removes all macros and combos.
func (e *Engine) Clear(now int64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.play != nil {
		e.stopPlayback(now)
	}
	e.combo.releaseAll(e, now)
	e.rec = nil
	e.macros = nil
	e.combos = nil
	e.triggers = map[ID]*triggerState{}
}

// Status reports whether id is idle, recording or playing.
func (e *Engine) Status(id ID) Status {
	e.mu.Lock()
	defer e.mu.Unlock()
	switch {
	case e.rec != nil && e.rec.macro.ID == id:
		return Recording
	case e.play != nil && e.play.macro.ID == id:
		return Playing
	}
	return Idle
}

// StartRecording begins a new take for id, replacing its actions. Any other recording
// ends, and playback of id is stopped.
func (e *Engine) StartRecording(id ID, now int64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, m := e.find(id)
	if m == nil {
		return false
	}
	if e.play != nil && e.play.macro == m {
		e.stopPlayback(now)
	}
	m.Actions = nil
	e.rec = &recording{macro: m, last: now}
	e.logger.Info("macro recording started", "macro", m.Name)
	return true
}

// StopRecording ends the active recording.
func (e *Engine) StopRecording() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.rec == nil {
		return false
	}
	e.logger.Info("macro recording stopped", "macro", e.rec.macro.Name, "actions", len(e.rec.macro.Actions))
	e.rec = nil
	return true
}

func (e *Engine) record(a Action, ts int64) {
	a.DelayMs = max(ts-e.rec.last, 0)
	e.rec.last = max(ts, e.rec.last)
	e.rec.macro.Actions = append(e.rec.macro.Actions, a)
}

// Play starts playback of id, stopping any other playback. A macro that is being
// recorded cannot be played.
func (e *Engine) Play(id ID, now int64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, m := e.find(id)
	if m == nil || (e.rec != nil && e.rec.macro == m) {
		return false
	}
	e.startPlayback(m, now)
	return true
}

// Stop ends playback and releases every key the playback still holds.
func (e *Engine) Stop(now int64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.play == nil {
		return false
	}
	e.stopPlayback(now)
	return true
}

// Blocked reports whether physical input for key is suppressed by the playing macro.
// It does not take the engine lock.
func (e *Engine) Blocked(key hid.Code) bool {
	b := e.blocked.Load()
	return b != nil && b[key]
}

func (e *Engine) startPlayback(m *Macro, now int64) {
	if e.play != nil {
		e.stopPlayback(now)
	}
	m.ExecutionCount++
	e.play = &player{
		macro:   m,
		start:   now,
		speed:   normalizeSpeed(m.Speed),
		stack:   []frame{{actions: m.Actions}},
		vars:    map[string]int64{},
		keys:    map[hid.Code]struct{}{},
		buttons: map[input.MouseButton]struct{}{},
	}
	if m.BlockKeys {
		var set [256]bool
		for _, k := range m.referencedKeys() {
			set[k] = true
		}
		e.blocked.Store(&set)
	}
	e.logger.Debug("macro playback started", "macro", m.Name, "speed", e.play.speed)
	e.advancePlayer(now)
}

func (e *Engine) stopPlayback(now int64) {
	p := e.play
	e.play = nil
	e.blocked.Store(nil)
	for _, k := range slices.Sorted(maps.Keys(p.keys)) {
		e.emitKey(k, false, now)
	}
	for _, b := range slices.Sorted(maps.Keys(p.buttons)) {
		e.emitMouse(b, false, now)
	}
	e.logger.Debug("macro playback stopped", "macro", p.macro.Name)
}

// scaled converts an unscaled offset into playback time.
func (p *player) scaled(ms int64) int64 {
	return int64(math.Round(float64(ms) / p.speed))
}

func (e *Engine) advancePlayer(now int64) {
	p := e.play
	for e.play == p && p != nil {
		if len(p.stack) == 0 {
			if !p.macro.Looping {
				e.stopPlayback(now)
				return
			}
			zero := p.cum == p.passCum
			p.passCum = p.cum
			p.stack = append(p.stack, frame{actions: p.macro.Actions})
			p.vars = map[string]int64{}
			if zero {
				// one pass per tick for macros without delays
				return
			}
			continue
		}

		top := &p.stack[len(p.stack)-1]
		if top.idx >= len(top.actions) {
			p.stack = p.stack[:len(p.stack)-1]
			continue
		}
		a := top.actions[top.idx]
		due := p.start + p.scaled(p.cum+a.DelayMs)
		if due > now {
			return
		}
		p.cum += a.DelayMs
		top.idx++
		e.exec(p, a, due, now)
	}
}

func (e *Engine) exec(p *player, a Action, at, now int64) {
	switch a.Kind {
	case ActionKeyDown:
		p.keys[a.Key] = struct{}{}
		e.emitKey(a.Key, true, at)
	case ActionKeyUp:
		delete(p.keys, a.Key)
		e.emitKey(a.Key, false, at)
	case ActionMouseDown:
		p.buttons[a.Button] = struct{}{}
		e.emitMouse(a.Button, true, at)
	case ActionMouseUp:
		delete(p.buttons, a.Button)
		e.emitMouse(a.Button, false, at)
	case ActionWheel:
		if err := e.emitter.EmitWheel(a.Wheel, at); err != nil {
			e.logger.Warn("synthetic wheel dropped", "error", err)
		}
	case ActionSetVariable:
		if a.Op == VarAdd {
			p.vars[a.Variable] += int64(a.Value)
		} else {
			p.vars[a.Variable] = int64(a.Value)
		}
	case ActionConditional:
		if a.Condition != nil && a.Condition.eval(playEnv{e: e, p: p, now: at}) {
			p.stack = append(p.stack, frame{actions: a.Children})
		}
	case ActionDelay:
	}
}

func (e *Engine) emitKey(k hid.Code, down bool, at int64) {
	if err := e.emitter.EmitKey(k, down, at); err != nil {
		e.logger.Warn("synthetic key dropped", "key", k, "down", down, "error", err)
	}
}

func (e *Engine) emitMouse(b input.MouseButton, down bool, at int64) {
	if err := e.emitter.EmitMouse(b, down, at); err != nil {
		e.logger.Warn("synthetic mouse button dropped", "button", b, "down", down, "error", err)
	}
}

type playEnv struct {
	e   *Engine
	p   *player
	now int64
}

func (v playEnv) keyDown(k hid.Code) bool {
	if v.e.state != nil {
		return v.e.state.AnyKeyDown(k)
	}
	return v.e.keyDownAt[k] >= 0
}

func (v playEnv) mouseDown(b input.MouseButton) bool {
	if v.e.state != nil {
		return v.e.state.MouseDown(b)
	}
	return b.Valid() && v.e.mouseDownAt[b] >= 0
}

func (v playEnv) variable(name string) int64 { return v.p.vars[name] }
func (v playEnv) roll() int64                { return v.e.opts.Roll() }
func (v playEnv) elapsedMs() int64           { return v.now - v.p.start }

// OnKeyEvent feeds a physical key event: it is recorded, evaluated against triggers
// and combo modifiers.
func (e *Engine) OnKeyEvent(key hid.Code, down bool, ts int64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if down {
		if e.keyDownAt[key] >= 0 {
			return
		}
		e.keyDownAt[key] = ts
	} else {
		e.keyDownAt[key] = -1
	}
	if e.rec != nil {
		kind := ActionKeyUp
		if down {
			kind = ActionKeyDown
		}
		e.record(Action{Kind: kind, Key: key}, ts)
		return
	}
	e.evalTriggers(inputEvent{key: key, down: down}, ts)
}

// OnMouseEvent feeds a physical mouse button event.
func (e *Engine) OnMouseEvent(b input.MouseButton, down bool, ts int64) {
	if !b.Valid() {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if down {
		e.mouseDownAt[b] = ts
	} else {
		e.mouseDownAt[b] = -1
	}
	if e.rec != nil {
		kind := ActionMouseUp
		if down {
			kind = ActionMouseDown
		}
		e.record(Action{Kind: kind, Button: b}, ts)
		return
	}
	e.evalTriggers(inputEvent{mouse: true, button: b, down: down}, ts)
	e.onComboMouse(b, down, ts)
}

// OnWheel feeds a physical wheel movement.
func (e *Engine) OnWheel(delta int, ts int64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.rec != nil {
		e.record(Action{Kind: ActionWheel, Wheel: delta}, ts)
		return
	}
	e.onComboWheel(delta, ts)
}

// Advance runs held triggers, playback and combos up to now. The realtime loop calls
// it once per tick.
func (e *Engine) Advance(now int64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.rec == nil {
		e.evalTriggers(inputEvent{tick: true}, now)
	}
	e.advancePlayer(now)
	e.advanceCombos(now)
}
