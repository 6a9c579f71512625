// Package playback renders a scheduled MIDI song through a software
// synthesizer into the system audio device.
package playback

import (
	"context"
	"encoding/binary"
	"fmt"
	"log/slog"
	"math"
	"os"
	"sync"
	"sync/atomic"

	"github.com/ebitengine/oto/v3"
	"github.com/sinshu/go-meltysynth/meltysynth"

	"github.com/mkalinski/sona/internal/app"
	"github.com/mkalinski/sona/internal/app/midifile"
)

const (
	defaultSampleRate = 44_100
	channelCount      = 2
	bytesPerFrame     = channelCount * 4 // stereo float32
)

// synth is the subset of the synthesizer the engine drives.
// *meltysynth.Synthesizer implements it.
type synth interface {
	ProcessMidiMessage(channel, command, data1, data2 int32)
	Render(left, right []float32)
	NoteOffAll(immediate bool)
	Reset()
}

type cmdKind uint

const (
	cmdPlay cmdKind = iota
	cmdPause
	cmdStop
	cmdRewind
)

type command struct {
	kind          cmdKind
	midiPath      string
	soundFontPath string
}

// Engine is the playback engine. Transport commands are asynchronous;
// progress is published through lock-free counters so the UI can poll
// it every frame. Callbacks fire on engine goroutines, never on the
// Fyne event loop.
type Engine struct {
	// Callbacks, set before Start.
	OnStateChanged func(app.PlaybackState)
	OnSongLoaded   func(*app.Song)
	OnError        func(error)

	sampleRate int
	commands   chan command
	closeC     chan struct{}
	closeOnce  sync.Once

	otoCtx *oto.Context
	player *oto.Player

	mu            sync.Mutex // guards the render state below, shared with Read
	synth         synth
	schedule      *Schedule
	index         int
	playing       bool
	left, right   []float32
	lastMIDIPath  string
	lastSFPath    string
	soundFont     *meltysynth.SoundFont
	makeSynth     func(sf *meltysynth.SoundFont) (synth, error)
	loadSoundFont func(path string) (*meltysynth.SoundFont, error)

	samplesPlayed   atomic.Uint64
	totalSamples    atomic.Uint64
	maxTick         atomic.Uint64
	lastEventSample atomic.Uint64
	lastEventTick   atomic.Uint64
	nextEventSample atomic.Uint64
	nextEventTick   atomic.Uint64
}

var _ app.PlaybackEngine = (*Engine)(nil)

// New returns a new engine rendering at the default sample rate.
func New() *Engine {
	e := &Engine{
		sampleRate: defaultSampleRate,
		commands:   make(chan command, 16),
		closeC:     make(chan struct{}),
	}
	e.makeSynth = func(sf *meltysynth.SoundFont) (synth, error) {
		settings := meltysynth.NewSynthesizerSettings(int32(e.sampleRate))
		return meltysynth.NewSynthesizer(sf, settings)
	}
	e.loadSoundFont = loadSoundFont
	return e
}

// Start opens the audio device and launches the command loop.
// The context cancels the loop; Close releases the device.
func (e *Engine) Start(ctx context.Context) error {
	op := &oto.NewContextOptions{
		SampleRate:   e.sampleRate,
		ChannelCount: channelCount,
		Format:       oto.FormatFloat32LE,
	}
	otoCtx, ready, err := oto.NewContext(op)
	if err != nil {
		return fmt.Errorf("open audio device: %w", err)
	}
	<-ready
	e.otoCtx = otoCtx
	e.player = otoCtx.NewPlayer(e)
	e.player.Play()
	go e.run(ctx)
	slog.Info("Playback engine started", "sampleRate", e.sampleRate)
	return nil
}

// Close stops the command loop and the audio device.
func (e *Engine) Close() error {
	e.closeOnce.Do(func() {
		close(e.closeC)
	})
	if e.player != nil {
		return e.player.Close()
	}
	return nil
}

// Play starts or resumes playback. When either path differs from the
// loaded one the song and soundfont are (re-)loaded first.
func (e *Engine) Play(midiPath, soundFontPath string) {
	e.send(command{kind: cmdPlay, midiPath: midiPath, soundFontPath: soundFontPath})
}

// Pause suspends playback and silences sounding notes.
func (e *Engine) Pause() {
	e.send(command{kind: cmdPause})
}

// Stop suspends playback and resets the position to the beginning.
func (e *Engine) Stop() {
	e.send(command{kind: cmdStop})
}

// Rewind resets the position to the beginning without changing the
// transport state.
func (e *Engine) Rewind() {
	e.send(command{kind: cmdRewind})
}

// Progress returns a snapshot of the playback position.
func (e *Engine) Progress() app.PlaybackProgress {
	return app.PlaybackProgress{
		SamplesPlayed:   e.samplesPlayed.Load(),
		TotalSamples:    e.totalSamples.Load(),
		LastEventSample: e.lastEventSample.Load(),
		LastEventTick:   e.lastEventTick.Load(),
		NextEventSample: e.nextEventSample.Load(),
		NextEventTick:   e.nextEventTick.Load(),
		MaxTick:         e.maxTick.Load(),
	}
}

func (e *Engine) send(cmd command) {
	select {
	case e.commands <- cmd:
	case <-e.closeC:
	}
}

func (e *Engine) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-e.closeC:
			return
		case cmd := <-e.commands:
			switch cmd.kind {
			case cmdPlay:
				if err := e.handlePlay(cmd.midiPath, cmd.soundFontPath); err != nil {
					slog.Error("Playback failed", "midi", cmd.midiPath, "error", err)
					e.reportError(err)
				}
			case cmdPause:
				e.handlePause()
			case cmdStop:
				e.handleStop()
			case cmdRewind:
				e.handleRewind()
			}
		}
	}
}

func (e *Engine) handlePlay(midiPath, soundFontPath string) error {
	e.mu.Lock()
	reload := midiPath != e.lastMIDIPath || soundFontPath != e.lastSFPath || e.schedule == nil
	e.mu.Unlock()

	if reload {
		e.setPlaying(false)
		if err := e.load(midiPath, soundFontPath); err != nil {
			return err
		}
	}
	e.setPlaying(true)
	e.notifyState(app.PlaybackPlaying)
	return nil
}

func (e *Engine) handlePause() {
	e.mu.Lock()
	e.playing = false
	if e.synth != nil {
		e.synth.NoteOffAll(false)
	}
	e.mu.Unlock()
	e.notifyState(app.PlaybackPaused)
}

func (e *Engine) handleStop() {
	e.resetPosition()
	e.notifyState(app.PlaybackStopped)
}

func (e *Engine) handleRewind() {
	e.mu.Lock()
	wasPlaying := e.playing
	e.mu.Unlock()
	e.resetPosition()
	if wasPlaying {
		e.setPlaying(true)
	}
}

// load parses the MIDI file, loads the soundfont when it changed and
// swaps in a fresh schedule and synthesizer.
func (e *Engine) load(midiPath, soundFontPath string) error {
	f, err := midifile.Load(midiPath)
	if err != nil {
		return err
	}
	schedule := BuildSchedule(f, e.sampleRate)

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.soundFont == nil || soundFontPath != e.lastSFPath {
		sf, err := e.loadSoundFont(soundFontPath)
		if err != nil {
			return err
		}
		e.soundFont = sf
		e.lastSFPath = soundFontPath
	}
	s, err := e.makeSynth(e.soundFont)
	if err != nil {
		return fmt.Errorf("create synthesizer: %w", err)
	}
	e.synth = s
	e.schedule = schedule
	e.index = 0
	e.lastMIDIPath = midiPath

	e.samplesPlayed.Store(0)
	e.totalSamples.Store(schedule.TotalSamples)
	e.maxTick.Store(schedule.RulerTick)
	e.lastEventSample.Store(0)
	e.lastEventTick.Store(0)
	if len(schedule.Events) > 0 {
		e.nextEventSample.Store(schedule.Events[0].Sample)
		e.nextEventTick.Store(schedule.Events[0].Tick)
	} else {
		e.nextEventSample.Store(schedule.TotalSamples)
		e.nextEventTick.Store(schedule.RulerTick)
	}
	slog.Info("Song loaded", "path", midiPath, "events", len(schedule.Events), "duration", f.Song.Duration)
	if e.OnSongLoaded != nil {
		go e.OnSongLoaded(f.Song)
	}
	return nil
}

func (e *Engine) resetPosition() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.playing = false
	e.index = 0
	e.samplesPlayed.Store(0)
	e.lastEventSample.Store(0)
	e.lastEventTick.Store(0)
	if e.schedule != nil && len(e.schedule.Events) > 0 {
		e.nextEventSample.Store(e.schedule.Events[0].Sample)
		e.nextEventTick.Store(e.schedule.Events[0].Tick)
	}
	if e.synth != nil {
		e.synth.Reset()
	}
}

func (e *Engine) setPlaying(v bool) {
	e.mu.Lock()
	e.playing = v
	e.mu.Unlock()
}

func (e *Engine) notifyState(s app.PlaybackState) {
	if e.OnStateChanged != nil {
		go e.OnStateChanged(s)
	}
}

func (e *Engine) reportError(err error) {
	if e.OnError != nil {
		go e.OnError(err)
	}
}

// Read renders the next chunk of interleaved stereo float32 frames.
// It is called from the audio device goroutine and must not block on
// anything slower than the render itself.
func (e *Engine) Read(p []byte) (int, error) {
	frames := len(p) / bytesPerFrame
	if frames == 0 {
		return 0, nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	if cap(e.left) < frames {
		e.left = make([]float32, frames)
		e.right = make([]float32, frames)
	}
	left := e.left[:frames]
	right := e.right[:frames]
	clear(left)
	clear(right)

	if e.playing && e.schedule != nil && e.synth != nil {
		e.renderLocked(left, right)
	}

	for i := range frames {
		binary.LittleEndian.PutUint32(p[i*8:], math.Float32bits(left[i]))
		binary.LittleEndian.PutUint32(p[i*8+4:], math.Float32bits(right[i]))
	}
	return frames * bytesPerFrame, nil
}

func (e *Engine) renderLocked(left, right []float32) {
	frames := len(left)
	rendered := 0
	events := e.schedule.Events
	for rendered < frames {
		cursor := e.samplesPlayed.Load()
		for e.index < len(events) && events[e.index].Sample <= cursor {
			ev := events[e.index]
			e.synth.ProcessMidiMessage(int32(ev.Status&0x0F), int32(ev.Status&0xF0), int32(ev.Data1), int32(ev.Data2))
			e.lastEventSample.Store(ev.Sample)
			e.lastEventTick.Store(ev.Tick)
			e.index++
		}
		total := e.totalSamples.Load()
		if e.index < len(events) {
			e.nextEventSample.Store(events[e.index].Sample)
			e.nextEventTick.Store(events[e.index].Tick)
		} else {
			e.nextEventSample.Store(total)
			e.nextEventTick.Store(e.maxTick.Load())
			if cursor >= total {
				// end of song
				e.playing = false
				e.synth.NoteOffAll(false)
				e.notifyState(app.PlaybackStopped)
				return
			}
		}
		run := frames - rendered
		if e.index < len(events) {
			if until := events[e.index].Sample - cursor; until < uint64(run) {
				run = int(until)
			}
		} else if until := total - cursor; until < uint64(run) {
			run = int(until)
		}
		if run < 1 {
			run = 1
		}
		e.synth.Render(left[rendered:rendered+run], right[rendered:rendered+run])
		e.samplesPlayed.Add(uint64(run))
		rendered += run
	}
}

func loadSoundFont(path string) (*meltysynth.SoundFont, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open soundfont: %w", err)
	}
	defer f.Close()
	sf, err := meltysynth.NewSoundFont(f)
	if err != nil {
		return nil, fmt.Errorf("load soundfont %s: %w", path, err)
	}
	return sf, nil
}
