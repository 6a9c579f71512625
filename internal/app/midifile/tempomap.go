package midifile

// defaultUSPerBeat is the MIDI default of 120 BPM.
const defaultUSPerBeat = 500_000

// TempoSegment is a stretch of constant tempo starting at Tick.
type TempoSegment struct {
	Tick          uint64
	USPerBeat     uint32
	SecondsAtTick float64
}

// TempoMap converts ticks to wall clock seconds across tempo changes.
type TempoMap struct {
	segments     []TempoSegment
	ticksPerBeat float64
}

// NewTempoMap builds a tempo map from tempo events sorted by tick.
// A song without tempo events plays at 120 BPM.
func NewTempoMap(tempos []TempoEvent, ticksPerBeat uint32) TempoMap {
	tpb := float64(ticksPerBeat)
	if tpb < 1 {
		tpb = 1
	}
	m := TempoMap{ticksPerBeat: tpb}
	current := TempoSegment{Tick: 0, USPerBeat: defaultUSPerBeat}
	m.segments = append(m.segments, current)
	for _, t := range tempos {
		if t.Tick == current.Tick {
			// same-tick tempo change replaces the segment's tempo
			current.USPerBeat = t.USPerBeat
			m.segments[len(m.segments)-1].USPerBeat = t.USPerBeat
			continue
		}
		deltaTicks := t.Tick - current.Tick
		secondsDelta := float64(deltaTicks) * float64(current.USPerBeat) / (1_000_000 * tpb)
		current = TempoSegment{
			Tick:          t.Tick,
			USPerBeat:     t.USPerBeat,
			SecondsAtTick: current.SecondsAtTick + secondsDelta,
		}
		m.segments = append(m.segments, current)
	}
	return m
}

// TicksToSeconds returns the wall clock time of an absolute tick.
func (m TempoMap) TicksToSeconds(tick uint64) float64 {
	active := m.segments[0]
	for _, s := range m.segments[1:] {
		if s.Tick > tick {
			break
		}
		active = s
	}
	deltaTicks := tick - min(tick, active.Tick)
	return active.SecondsAtTick + float64(deltaTicks)*float64(active.USPerBeat)/(1_000_000*m.ticksPerBeat)
}

// Segments returns the tempo segments in tick order.
func (m TempoMap) Segments() []TempoSegment {
	return m.segments
}
