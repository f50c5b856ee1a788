// Package envelope provides envelope generators for audio synthesis
package envelope

// Stage represents the current envelope stage
type Stage int

const (
	// StageIdle represents envelope idle state
	StageIdle Stage = iota
	// StageAttack represents envelope attack phase
	StageAttack
	// StageDecay represents envelope decay phase
	StageDecay
	// StageSustain represents envelope sustain phase
	StageSustain
	// StageRelease represents envelope release phase
	StageRelease
)

// Parameters holds the envelope timings. Attack, Decay and Release are
// in seconds; Sustain is a level in [0, 1].
type Parameters struct {
	Attack  float64
	Decay   float64
	Sustain float64
	Release float64
}

// DefaultParameters returns the stock parameter set. Sampler sounds
// override only Attack and Release; Sustain stays at 1 so the decay
// segment is inert.
func DefaultParameters() Parameters {
	return Parameters{Attack: 0.1, Decay: 0.1, Sustain: 1.0, Release: 0.1}
}

// ADSR implements a linear-segment Attack-Decay-Sustain-Release
// envelope. A zero attack jumps straight to full level on note-on, and
// a zero release drops straight to idle on note-off, so envelopes can
// be bypassed exactly by zeroing the timings.
type ADSR struct {
	sampleRate float64
	params     Parameters

	// Per-sample linear increments, recalculated when the sample rate
	// or parameters change.
	attackRate  float64
	decayRate   float64
	releaseRate float64

	stage Stage
	value float64
}

// New creates a new ADSR envelope clocked at the given sample rate.
func New(sampleRate float64) *ADSR {
	env := &ADSR{
		sampleRate: sampleRate,
		params:     DefaultParameters(),
	}
	env.updateRates()
	return env
}

// SetSampleRate changes the clock rate of the envelope.
func (e *ADSR) SetSampleRate(rate float64) {
	e.sampleRate = rate
	e.updateRates()
}

// SetParameters replaces all envelope timings.
func (e *ADSR) SetParameters(p Parameters) {
	if p.Sustain < 0 {
		p.Sustain = 0
	}
	if p.Sustain > 1 {
		p.Sustain = 1
	}
	e.params = p
	e.updateRates()
}

// Parameters returns the current envelope timings.
func (e *ADSR) Parameters() Parameters {
	return e.params
}

func (e *ADSR) updateRates() {
	e.attackRate = segmentRate(1.0, e.params.Attack, e.sampleRate)
	e.decayRate = segmentRate(1.0-e.params.Sustain, e.params.Decay, e.sampleRate)
	e.releaseRate = segmentRate(e.params.Sustain, e.params.Release, e.sampleRate)
}

// segmentRate returns the per-sample increment that spans distance in
// timeSeconds, or 0 for degenerate segments.
func segmentRate(distance, timeSeconds, sampleRate float64) float64 {
	if timeSeconds <= 0 || sampleRate <= 0 {
		return 0
	}
	return distance / (timeSeconds * sampleRate)
}

// NoteOn starts the envelope. Segments with zero duration are skipped.
func (e *ADSR) NoteOn() {
	if e.attackRate > 0 {
		e.stage = StageAttack
	} else if e.decayRate > 0 {
		e.value = 1.0
		e.stage = StageDecay
	} else {
		e.value = e.params.Sustain
		e.stage = StageSustain
	}
}

// NoteOff moves an active envelope into its release stage.
func (e *ADSR) NoteOff() {
	if e.stage == StageIdle {
		return
	}
	if e.releaseRate > 0 {
		e.stage = StageRelease
	} else {
		e.Reset()
	}
}

// Reset immediately returns the envelope to idle.
func (e *ADSR) Reset() {
	e.stage = StageIdle
	e.value = 0
}

// IsActive returns true if the envelope is generating output.
func (e *ADSR) IsActive() bool {
	return e.stage != StageIdle
}

// CurrentStage returns the current envelope stage.
func (e *ADSR) CurrentStage() Stage {
	return e.stage
}

// Next generates the next envelope value in [0, 1].
func (e *ADSR) Next() float32 {
	switch e.stage {
	case StageAttack:
		e.value += e.attackRate
		if e.value >= 1.0 {
			e.value = 1.0
			if e.decayRate > 0 && e.params.Sustain < 1.0 {
				e.stage = StageDecay
			} else {
				e.stage = StageSustain
			}
		}

	case StageDecay:
		e.value -= e.decayRate
		if e.value <= e.params.Sustain {
			e.value = e.params.Sustain
			e.stage = StageSustain
		}

	case StageSustain:
		e.value = e.params.Sustain

	case StageRelease:
		e.value -= e.releaseRate
		if e.value <= 0 {
			e.Reset()
		}

	case StageIdle:
		e.value = 0
	}

	return float32(e.value)
}

// Process fills buffer with envelope values - no allocations
func (e *ADSR) Process(buffer []float32) {
	for i := range buffer {
		buffer[i] = e.Next()
	}
}

// ProcessMultiply multiplies buffer by envelope - no allocations
func (e *ADSR) ProcessMultiply(buffer []float32) {
	for i := range buffer {
		buffer[i] *= e.Next()
	}
}
