package sound

import (
	"encoding/binary"
	"math"
	"time"

	"bizhub/internal/shared"
)

// Sound cues are strictly best-effort: every failure is swallowed and a cue
// never blocks or affects notification delivery.

const (
	sampleRate = 44100
	duration   = 500 * time.Millisecond
	amplitude  = 0.4
)

// pitch encodes severity: error lowest, success highest.
var frequencies = map[shared.Severity]float64{
	shared.SeverityError:   220.0,
	shared.SeverityWarning: 330.0,
	shared.SeverityInfo:    440.0,
	shared.SeveritySuccess: 587.3,
}

// Player consumes one rendered cue. Implementations write to an audio
// device, a file, or nowhere at all.
type Player interface {
	Play(pcm []byte, sampleRate int) error
}

// Generator synthesizes a short tone per severity and hands it to a Player.
// It holds no state between invocations.
type Generator struct {
	player Player
}

func NewGenerator(player Player) *Generator {
	return &Generator{player: player}
}

// Cue renders and plays the tone for the given severity. Play errors are
// dropped; missing audio never fails a notification.
func (g *Generator) Cue(severity shared.Severity) {
	if g == nil || g.player == nil {
		return
	}

	defer func() {
		// a panicking audio backend must not take the caller down
		_ = recover()
	}()

	pcm := Render(severity)
	_ = g.player.Play(pcm, sampleRate)
}

// Render synthesizes the severity's tone as 16-bit little-endian mono PCM:
// a sine at the severity's pitch under a linear attack/decay envelope.
func Render(severity shared.Severity) []byte {
	freq, ok := frequencies[severity]
	if !ok {
		freq = frequencies[shared.SeverityInfo]
	}

	samples := int(float64(sampleRate) * duration.Seconds())
	attack := samples / 10
	pcm := make([]byte, samples*2)

	for i := 0; i < samples; i++ {
		// envelope: ramp up over the first 10%, decay linearly to zero after
		var env float64
		if i < attack {
			env = float64(i) / float64(attack)
		} else {
			env = 1.0 - float64(i-attack)/float64(samples-attack)
		}

		v := amplitude * env * math.Sin(2*math.Pi*freq*float64(i)/sampleRate)
		sample := int16(v * math.MaxInt16)
		binary.LittleEndian.PutUint16(pcm[i*2:], uint16(sample))
	}

	return pcm
}

// Frequency exposes the pitch used for a severity, mainly for tests and
// diagnostics.
func Frequency(severity shared.Severity) float64 {
	if freq, ok := frequencies[severity]; ok {
		return freq
	}
	return frequencies[shared.SeverityInfo]
}
