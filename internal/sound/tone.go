// Package sound plays the timer-finished chime through the system audio
// device.
package sound

import (
	"encoding/binary"
	"math"
	"time"
)

// Audio format shared by the tone generator and the player.
const (
	SampleRate    = 24000
	ChannelCount  = 1
	bytesPerFrame = 2 * ChannelCount
)

// Note is one pitch of a chime.
type Note struct {
	Frequency float64 // Hz; 0 is a rest
	Duration  time.Duration
}

// DefaultChime is the two-tone "ding-dong" played when a timer finishes,
// repeated twice.
var DefaultChime = []Note{
	{Frequency: 880, Duration: 220 * time.Millisecond},
	{Frequency: 659.25, Duration: 320 * time.Millisecond},
	{Duration: 120 * time.Millisecond},
	{Frequency: 880, Duration: 220 * time.Millisecond},
	{Frequency: 659.25, Duration: 420 * time.Millisecond},
}

// Render synthesizes notes as signed 16-bit little-endian PCM at
// SampleRate. Each note gets a short attack and an exponential decay so
// consecutive notes don't click.
func Render(notes []Note, volume float64) []byte {
	volume = math.Max(0, math.Min(1, volume))

	var total int
	for _, n := range notes {
		total += frames(n.Duration)
	}
	pcm := make([]byte, total*bytesPerFrame)

	pos := 0
	for _, n := range notes {
		count := frames(n.Duration)
		attack := frames(5 * time.Millisecond)
		for i := 0; i < count; i++ {
			var sample float64
			if n.Frequency > 0 {
				t := float64(i) / SampleRate
				env := math.Exp(-4 * float64(i) / float64(count))
				if i < attack {
					env *= float64(i) / float64(attack)
				}
				sample = math.Sin(2*math.Pi*n.Frequency*t) * env * volume
			}
			v := int16(sample * math.MaxInt16)
			binary.LittleEndian.PutUint16(pcm[pos:], uint16(v))
			pos += bytesPerFrame
		}
	}
	return pcm
}

// Length returns the playback duration of pcm.
func Length(pcm []byte) time.Duration {
	return time.Duration(len(pcm)/bytesPerFrame) * time.Second / SampleRate
}

func frames(d time.Duration) int {
	return int(d.Seconds() * SampleRate)
}
