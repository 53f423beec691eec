package features

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEncoder(t *testing.T) *Encoder {
	t.Helper()
	enc, err := NewEncoder(DefaultConfig())
	require.NoError(t, err)
	return enc
}

// place writes a position into ram using the given layout slot.
func place(ram *RAM, p Position, x, y byte) {
	ram[p.X] = x
	ram[p.Y] = y
}

func TestDigitizeBoundaries(t *testing.T) {
	bins := Bins{10, 30, 80}
	cases := map[int]int{
		-5:  0,
		0:   0,
		9:   0,
		10:  1,
		29:  1,
		30:  2,
		79:  2,
		80:  3,
		81:  3,
		510: 3,
	}
	for v, want := range cases {
		assert.Equal(t, want, Digitize(v, bins), "value %d", v)
	}
}

func TestManhattanNoWraparound(t *testing.T) {
	assert.Equal(t, 250+5, Manhattan(Point{X: 0, Y: 10}, Point{X: 250, Y: 5}))
	assert.Equal(t, 0, Manhattan(Point{X: 7, Y: 7}, Point{X: 7, Y: 7}))
}

func TestEncodeKnownSnapshot(t *testing.T) {
	enc := newTestEncoder(t)
	l := MsPacmanLayout()

	var ram RAM
	place(&ram, l.Player, 100, 100)
	place(&ram, l.Ghosts[0], 200, 200) // 200
	place(&ram, l.Ghosts[1], 90, 95)   // 15, nearest
	place(&ram, l.Ghosts[2], 100, 140) // 40
	place(&ram, l.Ghosts[3], 0, 0)     // 200
	place(&ram, l.Fruit, 100, 130)     // 30
	ram[l.Direction] = 3
	ram[l.Progress] = 125

	key := enc.Encode(&ram)
	assert.Equal(t, StateKey{1, 2, 3, 2}, key)
	assert.Equal(t, "(1, 2, 3, 2)", key.String())

	obs := enc.Observe(&ram)
	assert.Equal(t, 1, obs.NearestGhost)
	assert.Equal(t, 15, obs.GhostDistance)
	assert.Equal(t, 30, obs.FruitDistance)
	assert.Equal(t, Point{X: 100, Y: 100}, obs.Player)
}

func TestEncodeDirectionIsVerbatim(t *testing.T) {
	enc := newTestEncoder(t)
	var ram RAM
	ram[MsPacmanLayout().Direction] = 0xfe
	assert.Equal(t, 0xfe, enc.Encode(&ram)[2])
}

func TestEncodeLargeDistancesUseLastBucket(t *testing.T) {
	enc := newTestEncoder(t)
	l := MsPacmanLayout()
	var ram RAM
	place(&ram, l.Player, 255, 255)
	for _, g := range l.Ghosts {
		place(&ram, g, 0, 0)
	}
	place(&ram, l.Fruit, 0, 0)
	ram[l.Progress] = 255

	assert.Equal(t, StateKey{3, 3, 0, 3}, enc.Encode(&ram))
}

func TestEncodeDeterministic(t *testing.T) {
	enc := newTestEncoder(t)
	var ram RAM
	for i := range ram {
		ram[i] = byte(i * 7)
	}
	first := enc.Encode(&ram)
	for i := 0; i < 100; i++ {
		require.Equal(t, first, enc.Encode(&ram))
	}

	other := newTestEncoder(t)
	assert.Equal(t, first, other.Encode(&ram))
}

func TestNewEncoderRejectsBadConfig(t *testing.T) {
	cases := map[string]func(c *Config){
		"player address out of range": func(c *Config) { c.Layout.Player.X = RAMSize },
		"negative address":            func(c *Config) { c.Layout.Progress = -1 },
		"ghost address out of range":  func(c *Config) { c.Layout.Ghosts[2].Y = 300 },
		"no ghosts":                   func(c *Config) { c.Layout.Ghosts = nil },
		"empty distance bins":         func(c *Config) { c.DistanceBins = nil },
		"unsorted progress bins":      func(c *Config) { c.ProgressBins = Bins{60, 60, 180} },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := DefaultConfig()
			mutate(&cfg)
			enc, err := NewEncoder(cfg)
			assert.Nil(t, enc)
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestEncoderCopiesConfig(t *testing.T) {
	cfg := DefaultConfig()
	enc, err := NewEncoder(cfg)
	require.NoError(t, err)

	var ram RAM
	place(&ram, cfg.Layout.Player, 50, 50)
	place(&ram, cfg.Layout.Ghosts[0], 50, 55)
	before := enc.Encode(&ram)

	cfg.DistanceBins[0] = 1
	cfg.Layout.Ghosts[0] = Position{X: 100, Y: 101}
	assert.Equal(t, before, enc.Encode(&ram))
}
