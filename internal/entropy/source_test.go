package entropy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSameSeedSameStream(t *testing.T) {
	a := NewSource(1234)
	b := NewSource(1234)

	for i := 0; i < 50; i++ {
		require.Equal(t, a.Float(), b.Float(), "roll %d diverged", i)
	}
	for i := 0; i < 20; i++ {
		require.Equal(t, a.IntBetween(20, 60), b.IntBetween(20, 60))
	}
}

func TestDifferentSeedsDiverge(t *testing.T) {
	a := NewSource(1)
	b := NewSource(2)

	same := 0
	for i := 0; i < 20; i++ {
		if a.Float() == b.Float() {
			same++
		}
	}
	assert.Less(t, same, 20)
}

func TestIntBetweenBounds(t *testing.T) {
	s := NewSource(7)
	for i := 0; i < 200; i++ {
		v := s.IntBetween(120, 180)
		require.GreaterOrEqual(t, v, 120)
		require.LessOrEqual(t, v, 180)
	}
	assert.Equal(t, 5, s.IntBetween(5, 5))
	assert.Equal(t, 5, s.IntBetween(5, 3))
}

func TestPickBounds(t *testing.T) {
	s := NewSource(7)
	for i := 0; i < 100; i++ {
		v := s.Pick(5)
		require.GreaterOrEqual(t, v, 0)
		require.Less(t, v, 5)
	}
	assert.Equal(t, 0, s.Pick(0))
	assert.Equal(t, 0, s.Pick(1))
}

func TestNoiseIsPure(t *testing.T) {
	s := NewSource(99)

	// Reading noise must not consume or depend on the roll stream.
	first := s.TrendDrift(10)
	s.Float()
	s.Float()
	assert.Equal(t, first, s.TrendDrift(10))

	other := NewSource(99)
	assert.Equal(t, first, other.TrendDrift(10))
	assert.Equal(t, s.Jitter(3, 4), other.Jitter(3, 4))
}

func TestNoiseRange(t *testing.T) {
	s := NewSource(5)
	for day := 0; day < 500; day++ {
		v := s.TrendDrift(day)
		require.GreaterOrEqual(t, v, -1.0)
		require.LessOrEqual(t, v, 1.0)
		j := s.Jitter(day, day%7)
		require.GreaterOrEqual(t, j, -1.0)
		require.LessOrEqual(t, j, 1.0)
	}
}

func TestChannelsIndependent(t *testing.T) {
	s := NewSource(11)
	same := 0
	for day := 0; day < 50; day++ {
		if s.Jitter(day, 0) == s.Jitter(day, 1) {
			same++
		}
	}
	assert.Less(t, same, 50)
}
