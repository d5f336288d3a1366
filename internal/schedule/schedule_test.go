package schedule

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
)

func TestVirtual_TimerFiresOnlyWhenAdvanced(t *testing.T) {
	mock := clock.NewMock()
	p := Virtual(mock)

	var fired atomic.Bool
	p.Clock().AfterFunc(250*time.Millisecond, func() { fired.Store(true) })

	mock.Add(249 * time.Millisecond)
	assert.False(t, fired.Load())

	mock.Add(1 * time.Millisecond)
	assert.Eventually(t, fired.Load, time.Second, 5*time.Millisecond)
}

func TestVirtual_StoppedTimerNeverFires(t *testing.T) {
	mock := clock.NewMock()
	p := Virtual(mock)

	var fired atomic.Bool
	timer := p.Clock().AfterFunc(250*time.Millisecond, func() { fired.Store(true) })
	assert.True(t, timer.Stop())

	mock.Add(time.Second)
	time.Sleep(20 * time.Millisecond)
	assert.False(t, fired.Load())
}

func TestVirtual_NowTracksMock(t *testing.T) {
	mock := clock.NewMock()
	p := Virtual(mock)

	start := p.Clock().Now()
	mock.Add(251 * time.Millisecond)
	assert.Equal(t, 251*time.Millisecond, p.Clock().Now().Sub(start))
}

func TestReal_UsesWallClock(t *testing.T) {
	p := Real()
	assert.WithinDuration(t, time.Now(), p.Clock().Now(), time.Second)
}
