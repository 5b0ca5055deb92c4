package crdt

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testClock оборачивает HybridClock с управляемым физическим временем.
type testClock struct {
	*HybridClock
	now int64
}

func newTestClock(nodeID string, opts ...ClockOption) *testClock {
	tc := &testClock{}
	opts = append([]ClockOption{WithNow(func() time.Time { return time.UnixMilli(tc.now) })}, opts...)
	tc.HybridClock = NewHybridClockWithNodeID(nodeID, opts...)
	return tc
}

func (tc *testClock) set(millis int64) {
	tc.now = millis
}

func TestNewHybridClock(t *testing.T) {
	clock := NewHybridClock()

	require.NotNil(t, clock)
	assert.Equal(t, uint64(0), clock.Timestamp().Millis(), "Initial millis should be 0")
	assert.Equal(t, uint16(0), clock.Timestamp().Counter(), "Initial counter should be 0")
	assert.Len(t, clock.NodeID(), NodeLength, "NodeID should be generated")
	assert.Equal(t, DefaultMaxDrift, clock.MaxDrift())
}

func TestNewHybridClockWithNodeID(t *testing.T) {
	clock := NewHybridClockWithNodeID("1", WithMaxDrift(time.Second))

	assert.Equal(t, "1", clock.NodeID())
	assert.Equal(t, "1970-01-01T00:00:00.000Z-0000-0000000000000001", clock.Timestamp().String())
	assert.Equal(t, time.Second, clock.MaxDrift())
}

func TestHybridClock_Send(t *testing.T) {
	type step struct {
		now  int64
		want string
	}

	tests := []struct {
		name  string
		steps []step
	}{
		{
			name: "monotonic clock",
			steps: []step{
				{10, "1970-01-01T00:00:00.010Z-0000-0000000000000001"},
				{11, "1970-01-01T00:00:00.011Z-0000-0000000000000001"},
				{12, "1970-01-01T00:00:00.012Z-0000-0000000000000001"},
			},
		},
		{
			name: "stuttering clock",
			steps: []step{
				{20, "1970-01-01T00:00:00.020Z-0000-0000000000000001"},
				{20, "1970-01-01T00:00:00.020Z-0001-0000000000000001"},
				{20, "1970-01-01T00:00:00.020Z-0002-0000000000000001"},
				{21, "1970-01-01T00:00:00.021Z-0000-0000000000000001"},
			},
		},
		{
			name: "regressing clock",
			steps: []step{
				{30, "1970-01-01T00:00:00.030Z-0000-0000000000000001"},
				{29, "1970-01-01T00:00:00.030Z-0001-0000000000000001"},
				{29, "1970-01-01T00:00:00.030Z-0002-0000000000000001"},
				{31, "1970-01-01T00:00:00.031Z-0000-0000000000000001"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clock := newTestClock("1")

			for _, s := range tt.steps {
				clock.set(s.now)
				got, err := clock.Send()
				require.NoError(t, err)
				assert.Equal(t, MustParse(s.want), got)
				assert.Equal(t, got, clock.Timestamp(), "clock should hold the last sent timestamp")
			}
		})
	}
}

func TestHybridClock_Send_StrictlyIncreasing(t *testing.T) {
	clock := newTestClock("1")
	wall := []int64{100, 100, 99, 50, 101, 101, 101, 200, 150, 150, 201, 0, 202}

	prev := Zero()
	for _, now := range wall {
		clock.set(now)
		ts, err := clock.Send()
		require.NoError(t, err)
		assert.True(t, prev.Less(ts), "%s should be after %s", ts, prev)
		prev = ts
	}
}

func TestHybridClock_Send_Overflow(t *testing.T) {
	clock := newTestClock("1")
	clock.set(40)

	for i := 0; i < MaxCounter+1; i++ {
		_, err := clock.Send()
		require.NoError(t, err, "send #%d", i+1)
	}

	before := clock.Timestamp()
	_, err := clock.Send()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCounterOverflow)

	var overflow *OverflowError
	require.True(t, errors.As(err, &overflow))
	assert.Equal(t, int64(40), overflow.Millis)
	assert.Equal(t, before, clock.Timestamp(), "failed send must not mutate the clock")

	// Как только физическое время сдвинулось, генерация продолжается
	clock.set(41)
	ts, err := clock.Send()
	require.NoError(t, err)
	assert.Equal(t, "1970-01-01T00:00:00.041Z-0000-0000000000000001", ts.String())
}

func TestHybridClock_Send_Drift(t *testing.T) {
	clock := newTestClock("1")
	clock.set(-(5*60*1000 + 1))

	before := clock.Timestamp()
	_, err := clock.Send()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrClockDrift)
	assert.NotErrorIs(t, err, ErrCounterOverflow)
	assert.Equal(t, before, clock.Timestamp())

	var drift *ClockDriftError
	require.True(t, errors.As(err, &drift))
	assert.Equal(t, int64(0), drift.Logical)
	assert.Equal(t, int64(-300001), drift.Physical)
}

func TestHybridClock_Send_DriftBoundary(t *testing.T) {
	clock := newTestClock("1", WithMaxDrift(10*time.Millisecond))
	clock.set(100)
	_, err := clock.Send()
	require.NoError(t, err)

	// Ровно на maxDrift впереди еще допустимо
	clock.set(90)
	_, err = clock.Send()
	require.NoError(t, err)

	clock.set(89)
	_, err = clock.Send()
	assert.ErrorIs(t, err, ErrClockDrift)
}

func TestHybridClock_Recv(t *testing.T) {
	type step struct {
		now    int64
		remote string
		want   string
	}

	tests := []struct {
		name  string
		steps []step
	}{
		{
			name: "global monotonic clock",
			steps: []step{
				{52, "1970-01-01T00:00:00.051Z-0000-0000000000000002", "1970-01-01T00:00:00.052Z-0000-0000000000000001"},
				{54, "1970-01-01T00:00:00.053Z-0000-0000000000000002", "1970-01-01T00:00:00.054Z-0000-0000000000000001"},
				{56, "1970-01-01T00:00:00.055Z-0000-0000000000000002", "1970-01-01T00:00:00.056Z-0000-0000000000000001"},
			},
		},
		{
			name: "global stuttering clock",
			steps: []step{
				{61, "1970-01-01T00:00:00.062Z-0000-0000000000000002", "1970-01-01T00:00:00.062Z-0001-0000000000000001"},
				{62, "1970-01-01T00:00:00.062Z-0001-0000000000000002", "1970-01-01T00:00:00.062Z-0002-0000000000000001"},
				{62, "1970-01-01T00:00:00.062Z-0002-0000000000000002", "1970-01-01T00:00:00.062Z-0003-0000000000000001"},
				{63, "1970-01-01T00:00:00.062Z-0004-0000000000000002", "1970-01-01T00:00:00.063Z-0000-0000000000000001"},
			},
		},
		{
			name: "local stuttering clock",
			steps: []step{
				{73, "1970-01-01T00:00:00.071Z-0000-0000000000000002", "1970-01-01T00:00:00.073Z-0000-0000000000000001"},
				{73, "1970-01-01T00:00:00.072Z-0000-0000000000000002", "1970-01-01T00:00:00.073Z-0001-0000000000000001"},
				{74, "1970-01-01T00:00:00.073Z-0000-0000000000000002", "1970-01-01T00:00:00.074Z-0000-0000000000000001"},
			},
		},
		{
			name: "remote stuttering clock",
			steps: []step{
				{81, "1970-01-01T00:00:00.083Z-0000-0000000000000002", "1970-01-01T00:00:00.083Z-0001-0000000000000001"},
				{82, "1970-01-01T00:00:00.083Z-0001-0000000000000002", "1970-01-01T00:00:00.083Z-0002-0000000000000001"},
				{83, "1970-01-01T00:00:00.083Z-0002-0000000000000002", "1970-01-01T00:00:00.083Z-0003-0000000000000001"},
				{84, "1970-01-01T00:00:00.083Z-0003-0000000000000002", "1970-01-01T00:00:00.084Z-0000-0000000000000001"},
			},
		},
		{
			name: "local regressing clock",
			steps: []step{
				{93, "1970-01-01T00:00:00.091Z-0000-0000000000000002", "1970-01-01T00:00:00.093Z-0000-0000000000000001"},
				{92, "1970-01-01T00:00:00.092Z-0000-0000000000000002", "1970-01-01T00:00:00.093Z-0001-0000000000000001"},
				{91, "1970-01-01T00:00:00.093Z-0000-0000000000000002", "1970-01-01T00:00:00.093Z-0002-0000000000000001"},
			},
		},
		{
			name: "remote regressing clock",
			steps: []step{
				{101, "1970-01-01T00:00:00.103Z-0000-0000000000000002", "1970-01-01T00:00:00.103Z-0001-0000000000000001"},
				{102, "1970-01-01T00:00:00.102Z-0000-0000000000000002", "1970-01-01T00:00:00.103Z-0002-0000000000000001"},
				{103, "1970-01-01T00:00:00.101Z-0000-0000000000000002", "1970-01-01T00:00:00.103Z-0003-0000000000000001"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clock := newTestClock("1")

			for _, s := range tt.steps {
				clock.set(s.now)
				before := clock.Timestamp()
				remote := MustParse(s.remote)

				got, err := clock.Recv(remote)
				require.NoError(t, err)
				assert.Equal(t, MustParse(s.want), got)

				assert.True(t, before.Less(got), "recv must advance past the local clock")
				assert.True(t, remote.Less(got), "recv must advance past the remote timestamp")
			}
		})
	}
}

func TestHybridClock_Recv_Drift(t *testing.T) {
	clock := newTestClock("1")
	clock.set(0)

	before := clock.Timestamp()
	_, err := clock.Recv(MustParse("1980-01-01T00:00:00.101Z-0000-0000000000000002"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrClockDrift)
	assert.Equal(t, before, clock.Timestamp())
}

func TestHybridClock_Recv_Overflow(t *testing.T) {
	clock := newTestClock("1")
	clock.set(50)

	before := clock.Timestamp()
	_, err := clock.Recv(New(50, MaxCounter, "2"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCounterOverflow)
	assert.Equal(t, before, clock.Timestamp())
}

func TestHybridClock_SetTimestamp(t *testing.T) {
	clock := newTestClock("1")
	restored := MustParse("2018-11-13T13:20:40.000Z-0005-0000000000000001")
	clock.SetTimestamp(restored)
	clock.set(restored.Time().UnixMilli())

	ts, err := clock.Send()
	require.NoError(t, err)
	assert.Equal(t, "2018-11-13T13:20:40.000Z-0006-0000000000000001", ts.String())
}

func TestHybridClock_ConcurrentSendUnique(t *testing.T) {
	clock := newTestClock("1")
	clock.set(1000)

	const workers = 8
	const perWorker = 500

	var wg sync.WaitGroup
	results := make(chan Timestamp, workers*perWorker)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				ts, err := clock.Send()
				if err == nil {
					results <- ts
				}
			}
		}()
	}
	wg.Wait()
	close(results)

	seen := make(map[string]bool)
	for ts := range results {
		assert.False(t, seen[ts.String()], "duplicate timestamp %s", ts)
		seen[ts.String()] = true
	}
	assert.Len(t, seen, workers*perWorker)
}
