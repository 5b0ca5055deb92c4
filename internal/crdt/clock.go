package crdt

import (
	"sync"
	"time"
)

// DefaultMaxDrift допустимое опережение логического времени над физическим.
const DefaultMaxDrift = 5 * time.Minute

// HybridClock представляет гибридные логические часы (HLC): физическое время
// в миллисекундах, логический счетчик и идентификатор узла.
// Send и Recv выполняются в одной критической секции, поэтому два вызова
// никогда не получат одинаковый timestamp.
type HybridClock struct {
	now      func() time.Time // источник физического времени (подменяется в тестах)
	ts       Timestamp        // текущее состояние часов
	maxDrift time.Duration    // максимальный допустимый дрейф
	mu       sync.Mutex       // мьютекс для потокобезопасности
}

// ClockOption настраивает HybridClock.
type ClockOption func(*HybridClock)

// WithMaxDrift задает максимальный допустимый дрейф часов.
func WithMaxDrift(d time.Duration) ClockOption {
	return func(c *HybridClock) {
		c.maxDrift = d
	}
}

// WithNow подменяет источник физического времени.
func WithNow(now func() time.Time) ClockOption {
	return func(c *HybridClock) {
		c.now = now
	}
}

// NewHybridClock создает часы в нулевом состоянии с новым идентификатором узла.
func NewHybridClock(opts ...ClockOption) *HybridClock {
	return NewHybridClockWithNodeID(NewNodeID(), opts...)
}

// NewHybridClockWithNodeID создает часы в нулевом состоянии с заданным
// идентификатором узла. Используется для тестирования.
func NewHybridClockWithNodeID(nodeID string, opts ...ClockOption) *HybridClock {
	return NewHybridClockAt(New(0, 0, nodeID), opts...)
}

// NewHybridClockAt восстанавливает часы из сохраненного timestamp
// (например, после перезапуска процесса).
func NewHybridClockAt(ts Timestamp, opts ...ClockOption) *HybridClock {
	c := &HybridClock{
		ts:       ts,
		maxDrift: DefaultMaxDrift,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Send генерирует timestamp для нового локального события.
// Последовательные вызовы строго возрастают, даже если физическое время
// стоит на месте или идет назад.
func (c *HybridClock) Send() (Timestamp, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	phys := c.now().UnixMilli()
	lOld := int64(c.ts.millis)
	cOld := int64(c.ts.counter)

	lNew := max(lOld, phys)
	var cNew int64
	if lOld == lNew {
		cNew = cOld + 1
	}

	if err := c.check(lNew, cNew, phys); err != nil {
		return Timestamp{}, err
	}

	c.ts = New(uint64(lNew), uint16(cNew), c.ts.node)
	return c.ts, nil
}

// Recv объединяет часы с timestamp удаленного события.
// Результат не меньше ни текущего состояния часов, ни remote.
func (c *HybridClock) Recv(remote Timestamp) (Timestamp, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	phys := c.now().UnixMilli()
	lMsg := int64(remote.millis)
	cMsg := int64(remote.counter)

	// Удаленный timestamp не может опережать наше физическое время больше чем на maxDrift
	if lMsg-phys > c.maxDrift.Milliseconds() {
		return Timestamp{}, &ClockDriftError{Logical: lMsg, Physical: phys, MaxDrift: c.maxDrift}
	}

	lOld := int64(c.ts.millis)
	cOld := int64(c.ts.counter)

	lNew := max(lOld, phys, lMsg)
	var cNew int64
	switch {
	case lNew == lOld && lNew == lMsg:
		cNew = max(cOld, cMsg) + 1
	case lNew == lOld:
		cNew = cOld + 1
	case lNew == lMsg:
		cNew = cMsg + 1
	}

	if err := c.check(lNew, cNew, phys); err != nil {
		return Timestamp{}, err
	}

	c.ts = New(uint64(lNew), uint16(cNew), c.ts.node)
	return c.ts, nil
}

// check проверяет дрейф и переполнение счетчика до фиксации нового состояния.
func (c *HybridClock) check(lNew, cNew, phys int64) error {
	if lNew-phys > c.maxDrift.Milliseconds() {
		return &ClockDriftError{Logical: lNew, Physical: phys, MaxDrift: c.maxDrift}
	}
	if cNew > MaxCounter {
		return &OverflowError{Millis: lNew}
	}
	return nil
}

// Timestamp возвращает текущее состояние часов без его изменения.
func (c *HybridClock) Timestamp() Timestamp {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.ts
}

// NodeID возвращает идентификатор узла.
func (c *HybridClock) NodeID() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.ts.node
}

// SetTimestamp устанавливает состояние часов.
// Используется для восстановления состояния (например, после перезапуска).
func (c *HybridClock) SetTimestamp(ts Timestamp) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.ts = ts
}

// MaxDrift возвращает настроенный максимальный дрейф.
func (c *HybridClock) MaxDrift() time.Duration {
	return c.maxDrift
}
