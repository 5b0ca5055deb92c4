// Package memory implements every storage interface in process memory.
// It is used by tests and by throwaway replicas.
package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/iudanet/gophsync/internal/crdt"
	"github.com/iudanet/gophsync/internal/models"
	"github.com/iudanet/gophsync/internal/storage"
)

var (
	_ storage.ClockStorage    = (*Storage)(nil)
	_ storage.MetadataStorage = (*Storage)(nil)
	_ storage.MessageStorage  = (*Storage)(nil)
)

// Storage хранит журнал сообщений, состояние часов и метаданные в памяти.
// Для каждой ячейки дополнительно держится победитель по правилу
// Last-Write-Wins, как в LWW-Element-Set.
type Storage struct {
	messages map[string]*models.Message         // map[timestamp]message
	latest   map[models.CellKey]*models.Message // победитель для каждой ячейки
	clock    []byte
	lastSync *crdt.Timestamp
	mu       sync.RWMutex
}

// New создает пустое хранилище.
func New() *Storage {
	return &Storage{
		messages: make(map[string]*models.Message),
		latest:   make(map[models.CellKey]*models.Message),
	}
}

// SaveMessage добавляет сообщение в журнал, если сообщения с таким
// timestamp еще нет. Возвращает true, если сообщение было добавлено.
func (s *Storage) SaveMessage(ctx context.Context, msg *models.Message) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := msg.Timestamp.String()
	if _, exists := s.messages[key]; exists {
		return false, nil
	}
	s.messages[key] = msg.Clone()

	// Обновляем победителя ячейки, только если новое сообщение новее
	cell := msg.Cell()
	if existing, ok := s.latest[cell]; !ok || msg.IsNewerThan(existing) {
		s.latest[cell] = msg.Clone()
	}

	return true, nil
}

// GetMessagesSince возвращает сообщения строго после since по возрастанию.
func (s *Storage) GetMessagesSince(ctx context.Context, since crdt.Timestamp) ([]*models.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*models.Message
	for _, msg := range s.messages {
		if since.Less(msg.Timestamp) {
			result = append(result, msg.Clone())
		}
	}
	sortMessages(result)

	return result, nil
}

// ListMessages возвращает весь журнал по возрастанию timestamp.
func (s *Storage) ListMessages(ctx context.Context) ([]*models.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*models.Message, 0, len(s.messages))
	for _, msg := range s.messages {
		result = append(result, msg.Clone())
	}
	sortMessages(result)

	return result, nil
}

// GetLatest возвращает победителя ячейки.
func (s *Storage) GetLatest(ctx context.Context, dataset, row, column string) (*models.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	msg, ok := s.latest[models.CellKey{Dataset: dataset, Row: row, Column: column}]
	if !ok {
		return nil, storage.ErrMessageNotFound
	}

	return msg.Clone(), nil
}

// CountMessages возвращает размер журнала.
func (s *Storage) CountMessages(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.messages), nil
}

// SaveClock заменяет сохраненное состояние часов.
func (s *Storage) SaveClock(ctx context.Context, raw []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.clock = slices.Clone(raw)
	return nil
}

// LoadClock возвращает копию сохраненного состояния часов.
func (s *Storage) LoadClock(ctx context.Context) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.clock == nil {
		return nil, storage.ErrClockNotFound
	}
	return slices.Clone(s.clock), nil
}

// SaveLastSyncTimestamp запоминает время последней успешной синхронизации.
func (s *Storage) SaveLastSyncTimestamp(ctx context.Context, ts crdt.Timestamp) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastSync = &ts
	return nil
}

// GetLastSyncTimestamp возвращает время последней успешной синхронизации.
func (s *Storage) GetLastSyncTimestamp(ctx context.Context) (crdt.Timestamp, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.lastSync == nil {
		return crdt.Timestamp{}, false, nil
	}
	return *s.lastSync, true, nil
}

func sortMessages(msgs []*models.Message) {
	slices.SortFunc(msgs, func(a, b *models.Message) int {
		return a.Timestamp.Compare(b.Timestamp)
	})
}
