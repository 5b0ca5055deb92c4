package sync

import (
	"context"
	"log/slog"
	stdsync "sync"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/iudanet/gophsync/internal/clockstore"
	"github.com/iudanet/gophsync/internal/crdt"
	"github.com/iudanet/gophsync/internal/merkle"
	"github.com/iudanet/gophsync/internal/models"
	"github.com/iudanet/gophsync/internal/storage"
)

// Config настраивает реплику.
type Config struct {
	Now         func() time.Time // источник физического времени, по умолчанию time.Now
	NodeID      string           // используется только для свежего состояния часов
	MaxDrift    time.Duration    // допустимый дрейф HLC
	Lookback    time.Duration    // глубина первой синхронизации
	PruneWidth  int              // сколько новейших веток оставлять при передаче trie
	MaxAttempts int              // предел раундов FullSync
	MaxRepeats  int              // предел раундов с одинаковой точкой расхождения
}

// DefaultConfig возвращает настройки по умолчанию.
func DefaultConfig() Config {
	return Config{
		MaxDrift:    crdt.DefaultMaxDrift,
		Lookback:    5 * time.Minute,
		PruneWidth:  merkle.DefaultPruneWidth,
		MaxAttempts: 100,
		MaxRepeats:  10,
	}
}

// Deps хранилища, с которыми работает реплика.
type Deps struct {
	Clocks   storage.ClockStorage
	Metadata storage.MetadataStorage
	Messages storage.MessageStorage
	Logger   *slog.Logger
}

// Change описывает одно локальное изменение поля.
type Change struct {
	Value   any // nil, число или строка
	Dataset string
	Row     string
	Column  string
}

// Replica связывает часы, merkle trie и журнал сообщений одного узла.
// Все изменения журнала проходят через одну критическую секцию: сообщение
// сохраняется, затем попадает в trie, затем состояние часов записывается.
type Replica struct {
	clock    *crdt.HybridClock
	trie     *merkle.Trie
	store    *clockstore.Store
	messages storage.MessageStorage
	metadata storage.MetadataStorage
	logger   *slog.Logger
	cfg      Config
	mu       stdsync.Mutex
}

// Open загружает состояние часов (или создает свежее) и возвращает реплику.
func Open(ctx context.Context, deps Deps, cfg Config) (*Replica, error) {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	store := clockstore.NewStore(deps.Clocks, cfg.NodeID, logger)
	state, fresh, err := store.Load(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "open replica")
	}

	opts := []crdt.ClockOption{crdt.WithMaxDrift(cfg.MaxDrift)}
	if cfg.Now != nil {
		opts = append(opts, crdt.WithNow(cfg.Now))
	}

	r := &Replica{
		clock:    crdt.NewHybridClockAt(state.Timestamp, opts...),
		trie:     state.Merkle,
		store:    store,
		messages: deps.Messages,
		metadata: deps.Metadata,
		logger:   logger,
		cfg:      cfg,
	}

	logger.Info("Replica opened",
		"node_id", r.NodeID(),
		"timestamp", state.Timestamp.String(),
		"merkle_hash", state.Merkle.RootHash(),
		"fresh", fresh)

	return r, nil
}

// NodeID возвращает идентификатор узла реплики.
func (r *Replica) NodeID() string {
	return r.clock.NodeID()
}

// Timestamp возвращает текущее состояние часов.
func (r *Replica) Timestamp() crdt.Timestamp {
	return r.clock.Timestamp()
}

// Merkle возвращает снимок полного trie. Снимок не меняется последующими
// вставками.
func (r *Replica) Merkle() *merkle.Trie {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.trie
}

// SyncMerkle возвращает trie, урезанное для передачи другой реплике.
func (r *Replica) SyncMerkle() *merkle.Trie {
	return r.Merkle().Prune(r.cfg.PruneWidth)
}

// SendMessages ставит timestamp каждому изменению, сохраняет сообщения
// и индексирует их в trie. Возвращает созданные сообщения.
// Ошибка часов прерывает пакет: уже сохраненные сообщения остаются.
func (r *Replica) SendMessages(ctx context.Context, changes []Change) ([]*models.Message, error) {
	// Сначала сериализуем все значения, чтобы неверный тип не оборвал пакет на середине
	values := make([]string, len(changes))
	for i, ch := range changes {
		v, err := models.SerializeValue(ch.Value)
		if err != nil {
			return nil, errors.Wrapf(err, "change %s/%s/%s", ch.Dataset, ch.Row, ch.Column)
		}
		values[i] = v
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	sent := make([]*models.Message, 0, len(changes))
	for i, ch := range changes {
		ts, err := r.clock.Send()
		if err != nil {
			r.logger.Warn("Failed to generate timestamp", "error", err)
			return sent, r.finish(ctx, errors.Wrap(err, "send"))
		}

		msg := &models.Message{
			Timestamp: ts,
			Dataset:   ch.Dataset,
			Row:       ch.Row,
			Column:    ch.Column,
			Value:     values[i],
		}
		if err := r.apply(ctx, msg); err != nil {
			return sent, r.finish(ctx, err)
		}
		sent = append(sent, msg)
	}

	r.logger.Debug("Local changes committed", "count", len(sent))
	return sent, r.finish(ctx, nil)
}

// ReceiveMessages объединяет часы с каждым удаленным сообщением, затем
// сохраняет и индексирует новые. Если хоть одно сообщение не принято часами,
// журнал не меняется. Возвращает число впервые сохраненных сообщений.
func (r *Replica) ReceiveMessages(ctx context.Context, msgs []*models.Message) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, msg := range msgs {
		if _, err := r.clock.Recv(msg.Timestamp); err != nil {
			r.logger.Warn("Rejected remote timestamp",
				"timestamp", msg.Timestamp.String(),
				"error", err)
			return 0, r.finish(ctx, errors.Wrapf(err, "receive %s", msg.Timestamp))
		}
	}

	applied := 0
	for _, msg := range msgs {
		saved, err := r.messages.SaveMessage(ctx, msg)
		if err != nil {
			return applied, r.finish(ctx, errors.Wrap(err, "store remote message"))
		}
		if saved {
			r.trie = r.trie.Insert(msg.Timestamp)
			applied++
		}
	}

	if len(msgs) > 0 {
		r.logger.Debug("Remote messages applied",
			"received", len(msgs),
			"applied", applied)
	}
	return applied, r.finish(ctx, nil)
}

// MessagesSince возвращает сообщения журнала строго после since.
func (r *Replica) MessagesSince(ctx context.Context, since crdt.Timestamp) ([]*models.Message, error) {
	msgs, err := r.messages.GetMessagesSince(ctx, since)
	if err != nil {
		return nil, errors.Wrap(err, "messages since")
	}
	return msgs, nil
}

// Value возвращает текущее значение ячейки (сообщение с наибольшим
// timestamp). Для незаписанной ячейки возвращает storage.ErrMessageNotFound.
func (r *Replica) Value(ctx context.Context, dataset, row, column string) (any, error) {
	msg, err := r.messages.GetLatest(ctx, dataset, row, column)
	if err != nil {
		return nil, err
	}
	return models.DeserializeValue(msg.Value)
}

// apply сохраняет локальное сообщение и добавляет его в trie в порядке
// фиксации. Вызывается под r.mu.
func (r *Replica) apply(ctx context.Context, msg *models.Message) error {
	saved, err := r.messages.SaveMessage(ctx, msg)
	if err != nil {
		return errors.Wrap(err, "store message")
	}
	if saved {
		r.trie = r.trie.Insert(msg.Timestamp)
	}
	return nil
}

// finish записывает состояние часов и возвращает первую из ошибок.
// Вызывается под r.mu.
func (r *Replica) finish(ctx context.Context, cause error) error {
	err := r.store.Save(ctx, &clockstore.ClockState{
		Timestamp: r.clock.Timestamp(),
		Merkle:    r.trie,
	})
	if err != nil {
		r.logger.Error("Failed to persist clock state", "error", err)
		if cause == nil {
			return errors.Wrap(err, "persist clock")
		}
	}
	return cause
}
