package models

import "github.com/iudanet/gophsync/internal/crdt"

// Message представляет одно изменение поля: append-only запись журнала,
// которой синхронизируются реплики. Для одной ячейки (dataset, row, column)
// побеждает сообщение с наибольшим Timestamp (Last-Write-Wins).
type Message struct {
	Timestamp crdt.Timestamp `json:"timestamp"` // Timestamp HLC timestamp изменения (уникален в пределах журнала)
	Dataset   string         `json:"dataset"`   // Dataset имя набора данных (таблицы)
	Row       string         `json:"row"`       // Row идентификатор строки
	Column    string         `json:"column"`    // Column имя поля
	Value     string         `json:"value"`     // Value сериализованное значение (см. SerializeValue)
}

// CellKey идентифицирует ячейку, к которой относится сообщение.
type CellKey struct {
	Dataset string
	Row     string
	Column  string
}

// Cell возвращает ключ ячейки сообщения.
func (m *Message) Cell() CellKey {
	return CellKey{Dataset: m.Dataset, Row: m.Row, Column: m.Column}
}

// IsNewerThan сравнивает два сообщения и определяет, какое из них новее.
// Timestamp уникален и уже содержит NodeID, поэтому отдельный tie-break не нужен.
func (m *Message) IsNewerThan(other *Message) bool {
	return m.Timestamp.Compare(other.Timestamp) > 0
}

// Clone создает копию сообщения
func (m *Message) Clone() *Message {
	c := *m
	return &c
}
