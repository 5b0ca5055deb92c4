package crdt

import (
	"strings"

	"github.com/google/uuid"
)

// NewNodeID генерирует идентификатор узла: последние 16 hex-символов
// случайного UUID без дефисов. Генерируется один раз на установку.
func NewNodeID() string {
	id := strings.ReplaceAll(uuid.New().String(), "-", "")
	return id[len(id)-NodeLength:]
}
