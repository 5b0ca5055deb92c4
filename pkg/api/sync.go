package api

import "encoding/json"

// Message представляет одно изменение поля в формате обмена.
// Timestamp передается в канонической строковой форме.
type Message struct {
	Timestamp string `json:"timestamp"`
	Dataset   string `json:"dataset"`
	Row       string `json:"row"`
	Column    string `json:"column"`
	Value     string `json:"value"` // сериализованное значение: "0:", "N:<число>", "S:<строка>"
}

// SyncRequest представляет запрос на синхронизацию от реплики
type SyncRequest struct {
	Since    string    `json:"since"`   // нижняя граница обмена (timestamp, исключительно)
	NodeID   string    `json:"node_id"` // узел отправителя: его собственные сообщения не возвращаются
	Messages []Message `json:"messages"`
}

// SyncResponse представляет ответ реплики на синхронизацию
type SyncResponse struct {
	Merkle   json.RawMessage `json:"merkle"`   // урезанное (prune) merkle trie отвечающей реплики
	Messages []Message       `json:"messages"` // сообщения отвечающей реплики после Since
}
