package merkle

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// MarshalJSON writes the nested-object form shared with other replicas:
// {"hash":123,"0":{...},"2":{...}}. Hashes are written as signed 32-bit
// integers, which is what XOR produces on replicas with int32 bit
// arithmetic.
func (t *Trie) MarshalJSON() ([]byte, error) {
	obj := make(map[string]json.RawMessage, Radix+1)

	hash, err := json.Marshal(int32(t.RootHash()))
	if err != nil {
		return nil, err
	}
	obj["hash"] = hash

	for _, d := range t.digits() {
		child, err := t.children[d].MarshalJSON()
		if err != nil {
			return nil, err
		}
		obj[strconv.Itoa(d)] = child
	}

	return json.Marshal(obj)
}

// UnmarshalJSON reads the nested-object form. A missing hash is 0 and
// unknown keys are ignored, so "{}" is the empty trie.
func (t *Trie) UnmarshalJSON(data []byte) error {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("failed to decode merkle node: %w", err)
	}

	*t = Trie{}
	for key, raw := range obj {
		switch key {
		case "hash":
			// null и отсутствие hash эквивалентны пустому узлу
			if string(raw) == "null" {
				continue
			}
			hash, err := decodeHash(raw)
			if err != nil {
				return err
			}
			t.Hash = hash
		case "0", "1", "2":
			child := &Trie{}
			if err := child.UnmarshalJSON(raw); err != nil {
				return fmt.Errorf("merkle child %s: %w", key, err)
			}
			t.children[digit(key[0])] = child
		}
	}

	return nil
}

// decodeHash accepts both signed and unsigned 32-bit renderings.
func decodeHash(raw json.RawMessage) (uint32, error) {
	var n int64
	if err := json.Unmarshal(raw, &n); err != nil {
		return 0, fmt.Errorf("invalid merkle hash %s: %w", raw, err)
	}
	if n < math.MinInt32 || n > math.MaxUint32 {
		return 0, fmt.Errorf("merkle hash %d out of 32-bit range", n)
	}
	return uint32(n), nil
}
