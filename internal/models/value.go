package models

import (
	"fmt"
	"strconv"
)

// Префиксы типов в сериализованном значении
const (
	valueNull   = "0:"
	valueNumber = "N:"
	valueString = "S:"
)

// SerializeValue кодирует значение поля для хранения в Message.Value:
// nil -> "0:", число -> "N:<число>", строка -> "S:<строка>".
// Формат совпадает с другими репликами, поэтому менять его нельзя.
func SerializeValue(value any) (string, error) {
	switch v := value.(type) {
	case nil:
		return valueNull, nil
	case string:
		return valueString + v, nil
	case float64:
		return valueNumber + strconv.FormatFloat(v, 'f', -1, 64), nil
	case float32:
		return valueNumber + strconv.FormatFloat(float64(v), 'f', -1, 32), nil
	case int:
		return valueNumber + strconv.Itoa(v), nil
	case int64:
		return valueNumber + strconv.FormatInt(v, 10), nil
	default:
		return "", fmt.Errorf("unserializable value type %T", value)
	}
}

// DeserializeValue декодирует значение, записанное SerializeValue.
// Числа возвращаются как float64, строки как string, null как nil.
func DeserializeValue(value string) (any, error) {
	if len(value) < 2 {
		return nil, fmt.Errorf("invalid value %q", value)
	}

	switch value[:2] {
	case valueNull:
		return nil, nil
	case valueNumber:
		n, err := strconv.ParseFloat(value[2:], 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number value %q: %w", value, err)
		}
		return n, nil
	case valueString:
		return value[2:], nil
	default:
		return nil, fmt.Errorf("invalid type key for value %q", value)
	}
}
