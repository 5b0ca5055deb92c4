package validation

import (
	"fmt"
	"regexp"
)

// NodeIDPattern определяет допустимый формат идентификатора узла
// Только hex-символы (0-9, a-f, A-F), длина 1-16
var NodeIDPattern = regexp.MustCompile(`^[0-9a-fA-F]{1,16}$`)

// NamePattern определяет допустимый формат имени набора данных и поля
// Латинские буквы, цифры и подчеркивание, первая буква не цифра
var NamePattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

const (
	// MaxNodeIDLen максимальная длина идентификатора узла
	MaxNodeIDLen = 16
	// MaxNameLen максимальная длина имени набора данных или поля
	MaxNameLen = 64
)

// ValidateNodeID проверяет идентификатор узла: 1-16 hex-символов.
// Короткие идентификаторы дополняются нулями слева при сериализации timestamp.
func ValidateNodeID(nodeID string) error {
	if nodeID == "" {
		return fmt.Errorf("node id cannot be empty")
	}

	if len(nodeID) > MaxNodeIDLen {
		return fmt.Errorf("node id must not exceed %d characters", MaxNodeIDLen)
	}

	if !NodeIDPattern.MatchString(nodeID) {
		return fmt.Errorf("node id can only contain hex digits (0-9, a-f)")
	}

	return nil
}

// ValidateName проверяет имя набора данных или поля
func ValidateName(kind, name string) error {
	if name == "" {
		return fmt.Errorf("%s cannot be empty", kind)
	}

	if len(name) > MaxNameLen {
		return fmt.Errorf("%s must not exceed %d characters", kind, MaxNameLen)
	}

	if !NamePattern.MatchString(name) {
		return fmt.Errorf("%s can only contain letters, numbers and underscores and must not start with a number", kind)
	}

	return nil
}

// ValidateRowID проверяет идентификатор строки: любой непустой текст без
// управляющих символов
func ValidateRowID(row string) error {
	if row == "" {
		return fmt.Errorf("row id cannot be empty")
	}

	for _, r := range row {
		if r < 0x20 || r == 0x7f {
			return fmt.Errorf("row id must not contain control characters")
		}
	}

	return nil
}
