// Package storage объявляет ошибки, общие для всех реализаций хранилища.
package storage

import "errors"

var (
	// ErrNotFound — запись не найдена.
	ErrNotFound = errors.New("storage: record not found")
	// ErrDuplicate — нарушено ограничение уникальности
	// (email пользователя или незавершённая подписка).
	ErrDuplicate = errors.New("storage: duplicate record")
)
