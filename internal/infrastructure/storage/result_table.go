package storage

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"ai-inspector/internal/domain/port"
)

// ResultEntry описание одной метки для отображения
type ResultEntry struct {
	Display  string `yaml:"display"`
	Category string `yaml:"category"`
}

type resultTableFile struct {
	Results map[string]ResultEntry `yaml:"results"`
}

// ResultTable таблица соответствия меток и результатов инспекции.
// После загрузки не меняется, поэтому читается без блокировок.
type ResultTable struct {
	entries map[string]ResultEntry
}

// NewResultTable создаёт таблицу из готовых записей
func NewResultTable(entries map[string]ResultEntry) *ResultTable {
	t := &ResultTable{entries: make(map[string]ResultEntry, len(entries))}
	for k, v := range entries {
		t.entries[k] = v
	}
	return t
}

// LoadResultTable читает таблицу из YAML-файла
func LoadResultTable(path string) (*ResultTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read result table: %w", err)
	}

	var file resultTableFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse result table: %w", err)
	}

	return NewResultTable(file.Results), nil
}

// Lookup возвращает название и код категории. Для неизвестной метки название
// совпадает с меткой, а код категории пустой.
func (t *ResultTable) Lookup(label string) (string, string) {
	e, ok := t.entries[label]
	if !ok {
		return label, ""
	}
	if e.Display == "" {
		e.Display = label
	}
	return e.Display, e.Category
}

// Len возвращает количество записей
func (t *ResultTable) Len() int {
	return len(t.entries)
}

var _ port.ResultMapper = (*ResultTable)(nil)
