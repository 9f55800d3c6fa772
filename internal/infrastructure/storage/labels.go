package storage

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
)

// LoadLabels читает файл меток: одна метка на строку, номер строки равен индексу класса.
// Завершающие пустые строки отбрасываются, пустые строки в середине сохраняются,
// чтобы не сдвигать индексы.
func LoadLabels(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open labels: %w", err)
	}
	defer f.Close()

	var labels []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		labels = append(labels, strings.TrimRight(sc.Text(), "\r"))
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read labels: %w", err)
	}

	for len(labels) > 0 && strings.TrimSpace(labels[len(labels)-1]) == "" {
		labels = labels[:len(labels)-1]
	}
	if len(labels) == 0 {
		return nil, errors.New("labels file is empty")
	}

	return labels, nil
}
