package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/herlein/gofine/pkg/fine"
)

func SaveReport(target *fine.Target, path string) error {
	directory := filepath.Dir(path)
	if err := os.MkdirAll(directory, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	data, err := json.MarshalIndent(target, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	return nil
}

func LoadReport(path string) (*fine.Target, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var target fine.Target
	if err := json.Unmarshal(data, &target); err != nil {
		return nil, fmt.Errorf("failed to unmarshal report: %w", err)
	}

	return &target, nil
}

func GetReportPath(serial string) string {
	return filepath.Join("etc", "targets", fmt.Sprintf("%s.json", serial))
}
