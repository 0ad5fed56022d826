package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"regress/internal/domain"
)

// Save writes the report with the three suite keys
func (s *JSONStorage) Save(report *domain.Report) error {
	if report == nil {
		report = domain.NewReport()
	}
	normalized := domain.Report{PEM: report.PEM, PgAdmin: report.PgAdmin, SQL: report.SQL}
	for _, set := range []*domain.ResultSet{&normalized.PEM, &normalized.PgAdmin, &normalized.SQL} {
		if *set == nil {
			*set = domain.ResultSet{}
		}
	}
	return writeJSON(s.cfg.GetResultPath(), normalized)
}

// Load reads the last report
func (s *JSONStorage) Load() (*domain.Report, error) {
	data, err := os.ReadFile(s.cfg.GetResultPath())
	if err != nil {
		return nil, fmt.Errorf("read results file: %w", err)
	}
	report := domain.NewReport()
	if err := json.Unmarshal(data, report); err != nil {
		return nil, fmt.Errorf("parse results: %w", err)
	}
	return report, nil
}

// SaveDetails writes the failure messages and resolved marks
func (s *JSONStorage) SaveDetails(details domain.FailureDetails) error {
	if details == nil {
		details = domain.FailureDetails{}
	}
	return writeJSON(s.DetailsPath(), details)
}

// LoadDetails reads the failure details
func (s *JSONStorage) LoadDetails() (domain.FailureDetails, error) {
	data, err := os.ReadFile(s.DetailsPath())
	if errors.Is(err, fs.ErrNotExist) {
		return domain.FailureDetails{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read failure details: %w", err)
	}
	details := domain.FailureDetails{}
	if err := json.Unmarshal(data, &details); err != nil {
		return nil, fmt.Errorf("parse failure details: %w", err)
	}
	return details, nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal results: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write results: %w", err)
	}
	return nil
}
