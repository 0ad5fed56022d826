package storage

import (
	"strings"

	"regress/internal/config"
	"regress/internal/domain"
)

// Storage persists and loads the run report and the failure details kept for the report viewer
type Storage interface {
	Save(report *domain.Report) error
	Load() (*domain.Report, error)
	SaveDetails(details domain.FailureDetails) error
	// LoadDetails returns an empty set when no details were written
	LoadDetails() (domain.FailureDetails, error)
}

// JSONStorage stores the report in a JSON file at the configured result path
type JSONStorage struct {
	cfg *config.Config
}

// NewJSONStorage returns a Storage that reads/writes the config's result path
func NewJSONStorage(cfg *config.Config) *JSONStorage {
	return &JSONStorage{cfg: cfg}
}

// DetailsPath returns the failure details file next to the report
func (s *JSONStorage) DetailsPath() string {
	return strings.TrimSuffix(s.cfg.GetResultPath(), ".json") + ".failures.json"
}
