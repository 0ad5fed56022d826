package discovery

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"regress/internal/domain"
)

var (
	// -- test: create table with identity column
	testMarker = regexp.MustCompile(`^\s*--\s*test:\s*(.+?)\s*$`)
	// -- skip: not supported before 12
	skipMarker = regexp.MustCompile(`^\s*--\s*skip:\s*(.*?)\s*$`)
)

// Parser parses SQL test files into named cases
type Parser struct{}

// NewParser creates a new Parser
func NewParser() *Parser {
	return &Parser{}
}

// FindTestCases splits a SQL file on "-- test:" markers.
// A file without markers is one case named after the file.
func (p *Parser) FindTestCases(filePath string) ([]domain.SQLCase, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("error reading file %s: %w", filePath, err)
	}
	defer f.Close()

	var (
		cases   []domain.SQLCase
		current *domain.SQLCase
		body    strings.Builder
		preface strings.Builder
	)

	flush := func() {
		if current == nil {
			return
		}
		current.Statement = strings.TrimSpace(body.String())
		cases = append(cases, *current)
		body.Reset()
	}

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()

		if m := testMarker.FindStringSubmatch(line); m != nil {
			flush()
			current = &domain.SQLCase{Name: m[1], FilePath: filePath}
			continue
		}

		if m := skipMarker.FindStringSubmatch(line); m != nil {
			reason := m[1]
			if reason == "" {
				reason = "marked as skipped"
			}
			if current != nil {
				current.SkipReason = reason
			}
			continue
		}

		if current == nil {
			preface.WriteString(line)
			preface.WriteString("\n")
			continue
		}
		body.WriteString(line)
		body.WriteString("\n")
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading file %s: %w", filePath, err)
	}
	flush()

	if len(cases) == 0 {
		stmt := strings.TrimSpace(preface.String())
		if stmt == "" {
			return nil, nil
		}
		name := strings.TrimSuffix(filepath.Base(filePath), SQLTestSuffix)
		cases = append(cases, domain.SQLCase{Name: name, FilePath: filePath, Statement: stmt})
	}

	return cases, nil
}
