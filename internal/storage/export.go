// ABOUTME: Export and import functionality for labtrack data.
// ABOUTME: Supports JSON, YAML, and Markdown export formats over any Repository.
package storage

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/harperreed/labtrack/internal/models"
	"gopkg.in/yaml.v3"
)

// ExportData represents the full export format for labtrack data.
type ExportData struct {
	Version    string                 `json:"version" yaml:"version"`
	ExportedAt time.Time              `json:"exported_at" yaml:"exported_at"`
	Tool       string                 `json:"tool" yaml:"tool"`
	Users      []*models.User         `json:"users" yaml:"users"`
	Files      []*models.UploadedFile `json:"files" yaml:"files"`
	Records    []*models.Record       `json:"records" yaml:"records"`
}

// GetAllData retrieves every user, file and record for export.
func GetAllData(repo Repository) (*ExportData, error) {
	users, err := repo.ListUsers()
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	files := []*models.UploadedFile{}
	for _, u := range users {
		uf, err := repo.ListFiles(u.Username, models.FileFilter{})
		if err != nil {
			return nil, fmt.Errorf("list files for %s: %w", u.Username, err)
		}
		files = append(files, uf...)
	}

	records, err := repo.ListRecords(models.RecordFilter{}, 0)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}

	return &ExportData{
		Version:    "1.0",
		ExportedAt: time.Now(),
		Tool:       "labtrack",
		Users:      users,
		Files:      files,
		Records:    records,
	}, nil
}

// ImportData writes exported data into repo. Users that already exist are
// skipped; files and records are appended.
func ImportData(repo Repository, data *ExportData) error {
	for _, u := range data.Users {
		if err := repo.CreateUser(u); err != nil {
			if isUserExists(err) {
				continue
			}
			return fmt.Errorf("import user: %w", err)
		}
	}

	for _, f := range data.Files {
		if err := repo.AddFile(f); err != nil {
			return fmt.Errorf("import file: %w", err)
		}
	}

	if err := repo.AppendRecords(data.Records); err != nil {
		return fmt.Errorf("import records: %w", err)
	}

	return nil
}

// ExportJSON exports all data as JSON.
func ExportJSON(repo Repository) ([]byte, error) {
	data, err := GetAllData(repo)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(data, "", "  ")
}

// ExportYAML exports records grouped by user and metric name. Password
// hashes are not included.
func ExportYAML(repo Repository) ([]byte, error) {
	data, err := GetAllData(repo)
	if err != nil {
		return nil, err
	}

	yamlData := struct {
		Version    string                             `yaml:"version"`
		ExportedAt string                             `yaml:"exported_at"`
		Tool       string                             `yaml:"tool"`
		Metrics    map[string]map[string][]yamlRecord `yaml:"metrics"`
		Files      map[string][]yamlFile              `yaml:"files"`
	}{
		Version:    data.Version,
		ExportedAt: data.ExportedAt.Format(time.RFC3339),
		Tool:       data.Tool,
		Metrics:    make(map[string]map[string][]yamlRecord),
		Files:      make(map[string][]yamlFile),
	}

	for _, r := range data.Records {
		byName, ok := yamlData.Metrics[r.Username]
		if !ok {
			byName = make(map[string][]yamlRecord)
			yamlData.Metrics[r.Username] = byName
		}
		name := string(r.MetricName)
		byName[name] = append(byName[name], yamlRecord{
			ID:       r.ID.String()[:8],
			Date:     r.Date.Format(models.DateLayout),
			Value:    r.Value,
			Unit:     models.MetricUnits[r.MetricName],
			Category: r.Category,
			Source:   r.SourceFile,
		})
	}

	for _, f := range data.Files {
		yamlData.Files[f.Username] = append(yamlData.Files[f.Username], yamlFile{
			ID:         f.ID.String()[:8],
			Filename:   f.Filename,
			Category:   f.Category,
			UploadedAt: f.UploadedAt.Format(time.RFC3339),
		})
	}

	return yaml.Marshal(yamlData)
}

type yamlRecord struct {
	ID       string  `yaml:"id"`
	Date     string  `yaml:"date"`
	Value    float64 `yaml:"value"`
	Unit     string  `yaml:"unit,omitempty"`
	Category string  `yaml:"category"`
	Source   string  `yaml:"source"`
}

type yamlFile struct {
	ID         string `yaml:"id"`
	Filename   string `yaml:"filename"`
	Category   string `yaml:"category"`
	UploadedAt string `yaml:"uploaded_at"`
}

// ExportMarkdown renders records as Markdown tables grouped by metric name,
// oldest first. since filters by record date, inclusive.
func ExportMarkdown(repo Repository, filter models.RecordFilter, since *time.Time) (string, error) {
	records, err := repo.ListRecords(filter, 0)
	if err != nil {
		return "", err
	}

	grouped := make(map[models.MetricName][]*models.Record)
	for _, r := range records {
		if since != nil && r.Date.Before(models.Day(*since)) {
			continue
		}
		grouped[r.MetricName] = append(grouped[r.MetricName], r)
	}

	names := make([]models.MetricName, 0, len(grouped))
	for n := range grouped {
		names = append(names, n)
	}
	sort.Slice(names, func(i, j int) bool {
		return string(names[i]) < string(names[j])
	})

	var sb strings.Builder
	now := time.Now()

	title := "Lab Results Export"
	if filter.Username != "" {
		title += " for " + filter.Username
	}
	sb.WriteString(fmt.Sprintf("# %s - %s\n\n", title, now.Format(models.DateLayout)))
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", now.Format(time.RFC3339)))

	if len(names) == 0 {
		sb.WriteString("No metrics recorded.\n")
		return sb.String(), nil
	}

	for _, n := range names {
		rs := grouped[n]
		// ListRecords is newest first.
		for i, j := 0, len(rs)-1; i < j; i, j = i+1, j-1 {
			rs[i], rs[j] = rs[j], rs[i]
		}

		sb.WriteString(fmt.Sprintf("## %s\n\n", n))
		sb.WriteString("| Date | Value | Category | Source |\n")
		sb.WriteString("|------|-------|----------|--------|\n")
		for _, r := range rs {
			sb.WriteString(fmt.Sprintf("| %s | %.2f %s | %s | %s |\n",
				r.Date.Format(models.DateLayout),
				r.Value, models.MetricUnits[r.MetricName],
				r.Category, r.SourceFile))
		}
		sb.WriteString("\n")
	}

	return sb.String(), nil
}

// ImportJSON imports data from JSON bytes.
func ImportJSON(repo Repository, data []byte) error {
	var exportData ExportData
	if err := json.Unmarshal(data, &exportData); err != nil {
		return fmt.Errorf("unmarshal JSON: %w", err)
	}
	return ImportData(repo, &exportData)
}
