package sanctions

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/banking/sanctions-screening/internal/domain"
)

// FileProvider loads a reference list from a JSON or CSV file
type FileProvider struct {
	path   string
	source string
}

// NewFileProvider creates a provider for path. source labels every entry
// that does not carry its own source.
func NewFileProvider(path, source string) *FileProvider {
	return &FileProvider{path: path, source: source}
}

// fileEntry accepts both the name and entity_name spellings used by list exports
type fileEntry struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	EntityName      string   `json:"entity_name"`
	Aliases         []string `json:"aliases"`
	Source          string   `json:"source"`
	ListName        string   `json:"list_name"`
	EntityType      string   `json:"entity_type"`
	DateOfBirth     string   `json:"date_of_birth"`
	Nationality     string   `json:"nationality"`
	PassportNumber  string   `json:"passport_number"`
	Country         string   `json:"country"`
	DesignationDate string   `json:"designation_date"`
	Reason          string   `json:"reason"`
}

// Load reads and parses the file; the format is chosen by extension
func (p *FileProvider) Load(ctx context.Context) ([]domain.SanctionsEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(p.path)
	if err != nil {
		return nil, fmt.Errorf("open reference list: %w", err)
	}
	defer f.Close()

	var raw []fileEntry
	switch strings.ToLower(filepath.Ext(p.path)) {
	case ".json":
		raw, err = decodeJSON(f)
	case ".csv":
		raw, err = decodeCSV(f)
	default:
		return nil, fmt.Errorf("unsupported reference list format: %s", p.path)
	}
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", p.path, err)
	}

	entries := make([]domain.SanctionsEntry, 0, len(raw))
	for i, r := range raw {
		entries = append(entries, p.toEntry(i, r))
	}
	return entries, nil
}

func (p *FileProvider) toEntry(i int, r fileEntry) domain.SanctionsEntry {
	name := r.EntityName
	if name == "" {
		name = r.Name
	}
	source := r.Source
	if source == "" {
		source = p.source
	}
	listName := r.ListName
	if listName == "" {
		listName = source + " List"
	}
	id := r.ID
	if id == "" {
		id = fmt.Sprintf("%s-%06d", source, i+1)
	}
	entityType := domain.EntityType(strings.ToLower(r.EntityType))
	if entityType == "" {
		entityType = domain.EntityTypeIndividual
	}

	return domain.SanctionsEntry{
		ID:              id,
		Name:            name,
		Aliases:         r.Aliases,
		Source:          source,
		ListName:        listName,
		EntityType:      entityType,
		DateOfBirth:     r.DateOfBirth,
		Nationality:     r.Nationality,
		PassportNumber:  r.PassportNumber,
		Country:         r.Country,
		DesignationDate: r.DesignationDate,
		Reason:          r.Reason,
	}
}

// decodeJSON accepts either a bare array or an object with an "entries" array
func decodeJSON(r io.Reader) ([]fileEntry, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	var list []fileEntry
	if err := json.Unmarshal(data, &list); err == nil {
		return list, nil
	}

	var wrapped struct {
		Entries []fileEntry `json:"entries"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return nil, err
	}
	if wrapped.Entries == nil {
		return nil, errors.New(`expected an array or an object with "entries"`)
	}
	return wrapped.Entries, nil
}

func decodeCSV(r io.Reader) ([]fileEntry, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, h := range header {
		col[strings.ToLower(strings.TrimSpace(h))] = i
	}
	get := func(row []string, name string) string {
		if i, ok := col[name]; ok && i < len(row) {
			return strings.TrimSpace(row[i])
		}
		return ""
	}

	var out []fileEntry
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		var aliases []string
		if raw := get(row, "aliases"); raw != "" {
			for _, a := range strings.Split(raw, ";") {
				if a = strings.TrimSpace(a); a != "" {
					aliases = append(aliases, a)
				}
			}
		}

		out = append(out, fileEntry{
			ID:              get(row, "id"),
			Name:            get(row, "name"),
			EntityName:      get(row, "entity_name"),
			Aliases:         aliases,
			Source:          get(row, "source"),
			ListName:        get(row, "list_name"),
			EntityType:      get(row, "entity_type"),
			DateOfBirth:     get(row, "date_of_birth"),
			Nationality:     get(row, "nationality"),
			PassportNumber:  get(row, "passport_number"),
			Country:         get(row, "country"),
			DesignationDate: get(row, "designation_date"),
			Reason:          get(row, "reason"),
		})
	}
	return out, nil
}
