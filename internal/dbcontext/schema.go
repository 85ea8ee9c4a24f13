package dbcontext

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
)

// schemaFile is the on-disk JSON shape of the schema source file.
type schemaFile struct {
	Tables []schemaTable `json:"tables"`
}

type schemaTable struct {
	LogicalName  string         `json:"logical_name"`
	PhysicalName string         `json:"physical_name"`
	Columns      []schemaColumn `json:"columns"`
}

type schemaColumn struct {
	Name           string  `json:"name"`
	Type           string  `json:"type"`
	Nullable       bool    `json:"nullable"`
	RelationTarget *string `json:"relation_target"`
}

// LoadSchema reads and parses the schema source file at path, returning
// table descriptors sorted alphabetically by physical name, so the
// Context Provider's rendered output stays stable across runs.
func LoadSchema(path string) ([]TableDescriptor, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading schema file %s: %w", path, err)
	}

	var sf schemaFile
	if err := json.Unmarshal(raw, &sf); err != nil {
		return nil, fmt.Errorf("parsing schema file %s: %w", path, err)
	}

	tables := make([]TableDescriptor, 0, len(sf.Tables))
	for _, t := range sf.Tables {
		if t.PhysicalName == "" {
			return nil, fmt.Errorf("schema file %s: table %q missing physical_name", path, t.LogicalName)
		}
		cols := make([]ColumnDescriptor, 0, len(t.Columns))
		for _, c := range t.Columns {
			target := ""
			if c.RelationTarget != nil {
				target = *c.RelationTarget
			}
			cols = append(cols, ColumnDescriptor{
				Name:           c.Name,
				Type:           c.Type,
				Nullable:       c.Nullable,
				RelationTarget: target,
			})
		}
		tables = append(tables, TableDescriptor{
			LogicalName:  t.LogicalName,
			PhysicalName: t.PhysicalName,
			Columns:      cols,
		})
	}

	sort.Slice(tables, func(i, j int) bool {
		return tables[i].PhysicalName < tables[j].PhysicalName
	})

	return tables, nil
}
