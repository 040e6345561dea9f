package toml

import "fmt"

const currentSchemaVersion = 1

type fileSchema struct {
	SchemaVersion int           `toml:"schema_version"`
	AdminKey      string        `toml:"admin_key,omitempty"`
	Agents        []agentSchema `toml:"agents,omitempty"`
}

type agentSchema struct {
	ID     string `toml:"id"`
	APIKey string `toml:"api_key"`
}

func (f *fileSchema) applyDefaults() {
	if f.SchemaVersion == 0 {
		f.SchemaVersion = currentSchemaVersion
	}
}

func (f fileSchema) validateVersion() error {
	if f.SchemaVersion != 0 && f.SchemaVersion != currentSchemaVersion {
		return fmt.Errorf("unsupported registry schema version %d", f.SchemaVersion)
	}
	return nil
}
