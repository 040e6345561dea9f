// Package toml stores the agent API-key registry as a TOML file with
// atomic replace-on-write semantics.
package toml

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/isnadmansour/IsnadTasks/internal/domain"
	"github.com/isnadmansour/IsnadTasks/internal/ports"
)

const (
	registryFileMode = 0o600
	registryDirMode  = 0o700
	tempFilePattern  = ".apikeys-*.toml.tmp"

	// AdminAgentID is the agent id the admin key resolves to.
	AdminAgentID = "admin"
)

type Registry struct {
	path string
	mu   *sync.RWMutex
}

var (
	lockRegistryMu sync.Mutex
	pathLockMap    = map[string]*sync.RWMutex{}
)

var _ ports.AgentRegistry = (*Registry)(nil)

func NewRegistry(path string) (*Registry, error) {
	if path == "" {
		return nil, errors.New("registry path is empty")
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve registry path: %w", err)
	}
	absPath = filepath.Clean(absPath)

	return &Registry{path: absPath, mu: lockForPath(absPath)}, nil
}

func (r *Registry) ResolveAPIKey(ctx context.Context, key string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if key == "" {
		return "", domain.ErrUnknownAPIKey
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	file, err := r.readSchema()
	if err != nil {
		return "", err
	}

	if file.AdminKey != "" && file.AdminKey == key {
		return AdminAgentID, nil
	}
	for _, agent := range file.Agents {
		if agent.APIKey == key {
			return agent.ID, nil
		}
	}

	return "", domain.ErrUnknownAPIKey
}

func (r *Registry) Put(ctx context.Context, agentID, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if agentID == "" {
		return errors.New("agent id is empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	file, err := r.readSchema()
	if err != nil {
		return err
	}
	file.applyDefaults()

	if agentID == AdminAgentID {
		file.AdminKey = key
	} else {
		updated := false
		for i := range file.Agents {
			if file.Agents[i].ID == agentID {
				file.Agents[i].APIKey = key
				updated = true
				break
			}
		}
		if !updated {
			file.Agents = append(file.Agents, agentSchema{ID: agentID, APIKey: key})
		}
	}

	return r.writeSchema(file)
}

func (r *Registry) readSchema() (fileSchema, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fileSchema{}, nil
		}
		return fileSchema{}, fmt.Errorf("read registry file: %w", err)
	}

	var file fileSchema
	if err := toml.Unmarshal(data, &file); err != nil {
		return fileSchema{}, fmt.Errorf("decode registry file: %w", err)
	}
	if err := file.validateVersion(); err != nil {
		return fileSchema{}, err
	}

	return file, nil
}

func (r *Registry) writeSchema(file fileSchema) error {
	file.applyDefaults()

	if err := os.MkdirAll(filepath.Dir(r.path), registryDirMode); err != nil {
		return fmt.Errorf("create registry directory: %w", err)
	}

	data, err := toml.Marshal(file)
	if err != nil {
		return fmt.Errorf("encode registry file: %w", err)
	}

	tempFile, err := os.CreateTemp(filepath.Dir(r.path), tempFilePattern)
	if err != nil {
		return fmt.Errorf("create temp registry file: %w", err)
	}

	tempName := tempFile.Name()
	cleanup := true
	defer func() {
		if cleanup {
			_ = os.Remove(tempName)
		}
	}()

	if _, err := tempFile.Write(data); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("write temp registry file: %w", err)
	}

	if err := tempFile.Chmod(registryFileMode); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("chmod temp registry file: %w", err)
	}

	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("close temp registry file: %w", err)
	}

	if err := os.Rename(tempName, r.path); err != nil {
		return fmt.Errorf("replace registry file: %w", err)
	}

	cleanup = false

	return nil
}

func lockForPath(path string) *sync.RWMutex {
	lockRegistryMu.Lock()
	defer lockRegistryMu.Unlock()

	if mu, ok := pathLockMap[path]; ok {
		return mu
	}

	mu := &sync.RWMutex{}
	pathLockMap[path] = mu
	return mu
}
