package storage

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/holps-7/striko/pkg/model"
)

// envRefPattern matches {{env:VAR_NAME}}
var envRefPattern = regexp.MustCompile(`\{\{\s*env:([^}\s]+)\s*\}\}`)

// EnvironmentStore keeps environments in <baseDir>/environments.
type EnvironmentStore struct {
	records *recordStore[model.Environment]
}

// NewEnvironmentStore opens the environment store under baseDir.
func NewEnvironmentStore(baseDir string, logger *slog.Logger) *EnvironmentStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &EnvironmentStore{records: &recordStore[model.Environment]{
		dir:    EnvironmentsDir(baseDir),
		kind:   "environment",
		schema: environmentSchema,
		id:     func(e model.Environment) string { return e.ID },
		name:   func(e model.Environment) string { return e.Name },
		logger: logger,
	}}
}

// Save writes the whole environment.
func (s *EnvironmentStore) Save(ctx context.Context, env model.Environment) error {
	if env.Variables == nil {
		env.Variables = map[string]string{}
	}
	return s.records.save(ctx, env)
}

// Get loads an environment by id.
func (s *EnvironmentStore) Get(ctx context.Context, id string) (model.Environment, bool, error) {
	return s.records.get(ctx, id)
}

// List returns all readable environments sorted by name.
func (s *EnvironmentStore) List(ctx context.Context) ([]model.Environment, error) {
	return s.records.list(ctx)
}

// Find looks an environment up by id, then by case-insensitive name.
func (s *EnvironmentStore) Find(ctx context.Context, ref string) (model.Environment, bool, error) {
	if checkID(ref) == nil {
		env, found, err := s.Get(ctx, ref)
		if err != nil || found {
			return env, found, err
		}
	}
	envs, err := s.List(ctx)
	if err != nil {
		return model.Environment{}, false, err
	}
	for _, env := range envs {
		if strings.EqualFold(env.Name, ref) {
			return env, true, nil
		}
	}
	return model.Environment{}, false, nil
}

// Import reads a flat KEY: value YAML file and saves it as a new environment.
// {{env:VAR}} references are resolved against the process environment. When
// name is empty the file name without extension is used.
func (s *EnvironmentStore) Import(ctx context.Context, filePath, name string) (model.Environment, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return model.Environment{}, fmt.Errorf("failed to read environment file: %w", err)
	}

	var vars map[string]string
	if err := yaml.Unmarshal(data, &vars); err != nil {
		return model.Environment{}, fmt.Errorf("failed to parse environment YAML: %w", err)
	}
	for key, value := range vars {
		vars[key] = resolveEnvRefs(value)
	}

	if name == "" {
		base := filepath.Base(filePath)
		name = strings.TrimSuffix(base, filepath.Ext(base))
	}

	env := model.Environment{ID: uuid.NewString(), Name: name, Variables: vars}
	if err := s.Save(ctx, env); err != nil {
		return model.Environment{}, err
	}
	return env, nil
}

// resolveEnvRefs replaces {{env:VAR}} with the value of VAR. Unset variables
// keep the original reference.
func resolveEnvRefs(text string) string {
	return envRefPattern.ReplaceAllStringFunc(text, func(match string) string {
		name := envRefPattern.FindStringSubmatch(match)[1]
		if val, ok := os.LookupEnv(name); ok {
			return val
		}
		return match
	})
}
