// Package config loads the deployment configuration from deploy.yaml.
//
// Every value the original shell script hard-coded (remote URL, branch,
// commit message, workspace list, required tools) lives here with the same
// defaults, so a missing config file reproduces the script's behavior except
// for the force-push, which must be enabled explicitly.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultPath is where Load looks when no config flag is given.
const DefaultPath = "deploy.yaml"

// GitConfig holds everything the push stage needs.
type GitConfig struct {
	Remote string `yaml:"remote"` // remote name (default "origin")
	URL    string `yaml:"url"`    // remote repository URL
	Branch string `yaml:"branch"` // branch the local history is pushed as
	Force  bool   `yaml:"force"`  // must be true before the push stage will force-push
}

// Config is the full deployment configuration.
type Config struct {
	Project    string   `yaml:"project"`
	Workspaces []string `yaml:"workspaces"`
	Tools      []string `yaml:"tools"`
	StateDir   string   `yaml:"state_dir"`

	// CommandTimeoutMinutes bounds each external command. 0 means default.
	CommandTimeoutMinutes int `yaml:"command_timeout_minutes"`

	Database struct {
		Generate string `yaml:"generate"` // database client generation command
	} `yaml:"database"`

	Commit struct {
		Message string `yaml:"message"`
	} `yaml:"commit"`

	Git GitConfig `yaml:"git"`
}

const defaultCommitMessage = `Deploy Cosmos Hub dashboard

Full build of the space weather, satellite tracking and environmental
sustainability dashboard: frontend, backend and database workspaces
installed, generated, built and tested.`

// Default returns the configuration matching the original deploy script.
func Default() *Config {
	cfg := &Config{
		Project:               "cosmos-hub",
		Workspaces:            []string{"frontend", "backend", "database"},
		Tools:                 []string{"node", "npm", "git"},
		StateDir:              ".cosmosdeploy",
		CommandTimeoutMinutes: 15,
	}
	cfg.Database.Generate = "npx prisma generate"
	cfg.Commit.Message = defaultCommitMessage
	cfg.Git = GitConfig{
		Remote: "origin",
		URL:    "https://github.com/cosmos-hub/cosmos-hub-dashboard.git",
		Branch: "main",
		Force:  false,
	}
	return cfg
}

// Load reads a YAML config file and fills unset fields with defaults.
// A missing file at the default path is not an error; the defaults apply.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && path == DefaultPath {
			return Default(), nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	def := Default()
	if c.Project == "" {
		c.Project = def.Project
	}
	if len(c.Workspaces) == 0 {
		c.Workspaces = def.Workspaces
	}
	if len(c.Tools) == 0 {
		c.Tools = def.Tools
	}
	if c.StateDir == "" {
		c.StateDir = def.StateDir
	}
	if c.CommandTimeoutMinutes == 0 {
		c.CommandTimeoutMinutes = def.CommandTimeoutMinutes
	}
	if c.Database.Generate == "" {
		c.Database.Generate = def.Database.Generate
	}
	if c.Commit.Message == "" {
		c.Commit.Message = def.Commit.Message
	}
	if c.Git.Remote == "" {
		c.Git.Remote = def.Git.Remote
	}
	if c.Git.URL == "" {
		c.Git.URL = def.Git.URL
	}
	if c.Git.Branch == "" {
		c.Git.Branch = def.Git.Branch
	}
	// Git.Force stays false unless the config sets it.
}

// CommandTimeout returns the per-command timeout as a duration.
func (c *Config) CommandTimeout() time.Duration {
	return time.Duration(c.CommandTimeoutMinutes) * time.Minute
}

// LoadEnv loads a .env file if one exists, so database connection strings and
// third-party API keys documented in SETUP reach the child processes.
func LoadEnv() {
	// Absence of .env is normal; godotenv returns an error we ignore.
	_ = godotenv.Load()
}
