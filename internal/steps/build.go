package steps

import (
	"context"
	"path/filepath"

	"cosmosdeploy/internal/config"
	"cosmosdeploy/internal/core"
)

// Install runs npm install at the root and then in every workspace.
func Install(cfg *config.Config) core.Stage {
	return core.Stage{
		Name: "install",
		Run: func(ctx context.Context, env *core.Env) error {
			if _, err := env.Exec(ctx, env.RootDir, "npm install"); err != nil {
				return err
			}
			for _, ws := range cfg.Workspaces {
				dir := filepath.Join(env.RootDir, ws)
				env.Logf("installing workspace %s", ws)
				if _, err := env.Exec(ctx, dir, "npm install"); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

// Build generates the database client, then builds every workspace.
func Build(cfg *config.Config) core.Stage {
	return core.Stage{
		Name: "build",
		Run: func(ctx context.Context, env *core.Env) error {
			if _, err := env.Exec(ctx, env.RootDir, cfg.Database.Generate); err != nil {
				return err
			}
			_, err := env.Exec(ctx, env.RootDir, "npm run build --workspaces")
			return err
		},
	}
}

// Test runs the full test suite.
func Test(cfg *config.Config) core.Stage {
	return core.Stage{
		Name: "test",
		Run: func(ctx context.Context, env *core.Env) error {
			_, err := env.Exec(ctx, env.RootDir, "npm test")
			return err
		},
	}
}
