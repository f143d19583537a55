package steps

import (
	"context"
	"fmt"

	"cosmosdeploy/internal/config"
	"cosmosdeploy/internal/core"
)

// Requirements verifies that every required tool resolves on PATH before the
// pipeline mutates anything.
func Requirements(cfg *config.Config) core.Stage {
	return core.Stage{
		Name: "requirements",
		Run: func(ctx context.Context, env *core.Env) error {
			for _, tool := range cfg.Tools {
				path, err := env.Runner.LookPath(tool)
				if err != nil {
					return fmt.Errorf("required tool not found: %s", tool)
				}
				env.Logf("found %s at %s", tool, path)
			}
			return nil
		},
	}
}
