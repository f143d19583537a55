package steps

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cosmosdeploy/internal/config"
	"cosmosdeploy/internal/core"
)

const gitignoreContent = `node_modules/
dist/
build/
.next/
.env
.env.local
*.log
.DS_Store
.cosmosdeploy/
`

// GitInit creates the repository metadata only if it does not already exist.
// An already-initialized repository is a warning, not a failure.
func GitInit(cfg *config.Config) core.Stage {
	return core.Stage{
		Name: "git init",
		Run: func(ctx context.Context, env *core.Env) error {
			if _, err := os.Stat(filepath.Join(env.RootDir, ".git")); err == nil {
				return core.Skip("repository already initialized")
			}
			_, err := env.Exec(ctx, env.RootDir, "git init")
			return err
		},
	}
}

// Commit creates the ignore file if absent, stages everything and commits
// with the configured message. An empty working tree is a non-fatal skip.
func Commit(cfg *config.Config) core.Stage {
	return core.Stage{
		Name: "commit",
		Run: func(ctx context.Context, env *core.Env) error {
			ignorePath := filepath.Join(env.RootDir, ".gitignore")
			if _, err := os.Stat(ignorePath); os.IsNotExist(err) {
				if err := os.WriteFile(ignorePath, []byte(gitignoreContent), 0644); err != nil {
					return fmt.Errorf("write .gitignore: %w", err)
				}
				env.Logf("created .gitignore")
			} else {
				env.Warnf(".gitignore already exists, leaving it unchanged")
			}

			if _, err := env.Exec(ctx, env.RootDir, "git add -A"); err != nil {
				return err
			}

			out, err := env.Exec(ctx, env.RootDir, "git status --porcelain")
			if err != nil {
				return err
			}
			if strings.TrimSpace(out) == "" {
				return core.Skip("nothing to commit")
			}

			_, err = env.Exec(ctx, env.RootDir, "git commit -m "+shellQuote(cfg.Commit.Message))
			return err
		},
	}
}

// Push points the configured remote at the configured URL, renames the
// branch and force-pushes. Force-pushing rewrites remote history, so the
// stage refuses to run unless git.force is set in the config.
func Push(cfg *config.Config) core.Stage {
	return core.Stage{
		Name: "push",
		Run: func(ctx context.Context, env *core.Env) error {
			if !cfg.Git.Force {
				return fmt.Errorf("refusing to force-push: set git.force to true in the config to overwrite %s on %s", cfg.Git.Branch, cfg.Git.Remote)
			}

			remote := cfg.Git.Remote
			if _, err := env.Exec(ctx, env.RootDir, fmt.Sprintf("git remote get-url %s", remote)); err != nil {
				if _, err := env.Exec(ctx, env.RootDir, fmt.Sprintf("git remote add %s %s", remote, cfg.Git.URL)); err != nil {
					return err
				}
			} else {
				if _, err := env.Exec(ctx, env.RootDir, fmt.Sprintf("git remote set-url %s %s", remote, cfg.Git.URL)); err != nil {
					return err
				}
			}

			if _, err := env.Exec(ctx, env.RootDir, fmt.Sprintf("git branch -M %s", cfg.Git.Branch)); err != nil {
				return err
			}

			_, err := env.Exec(ctx, env.RootDir, fmt.Sprintf("git push -u %s %s --force", remote, cfg.Git.Branch))
			return err
		},
	}
}

// shellQuote wraps s in single quotes for sh -c, escaping embedded quotes.
func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
