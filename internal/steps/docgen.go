package steps

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"cosmosdeploy/internal/config"
	"cosmosdeploy/internal/core"
)

// DocFileName is the deployment info document written after a push.
const DocFileName = "DEPLOYMENT.md"

const docTemplate = `# Cosmos Hub — Deployment

Deployed: %s

## Stack

- **frontend** — web dashboard rendering space weather, satellite passes and
  sustainability metrics
- **backend** — API layer aggregating NASA, NOAA, EPA and Celestrak/N2YO data
- **database** — Prisma schema and generated client

## Required environment

- DATABASE_URL — database connection string
- NASA_API_KEY, NOAA_TOKEN, EPA_API_KEY, N2YO_API_KEY — third-party data keys

See SETUP.md for the full configuration walkthrough.
`

// DeploymentDoc renders the deployment info document with the run's date.
// Unlike the ignore file it is regenerated on every successful run; a write
// failure here is a warning, not a pipeline failure.
func DeploymentDoc(cfg *config.Config) core.Stage {
	return core.Stage{
		Name: "deployment doc",
		Run: func(ctx context.Context, env *core.Env) error {
			path := filepath.Join(env.RootDir, DocFileName)
			doc := fmt.Sprintf(docTemplate, time.Now().Format("2006-01-02"))
			if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
				env.Warnf("cannot write %s: %v", DocFileName, err)
				return nil
			}
			env.Logf("wrote %s", DocFileName)
			return nil
		},
	}
}
