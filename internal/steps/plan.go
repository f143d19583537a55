// Package steps defines the eight stages of the Cosmos Hub deployment
// pipeline in their fixed order.
package steps

import (
	"cosmosdeploy/internal/config"
	"cosmosdeploy/internal/core"
)

// Plan returns the ordered stage list for one deployment. Each stage runs
// only if every stage before it succeeded or skipped.
func Plan(cfg *config.Config) []core.Stage {
	return []core.Stage{
		Requirements(cfg),
		Install(cfg),
		Build(cfg),
		Test(cfg),
		GitInit(cfg),
		Commit(cfg),
		Push(cfg),
		DeploymentDoc(cfg),
	}
}
