package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"cosmosdeploy/internal/config"
	"cosmosdeploy/internal/core"
	"cosmosdeploy/internal/journal"
	"cosmosdeploy/internal/security"
	"cosmosdeploy/internal/steps"
)

func usage() {
	fmt.Println("Usage:")
	fmt.Println("  cosmosdeploy deploy  [-config deploy.yaml] [-dir .]    run the full pipeline")
	fmt.Println("  cosmosdeploy journal <inspect|verify> [-config ...]    examine the audit journal")
	fmt.Println("  cosmosdeploy keys    [-config deploy.yaml]             generate the journal keypair")
	os.Exit(1)
}

func main() {
	if len(os.Args) < 2 {
		usage()
	}

	switch os.Args[1] {
	case "deploy":
		runDeploy(os.Args[2:])
	case "journal":
		runJournal(os.Args[2:])
	case "keys":
		runKeys(os.Args[2:])
	default:
		fmt.Println("Unknown command:", os.Args[1])
		usage()
	}
}

func runDeploy(args []string) {
	fs := flag.NewFlagSet("deploy", flag.ExitOnError)
	configPath := fs.String("config", config.DefaultPath, "path to the deploy config")
	dir := fs.String("dir", ".", "project root to deploy")
	_ = fs.Parse(args)

	config.LoadEnv()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	root, err := filepath.Abs(*dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to resolve project dir: %v\n", err)
		os.Exit(1)
	}

	runner, err := core.NewRunner(cfg, root, steps.Plan(cfg), core.NewExecutor(), os.Stdout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to init pipeline: %v\n", err)
		os.Exit(1)
	}

	if err := runner.RunPipeline(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Deployment failed: %v\n", err)
		os.Exit(1)
	}
}

func runJournal(args []string) {
	if len(args) < 1 {
		usage()
	}
	sub := args[0]

	fs := flag.NewFlagSet("journal", flag.ExitOnError)
	configPath := fs.String("config", config.DefaultPath, "path to the deploy config")
	dir := fs.String("dir", ".", "project root")
	_ = fs.Parse(args[1:])

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	jnl, err := journal.Open(filepath.Join(*dir, cfg.StateDir, "journal.jsonl"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open journal: %v\n", err)
		os.Exit(1)
	}

	switch sub {
	case "inspect":
		for _, r := range jnl.Records() {
			fmt.Printf("index=%d run=%s stage=%q status=%s hash=%s\n",
				r.Index, r.RunID, r.Stage, r.Status, shortHash(r.Hash))
		}

	case "verify":
		if err := jnl.Verify(); err != nil {
			fmt.Printf("Journal verification FAILED: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Journal verification ok")

	default:
		fmt.Println("Unknown journal command:", sub)
		usage()
	}
}

func runKeys(args []string) {
	fs := flag.NewFlagSet("keys", flag.ExitOnError)
	configPath := fs.String("config", config.DefaultPath, "path to the deploy config")
	dir := fs.String("dir", ".", "project root")
	_ = fs.Parse(args)

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	keyDir := filepath.Join(*dir, cfg.StateDir, "keys")
	if _, _, err := security.EnsureKeyPair(keyDir); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to generate keys: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("Journal keys ready in", keyDir)
}

func shortHash(h string) string {
	if len(h) > 16 {
		return h[:16]
	}
	return h
}
