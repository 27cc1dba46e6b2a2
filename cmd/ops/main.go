package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"

	"zenith/internal/config"
	"zenith/internal/ops"
	"zenith/internal/store"
)

func main() {
	_ = godotenv.Load()
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(2)
	}

	ctx := context.Background()
	switch os.Args[1] {
	case "export":
		if err := cmdExport(ctx, os.Args[2:]); err != nil {
			fmt.Fprintln(os.Stderr, "export failed:", err)
			os.Exit(1)
		}
	case "import":
		if err := cmdImport(ctx, os.Args[2:]); err != nil {
			fmt.Fprintln(os.Stderr, "import failed:", err)
			os.Exit(1)
		}
	case "inspect":
		if err := cmdInspect(os.Args[2:]); err != nil {
			fmt.Fprintln(os.Stderr, "inspect failed:", err)
			os.Exit(1)
		}
	case "drill":
		if err := cmdDrill(ctx, os.Args[2:]); err != nil {
			fmt.Fprintln(os.Stderr, "drill failed:", err)
			os.Exit(1)
		}
	default:
		printUsage()
		os.Exit(2)
	}
}

func openStore(path string) (store.Repository, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	config.ApplyEnv(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return store.Open(cfg.Storage, nil)
}

func cmdExport(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	cfgPath := fs.String("config", "zenith.yml", "path to config file")
	out := fs.String("out", "", "output snapshot path (.lz4)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *out == "" {
		ts := time.Now().UTC().Format("20060102T150405Z")
		*out = filepath.Join("backups", "zenith-"+ts+".lz4")
	}

	repo, err := openStore(*cfgPath)
	if err != nil {
		return err
	}
	defer repo.Close()

	m, err := ops.Export(ctx, repo, *out)
	if err != nil {
		return err
	}
	fmt.Println(m.Path)
	fmt.Println("blake3:", m.Checksum)
	return nil
}

func cmdImport(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("import", flag.ContinueOnError)
	cfgPath := fs.String("config", "zenith.yml", "path to config file")
	in := fs.String("in", "", "snapshot to import (.lz4)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *in == "" {
		return fmt.Errorf("in is required")
	}

	repo, err := openStore(*cfgPath)
	if err != nil {
		return err
	}
	defer repo.Close()

	s, err := ops.Import(ctx, repo, *in)
	if err != nil {
		return err
	}
	fmt.Printf("imported level %d, currency %.0f\n", s.Level, s.Currency)
	return nil
}

func cmdInspect(args []string) error {
	fs := flag.NewFlagSet("inspect", flag.ContinueOnError)
	in := fs.String("in", "", "snapshot to inspect (.lz4)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *in == "" {
		return fmt.Errorf("in is required")
	}
	m, s, err := ops.Inspect(*in)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(map[string]any{"manifest": m, "state": s})
}

// cmdDrill exports the store, imports it into a scratch store and checks
// that a second export hashes the same.
func cmdDrill(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("drill", flag.ContinueOnError)
	cfgPath := fs.String("config", "zenith.yml", "path to config file")
	workDir := fs.String("work-dir", os.TempDir(), "temporary workspace for drill artifacts")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := os.MkdirAll(*workDir, 0o755); err != nil {
		return err
	}

	repo, err := openStore(*cfgPath)
	if err != nil {
		return err
	}
	defer repo.Close()

	ts := time.Now().UTC().Format("20060102T150405Z")
	first, err := ops.Export(ctx, repo, filepath.Join(*workDir, "zenith-drill-"+ts+".lz4"))
	if err != nil {
		return err
	}

	scratch, err := store.NewFileRepo(filepath.Join(*workDir, "zenith-drill-restore-"+ts))
	if err != nil {
		return err
	}
	if _, err := ops.Import(ctx, scratch, first.Path); err != nil {
		return err
	}
	second, err := ops.Export(ctx, scratch, filepath.Join(*workDir, "zenith-drill-"+ts+"-restored.lz4"))
	if err != nil {
		return err
	}
	if first.Checksum != second.Checksum {
		return fmt.Errorf("digest mismatch after restore: src=%s restored=%s", first.Checksum, second.Checksum)
	}

	fmt.Println("export:", first.Path)
	fmt.Println("restored:", second.Path)
	fmt.Println("digest:", first.Checksum)
	return nil
}

func printUsage() {
	fmt.Println("usage:")
	fmt.Println("  zenith-ops export  --config zenith.yml --out backups/snap.lz4")
	fmt.Println("  zenith-ops import  --config zenith.yml --in backups/snap.lz4")
	fmt.Println("  zenith-ops inspect --in backups/snap.lz4")
	fmt.Println("  zenith-ops drill   --config zenith.yml --work-dir /tmp")
}
