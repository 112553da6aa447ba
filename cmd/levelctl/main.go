// levelctl moves level definitions between YAML files and the database.
//
// Usage:
//
//	go run ./cmd/levelctl <command> [-config path] [-v] [args]
//
// Commands: migrate, import <level.yaml>..., export <name> [-out path], list, delete <name>
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/l1jgo/sim2d/internal/config"
	"github.com/l1jgo/sim2d/internal/data"
	"github.com/l1jgo/sim2d/internal/persist"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

func printUsage() {
	fmt.Fprintln(os.Stderr, "Usage: levelctl <command> [-config path] [-v] [args]")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Commands:")
	fmt.Fprintln(os.Stderr, "  migrate                  apply pending schema migrations and report them")
	fmt.Fprintln(os.Stderr, "  import <level.yaml>...   store levels (tiles_file CSVs are inlined)")
	fmt.Fprintln(os.Stderr, "  export <name> [-out f]   write a stored level as YAML (stdout by default)")
	fmt.Fprintln(os.Stderr, "  list                     list stored levels")
	fmt.Fprintln(os.Stderr, "  delete <name>            remove a stored level")
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	cmd := os.Args[1]
	if cmd == "-h" || cmd == "--help" || cmd == "help" {
		printUsage()
		return
	}

	fs := flag.NewFlagSet(cmd, flag.ExitOnError)
	cfgPath := fs.String("config", config.Path(), "config file")
	out := fs.String("out", "", "export destination")
	verbose := fs.Bool("v", false, "log at debug level")
	_ = fs.Parse(os.Args[2:])

	commands := map[string]func(context.Context, *persist.LevelRepo, []string, string) error{
		"migrate": func(context.Context, *persist.LevelRepo, []string, string) error { return nil },
		"import":  importLevels,
		"export":  exportLevel,
		"list":    listLevels,
		"delete":  deleteLevel,
	}
	fn, ok := commands[cmd]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", cmd)
		printUsage()
		os.Exit(1)
	}

	log := newLogger(*verbose)
	defer log.Sync()

	if err := run(*cfgPath, log, cmd == "migrate", func(ctx context.Context, repo *persist.LevelRepo) error {
		return fn(ctx, repo, fs.Args(), *out)
	}); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		os.Exit(1)
	}
}

func newLogger(verbose bool) *zap.Logger {
	level := zapcore.WarnLevel
	if verbose {
		level = zapcore.DebugLevel
	}
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.DisableCaller = true
	cfg.DisableStacktrace = true
	cfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
	log, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return log
}

// run connects, migrates and hands a repo to fn. With report set the applied
// migrations are printed to stdout.
func run(cfgPath string, log *zap.Logger, report bool, fn func(context.Context, *persist.LevelRepo) error) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := persist.NewDB(ctx, cfg.Database, log)
	if err != nil {
		return err
	}
	defer db.Close()

	applied, err := persist.RunMigrations(ctx, db.Pool, log)
	if err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	if report {
		printApplied(applied)
	}
	return fn(ctx, persist.NewLevelRepo(db))
}

func printApplied(applied []persist.AppliedMigration) {
	if len(applied) == 0 {
		fmt.Println("  schema up to date")
		return
	}
	for _, m := range applied {
		fmt.Printf("  applied %05d %-24s %s\n", m.Version, m.Source, m.Duration.Round(time.Microsecond))
	}
}

func importLevels(ctx context.Context, repo *persist.LevelRepo, args []string, _ string) error {
	if len(args) == 0 {
		return fmt.Errorf("import: no level files given")
	}
	for _, path := range args {
		lv, err := data.LoadLevel(path)
		if err != nil {
			return err
		}
		if err := repo.Save(ctx, lv); err != nil {
			return err
		}
		fmt.Printf("  imported %-20s %dx%d\n", lv.Name, lv.Width(), lv.Height())
	}
	return nil
}

func exportLevel(ctx context.Context, repo *persist.LevelRepo, args []string, out string) error {
	if len(args) != 1 {
		return fmt.Errorf("export: want exactly one level name")
	}
	lv, err := repo.Load(ctx, args[0])
	if err != nil {
		return err
	}
	raw, err := yaml.Marshal(lv)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", lv.Name, err)
	}
	if out == "" {
		_, err = os.Stdout.Write(raw)
		return err
	}
	if err := os.WriteFile(out, raw, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}
	fmt.Printf("  exported %s -> %s\n", lv.Name, out)
	return nil
}

func listLevels(ctx context.Context, repo *persist.LevelRepo, _ []string, _ string) error {
	infos, err := repo.List(ctx)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tSIZE\tREV\tUPDATED")
	for _, in := range infos {
		fmt.Fprintf(w, "%s\t%dx%d\t%d\t%s\n", in.Name, in.Width, in.Height, in.Revision, in.UpdatedAt.Format(time.DateTime))
	}
	return w.Flush()
}

func deleteLevel(ctx context.Context, repo *persist.LevelRepo, args []string, _ string) error {
	if len(args) != 1 {
		return fmt.Errorf("delete: want exactly one level name")
	}
	if err := repo.Delete(ctx, args[0]); err != nil {
		return err
	}
	fmt.Printf("  deleted %s\n", args[0])
	return nil
}
