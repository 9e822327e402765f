// blacklistctl manages the SQLite blacklist database the proxy loads at
// startup.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/whizzzkid/instagram-proxy-api/internal/access"
	"github.com/whizzzkid/instagram-proxy-api/internal/blacklist"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		dbPath     string
		add        string
		remove     string
		importFile string
		seed       bool
		list       bool
	)

	flag.StringVar(&dbPath, "db", envOrDefault("BLACKLIST_DB", ""), "Path to the SQLite blacklist database")
	flag.StringVar(&add, "add", "", "Domain to add")
	flag.StringVar(&remove, "remove", "", "Domain to remove")
	flag.StringVar(&importFile, "import", "", "Import domains from a file, one per line ('#' comments allowed)")
	flag.BoolVar(&seed, "seed", false, "Seed the database with the bundled default list")
	flag.BoolVar(&list, "list", false, "Print all blacklisted domains")
	flag.Parse()

	if dbPath == "" {
		return fmt.Errorf("--db is required (or set BLACKLIST_DB)")
	}

	store, err := blacklist.Open(dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := context.Background()

	if seed {
		for _, d := range blacklist.Default {
			if err := store.Add(ctx, access.Normalize(d)); err != nil {
				return fmt.Errorf("seed %s: %w", d, err)
			}
		}
		fmt.Printf("Seeded %d default domains\n", len(blacklist.Default))
	}

	if importFile != "" {
		n, err := importDomains(ctx, store, importFile)
		if err != nil {
			return err
		}
		fmt.Printf("Imported %d domains from %s\n", n, importFile)
	}

	if add != "" {
		normalized := access.Normalize(add)
		if err := store.Add(ctx, normalized); err != nil {
			return fmt.Errorf("add %s: %w", normalized, err)
		}
		fmt.Printf("Added %s\n", normalized)
	}

	if remove != "" {
		normalized := access.Normalize(remove)
		if err := store.Remove(ctx, normalized); err != nil {
			return fmt.Errorf("remove %s: %w", normalized, err)
		}
		fmt.Printf("Removed %s\n", normalized)
	}

	if list {
		domains, err := store.Domains(ctx)
		if err != nil {
			return err
		}
		for _, d := range domains {
			fmt.Println(d)
		}
	}

	count, err := store.Count(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("%d domains blacklisted\n", count)
	return nil
}

func importDomains(ctx context.Context, store *blacklist.Store, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open import file: %w", err)
	}
	defer f.Close()

	n := 0
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if err := store.Add(ctx, access.Normalize(line)); err != nil {
			return n, fmt.Errorf("import %s: %w", line, err)
		}
		n++
	}
	if err := scanner.Err(); err != nil {
		return n, fmt.Errorf("read import file: %w", err)
	}
	return n, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
