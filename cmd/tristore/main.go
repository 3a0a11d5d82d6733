package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/aleksaelezovic/tristore/internal/storage"
	"github.com/aleksaelezovic/tristore/pkg/rdf"
	"github.com/aleksaelezovic/tristore/pkg/store"
	"github.com/dustin/go-humanize"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

func main() {
	if len(os.Args) < 3 {
		fmt.Println("Usage: tristore <command> <input> [args]")
		fmt.Println("Commands:")
		fmt.Println("  convert <input> [syntax]       - Write the input in another syntax (default: ntriples)")
		fmt.Println("  count <input>                  - Count the statements of the input")
		fmt.Println("  query <input> <s> <p> <o> [g]  - Print matching statements, - is a wildcard")
		fmt.Println("  stats <input>                  - Print statement, predicate and storage totals")
		fmt.Println("  filter <input> <pattern> [-v]  - Stream canonical statements matching an N-Quads pattern,")
		fmt.Println("                                   or not matching with -v")
		fmt.Println()
		fmt.Println("Set TRISTORE_LOG=debug for verbose logging.")
		os.Exit(1)
	}

	logger := newLogger()
	world := rdf.NewWorld(rdf.WithLogger(logger))

	command, input := os.Args[1], os.Args[2]

	var err error
	switch command {
	case "convert":
		syntax := rdf.NTriples
		if len(os.Args) >= 4 {
			if syntax = rdf.SyntaxByName(os.Args[3]); syntax == rdf.SyntaxEmpty {
				err = fmt.Errorf("unknown syntax %q: %w", os.Args[3], rdf.ErrBadArg)
				break
			}
		}
		err = runConvert(world, input, syntax)
	case "count":
		err = runCount(world, input)
	case "query":
		if len(os.Args) < 6 {
			fmt.Println("Usage: tristore query <input> <s> <p> <o> [g]")
			os.Exit(1)
		}
		err = runQuery(world, input, os.Args[3:])
	case "stats":
		err = runStats(world, input)
	case "filter":
		if len(os.Args) < 4 {
			fmt.Println("Usage: tristore filter <input> <pattern> [-v]")
			os.Exit(1)
		}
		invert := len(os.Args) >= 5 && os.Args[4] == "-v"
		err = runFilter(world, input, os.Args[3], !invert)
	default:
		fmt.Printf("Unknown command: %s\n", command)
		os.Exit(1)
	}

	if err != nil {
		level.Error(logger).Log("msg", "command failed", "command", command, "status", rdf.StatusOf(err), "err", err)
		os.Exit(1)
	}
}

func newLogger() log.Logger {
	logger := log.NewLogfmtLogger(log.NewSyncWriter(os.Stderr))
	if os.Getenv("TRISTORE_LOG") == "debug" {
		logger = level.NewFilter(logger, level.AllowDebug())
	} else {
		logger = level.NewFilter(logger, level.AllowInfo())
	}
	return log.With(logger, "ts", log.DefaultTimestampUTC)
}

func runConvert(world *rdf.World, input string, syntax rdf.Syntax) error {
	model, err := store.Load(world, input)
	if err != nil {
		return err
	}
	defer model.Close()

	text, err := store.Dumps(model, store.DumpSyntax(syntax))
	if err != nil {
		return err
	}
	fmt.Print(text)
	return nil
}

func runCount(world *rdf.World, input string) error {
	model, err := store.Load(world, input)
	if err != nil {
		return err
	}
	defer model.Close()

	fmt.Printf("%s statements\n", humanize.Comma(int64(model.Size())))
	return nil
}

func runQuery(world *rdf.World, input string, args []string) error {
	model, err := store.Load(world, input)
	if err != nil {
		return err
	}
	defer model.Close()

	var pattern [4]rdf.Node
	for i, arg := range args {
		if i >= len(pattern) {
			break
		}
		if arg == "-" {
			continue
		}
		if pattern[i], err = rdf.NodeFromSyntax(arg, rdf.Turtle, nil); err != nil {
			return err
		}
	}

	r, err := model.Range(pattern[0], pattern[1], pattern[2], pattern[3])
	if err != nil {
		return err
	}
	defer r.Close()

	writer := rdf.NewWriter(world, rdf.NQuads, nil, os.Stdout)
	n := 0
	for r.Next() {
		if err := writer.OnEvent(rdf.StatementEvent(r.Statement(), 0)); err != nil {
			return err
		}
		n++
	}
	if err := r.Err(); err != nil {
		return err
	}
	if err := writer.Finish(); err != nil {
		return err
	}

	level.Info(log.With(world.Logger(), "component", "query")).Log("msg", "query finished", "matches", n)
	return nil
}

// runFilter streams the input through a canonicaliser and a filter to
// N-Quads on stdout, without building a model
func runFilter(world *rdf.World, input, patternText string, inclusive bool) error {
	pattern, err := rdf.ParsePattern(world, patternText)
	if err != nil {
		return err
	}

	syntax := rdf.GuessSyntax(input)
	if syntax == rdf.SyntaxEmpty {
		syntax = rdf.Turtle
	}

	writer := rdf.NewWriter(world, rdf.NQuads, nil, os.Stdout)
	filter := rdf.NewFilter(writer, pattern.Subject(), pattern.Predicate(), pattern.Object(), pattern.Graph(), inclusive)
	reader := rdf.NewReader(world, syntax, nil, rdf.NewCanon(world, filter, rdf.CanonLax))
	if err := reader.Start(rdf.FileSource(input)); err != nil {
		return err
	}

	err = reader.ReadDocument()
	if ferr := reader.Finish(); err == nil {
		err = ferr
	}
	if err != nil {
		return err
	}
	return writer.Finish()
}

func runStats(world *rdf.World, input string) error {
	backend := storage.NewMemoryStorage()
	model, err := store.Load(world, input,
		store.LoadModelFlags(store.IndexSPO|store.IndexPSO|store.IndexGraphs),
		store.LoadModelOptions(store.WithStorage(backend)))
	if err != nil {
		_ = backend.Close()
		return err
	}
	defer model.Close()

	predicates := map[string]int{}
	graphs := map[string]int{}
	r := model.Ordered(store.TablePSO)
	defer r.Close()

	for r.Next() {
		st := r.Statement()
		predicates[st.Predicate().String()]++
		if g := st.Graph(); g != nil {
			graphs[g.String()]++
		}
	}
	if err := r.Err(); err != nil {
		return err
	}

	fmt.Printf("Statements:  %s\n", humanize.Comma(int64(model.Size())))
	fmt.Printf("Predicates:  %s\n", humanize.Comma(int64(len(predicates))))
	fmt.Printf("Graphs:      %s\n", humanize.Comma(int64(len(graphs))))
	fmt.Printf("Index keys:  %s\n", humanize.Comma(int64(backend.Len())))
	fmt.Printf("Index size:  %s\n", humanize.Bytes(uint64(backend.Size())))

	fmt.Println()
	printCounts("Predicate", predicates)
	if len(graphs) > 0 {
		fmt.Println()
		printCounts("Graph", graphs)
	}
	return nil
}

// printCounts prints a table of counts, largest first
func printCounts(heading string, counts map[string]int) {
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if counts[names[i]] != counts[names[j]] {
			return counts[names[i]] > counts[names[j]]
		}
		return names[i] < names[j]
	})

	fmt.Printf("| %-60s | %10s |\n", heading, "Count")
	fmt.Println("|" + "--------------------------------------------------------------|" + "------------|")
	for _, name := range names {
		fmt.Printf("| %-60s | %10s |\n", name, humanize.Comma(int64(counts[name])))
	}
}
