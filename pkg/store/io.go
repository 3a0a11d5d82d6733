package store

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/aleksaelezovic/tristore/pkg/rdf"
)

// DefaultModelFlags returns the indices Load uses for a syntax
func DefaultModelFlags(syntax rdf.Syntax) ModelFlags {
	flags := IndexSPO | IndexOPS
	if syntax.HasGraphs() {
		flags |= IndexGraphs
	}
	return flags
}

type loadOptions struct {
	syntax       rdf.Syntax
	readerFlags  rdf.ReaderFlags
	graph        rdf.Node
	env          *rdf.Env
	modelFlags   *ModelFlags
	modelOptions []ModelOption
}

// LoadOption configures Load and Loads
type LoadOption func(*loadOptions)

// LoadSyntax sets the syntax of the input. By default it is guessed from
// the file name, falling back to Turtle.
func LoadSyntax(syntax rdf.Syntax) LoadOption {
	return func(o *loadOptions) {
		o.syntax = syntax
	}
}

// LoadFlags sets the reader flags
func LoadFlags(flags rdf.ReaderFlags) LoadOption {
	return func(o *loadOptions) {
		o.readerFlags = flags
	}
}

// LoadGraph puts statements without a graph into graph
func LoadGraph(graph rdf.Node) LoadOption {
	return func(o *loadOptions) {
		o.graph = graph
	}
}

// LoadEnv sets the environment the reader expands names with
func LoadEnv(env *rdf.Env) LoadOption {
	return func(o *loadOptions) {
		o.env = env
	}
}

// LoadModelFlags sets the flags of the new model instead of DefaultModelFlags
func LoadModelFlags(flags ModelFlags) LoadOption {
	return func(o *loadOptions) {
		o.modelFlags = &flags
	}
}

// LoadModelOptions passes options to the new model
func LoadModelOptions(opts ...ModelOption) LoadOption {
	return func(o *loadOptions) {
		o.modelOptions = append(o.modelOptions, opts...)
	}
}

// Load reads the file at path into a new model. Relative URIs in the
// document resolve against the file URI unless the environment sets a base.
func Load(world *rdf.World, path string, opts ...LoadOption) (*Model, error) {
	o := loadOptions{syntax: rdf.GuessSyntax(path)}
	for _, opt := range opts {
		opt(&o)
	}

	if o.env == nil {
		abs, err := filepath.Abs(path)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve %s: %w", path, err)
		}
		if o.env, err = rdf.NewEnvWithBase(rdf.NewFileURI(filepath.ToSlash(abs), "")); err != nil {
			return nil, err
		}
	}

	return load(world, rdf.FileSource(path), o)
}

// Loads reads a document from a string into a new model
func Loads(world *rdf.World, text string, opts ...LoadOption) (*Model, error) {
	var o loadOptions
	for _, opt := range opts {
		opt(&o)
	}
	return load(world, rdf.StringSource(text), o)
}

func load(world *rdf.World, source *rdf.Source, o loadOptions) (*Model, error) {
	if o.syntax == rdf.SyntaxEmpty {
		o.syntax = rdf.Turtle
	}

	flags := DefaultModelFlags(o.syntax)
	if o.modelFlags != nil {
		flags = *o.modelFlags
	}

	model, err := NewModel(world, flags, o.modelOptions...)
	if err != nil {
		return nil, err
	}

	reader := rdf.NewReader(world, o.syntax, o.env, NewInserter(model, o.graph),
		rdf.WithReaderFlags(o.readerFlags))
	if err := reader.Start(source); err != nil {
		_ = model.Close()
		return nil, err
	}

	err = reader.ReadDocument()
	if ferr := reader.Finish(); err == nil {
		err = ferr
	}
	if err != nil {
		_ = model.Close()
		return nil, fmt.Errorf("failed to load %s: %w", source.Name(), err)
	}
	return model, nil
}

type dumpOptions struct {
	syntax      rdf.Syntax
	env         *rdf.Env
	writerFlags rdf.WriterFlags
}

// DumpOption configures Dump and Dumps
type DumpOption func(*dumpOptions)

// DumpSyntax sets the output syntax. By default it is guessed from the
// file name, falling back to Turtle.
func DumpSyntax(syntax rdf.Syntax) DumpOption {
	return func(o *dumpOptions) {
		o.syntax = syntax
	}
}

// DumpEnv writes the base and prefixes of env first and abbreviates with
// them
func DumpEnv(env *rdf.Env) DumpOption {
	return func(o *dumpOptions) {
		o.env = env
	}
}

// DumpWriterFlags sets the writer flags
func DumpWriterFlags(flags rdf.WriterFlags) DumpOption {
	return func(o *dumpOptions) {
		o.writerFlags = flags
	}
}

// Dump writes every statement of model to the file at path
func Dump(model *Model, path string, opts ...DumpOption) (err error) {
	o := dumpOptions{syntax: rdf.GuessSyntax(path)}
	for _, opt := range opts {
		opt(&o)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close %s: %w", path, cerr)
		}
	}()

	return dump(model, f, o)
}

// Dumps writes every statement of model to a string
func Dumps(model *Model, opts ...DumpOption) (string, error) {
	var o dumpOptions
	for _, opt := range opts {
		opt(&o)
	}

	var sb strings.Builder
	if err := dump(model, &sb, o); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func dump(model *Model, out io.Writer, o dumpOptions) error {
	if o.syntax == rdf.SyntaxEmpty {
		o.syntax = rdf.Turtle
	}

	writer := rdf.NewWriter(model.World(), o.syntax, rdf.NewEnv(), out,
		rdf.WithWriterFlags(o.writerFlags))

	if o.env != nil {
		if err := o.env.Describe(writer); err != nil {
			return err
		}
	}

	r := model.All()
	defer r.Close()

	var err error
	if o.syntax.Abbreviates() {
		err = Describe(r, writer, 0)
	} else {
		for r.Next() {
			if err = writer.OnEvent(rdf.StatementEvent(r.Statement(), 0)); err != nil {
				break
			}
		}
		if err == nil {
			err = r.Err()
		}
	}

	if ferr := writer.Finish(); err == nil {
		err = ferr
	}
	return err
}
