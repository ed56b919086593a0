package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/FocuswithJustin/ExamTeX/core/compiler"
	"github.com/FocuswithJustin/ExamTeX/core/errors"
	"github.com/FocuswithJustin/ExamTeX/core/render"
	"github.com/FocuswithJustin/ExamTeX/core/template"
	"github.com/FocuswithJustin/ExamTeX/internal/bundle"
	"github.com/FocuswithJustin/ExamTeX/internal/keystore"
	"github.com/FocuswithJustin/ExamTeX/internal/logging"
	"github.com/FocuswithJustin/ExamTeX/internal/server"
	"github.com/FocuswithJustin/ExamTeX/internal/validation"
)

// SourceFlags are shared by the commands that compile a source file.
type SourceFlags struct {
	Source      string `arg:"" help:"Exam markup file" type:"existingfile"`
	Seed        int64  `name:"seed" short:"s" help:"Shuffle seed (default from config)"`
	Template    string `name:"template" short:"t" help:"Template file (.tex, .xml, .yaml)" type:"path"`
	AttachSheet bool   `name:"attach-sheet" help:"Append the answer sheet to the exam"`
}

// compile reads, compiles and logs one source file.
func (f *SourceFlags) compile(app *App) (*compiler.Documents, error) {
	if err := validation.CheckSourcePath(f.Source); err != nil {
		return nil, err
	}
	file, err := os.Open(f.Source)
	if err != nil {
		return nil, errors.NewIO("open source", f.Source, err)
	}
	defer file.Close()
	src, err := validation.ReadSource(file)
	if err != nil {
		return nil, errors.Wrapf(err, "%s", f.Source)
	}

	tmplPath := f.Template
	if tmplPath == "" {
		tmplPath = app.Config.Template
	}
	if tmplPath != "" {
		if err := validation.CheckTemplatePath(tmplPath); err != nil {
			return nil, err
		}
	}
	templates, err := template.Load(tmplPath)
	if err != nil {
		return nil, err
	}

	seed := f.Seed
	if seed == 0 {
		seed = app.Config.Seed
	}
	start := time.Now()
	logging.CompileStarted(f.Source, seed)
	docs, err := compiler.Compile(src, compiler.Options{
		Seed:        seed,
		Templates:   templates,
		AttachSheet: f.AttachSheet || app.Config.AttachSheet,
		Source:      filepath.Base(f.Source),
		Logger:      logging.GetLogger(),
	})
	if err != nil {
		logging.CompileFailed(f.Source, errors.Kind(err), err)
		return nil, errors.Wrapf(err, "%s", f.Source)
	}
	logging.CompileFinished(f.Source, docs.Questions, time.Since(start))
	return docs, nil
}

// buildName derives a build name from the source file name.
func (f *SourceFlags) buildName() string {
	base := strings.TrimSuffix(filepath.Base(f.Source), filepath.Ext(f.Source))
	if name, err := validation.SanitizeFilename(base); err == nil {
		return name
	}
	return "exam"
}

// record stores a build in the configured key registry.
func record(app *App, id, name string, docs *compiler.Documents) error {
	ctx := context.Background()
	store, err := keystore.Open(ctx, app.Config.Store.DSN)
	if err != nil {
		return err
	}
	defer store.Close()
	earlier, err := store.FindByFingerprint(ctx, docs.Fingerprint)
	if err != nil {
		return err
	}
	for _, b := range earlier {
		fmt.Fprintf(app.Out, "source already recorded as build %s (seed %d, %s)\n", b.ID, b.Seed, b.Created.Format(time.RFC3339))
	}
	if err := store.Record(ctx, keystore.NewBuild(id, name, docs)); err != nil {
		return err
	}
	logging.KeyRecorded(id, docs.Fingerprint, len(docs.Records))
	return nil
}

// outputPath resolves an -o value. A relative path is kept inside the
// configured output_dir when one is set; an empty value stays empty.
func outputPath(app *App, flag string) (string, error) {
	base := app.Config.OutputDir
	if flag == "" {
		if base == "." {
			return "", nil
		}
		return base, nil
	}
	if filepath.IsAbs(flag) || base == "." || base == "" {
		return flag, nil
	}
	rel, err := validation.SanitizePath(base, flag)
	if err != nil {
		return "", errors.Wrapf(err, "output %s", flag)
	}
	return filepath.Join(base, rel), nil
}

// CompileCmd writes the three documents next to the source or into an
// output directory.
type CompileCmd struct {
	SourceFlags `embed:""`
	Output      string `name:"output" short:"o" help:"Output directory (default from config)"`
	Record      bool   `name:"record" help:"Record the answer key in the key registry"`
}

func (c *CompileCmd) Run(app *App) error {
	docs, err := c.compile(app)
	if err != nil {
		return err
	}
	dir, err := outputPath(app, c.Output)
	if err != nil {
		return err
	}
	examPath, sheetPath, keyPath := validation.OutputPaths(dir, c.Source)
	if err := os.MkdirAll(filepath.Dir(examPath), 0o755); err != nil {
		return errors.NewIO("create directory", filepath.Dir(examPath), err)
	}
	for _, out := range []struct {
		path, text string
	}{
		{examPath, docs.Exam},
		{sheetPath, docs.AnswerSheet},
		{keyPath, docs.AnswerKey},
	} {
		if err := os.WriteFile(out.path, []byte(out.text), 0o644); err != nil {
			return errors.NewIO("write", out.path, err)
		}
		fmt.Fprintf(app.Out, "wrote %s\n", out.path)
	}

	if c.Record {
		id := bundle.NewBuildID()
		if err := record(app, id, c.buildName(), docs); err != nil {
			return err
		}
		fmt.Fprintf(app.Out, "recorded build %s\n", id)
	}
	return nil
}

// CheckCmd compiles without writing.
type CheckCmd struct {
	SourceFlags `embed:""`
	Answers     bool `name:"answers" short:"a" help:"Print the answer records"`
}

func (c *CheckCmd) Run(app *App) error {
	docs, err := c.compile(app)
	if err != nil {
		return err
	}
	fmt.Fprintf(app.Out, "%s: ok, %d questions, %d answers\n", c.Source, docs.Questions, len(docs.Records))
	if c.Answers {
		writeAnswers(app, docs.Records)
	}
	return nil
}

// BundleCmd writes a .tar.xz bundle.
type BundleCmd struct {
	SourceFlags `embed:""`
	Output      string `name:"output" short:"o" help:"Bundle path (default <name>.tar.xz in the output directory)"`
	Record      bool   `name:"record" help:"Record the answer key in the key registry"`
	Verify      bool   `name:"verify" help:"Read the bundle back and check its digests"`
}

func (c *BundleCmd) Run(app *App) error {
	docs, err := c.compile(app)
	if err != nil {
		return err
	}
	path := filepath.Join(app.Config.OutputDir, c.buildName()+".tar.xz")
	if c.Output != "" {
		if path, err = outputPath(app, c.Output); err != nil {
			return err
		}
	}
	m, err := bundle.WriteFile(path, "", docs)
	if err != nil {
		return err
	}
	logging.BundleWritten(path, m.BuildID, len(m.Files))
	fmt.Fprintf(app.Out, "wrote %s (build %s)\n", path, m.BuildID)

	if c.Verify {
		contents, err := bundle.ReadFile(path)
		if err != nil {
			return err
		}
		if err := contents.Verify(); err != nil {
			return errors.Wrapf(err, "verify %s", path)
		}
		fmt.Fprintf(app.Out, "verified %d files\n", len(contents.Manifest.Files))
	}

	if c.Record {
		if err := record(app, m.BuildID, c.buildName(), docs); err != nil {
			return err
		}
		fmt.Fprintf(app.Out, "recorded build %s\n", m.BuildID)
	}
	return nil
}

// KeysListCmd lists recorded builds.
type KeysListCmd struct {
	Limit int `name:"limit" short:"n" default:"20" help:"Maximum builds to list (0 = all)"`
}

func (c *KeysListCmd) Run(app *App) error {
	ctx := context.Background()
	store, err := keystore.Open(ctx, app.Config.Store.DSN)
	if err != nil {
		return err
	}
	defer store.Close()

	builds, err := store.List(ctx, c.Limit)
	if err != nil {
		return err
	}
	if len(builds) == 0 {
		fmt.Fprintln(app.Out, "no builds recorded")
		return nil
	}
	tw := tabwriter.NewWriter(app.Out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tQUESTIONS\tSEED\tCREATED")
	for _, b := range builds {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%s\n", b.ID, b.Name, b.Questions, b.Seed, b.Created.Format(time.RFC3339))
	}
	return tw.Flush()
}

// KeysShowCmd prints one build's answers.
type KeysShowCmd struct {
	ID string `arg:"" help:"Build ID"`
}

func (c *KeysShowCmd) Run(app *App) error {
	ctx := context.Background()
	store, err := keystore.Open(ctx, app.Config.Store.DSN)
	if err != nil {
		return err
	}
	defer store.Close()

	b, err := store.Get(ctx, c.ID)
	if err != nil {
		return err
	}
	fmt.Fprintf(app.Out, "Build:     %s\n", b.ID)
	fmt.Fprintf(app.Out, "Name:      %s\n", b.Name)
	fmt.Fprintf(app.Out, "Seed:      %d\n", b.Seed)
	fmt.Fprintf(app.Out, "Source:    %s\n", b.Fingerprint)
	fmt.Fprintf(app.Out, "Questions: %d\n", b.Questions)
	writeAnswers(app, b.Answers)
	return nil
}

// ServeCmd runs the HTTP service.
type ServeCmd struct {
	Addr     string `name:"addr" help:"Listen address (default from config)"`
	Template string `name:"template" short:"t" help:"Template file" type:"path"`
	NoStore  bool   `name:"no-store" help:"Keep builds in memory only"`
}

func (c *ServeCmd) Run(app *App) error {
	cfg := app.Config
	addr := c.Addr
	if addr == "" {
		addr = cfg.Server.Addr
	}
	tmplPath := c.Template
	if tmplPath == "" {
		tmplPath = cfg.Template
	}
	templates, err := template.Load(tmplPath)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var store *keystore.Store
	if !c.NoStore {
		store, err = keystore.Open(ctx, cfg.Store.DSN)
		if err != nil {
			return err
		}
		defer store.Close()
	}

	srv := server.New(server.Config{
		Addr:      addr,
		JWTSecret: cfg.Server.JWTSecret,
		JWTIssuer: cfg.Server.JWTIssuer,
		CacheSize: cfg.Server.CacheSize,
		CacheTTL:  time.Hour,
		Templates: templates,
		Store:     store,
	})
	return srv.ListenAndServe(ctx)
}

// TemplateDumpCmd prints template snippets.
type TemplateDumpCmd struct {
	Template string `name:"template" short:"t" help:"Template file layered over the default" type:"path"`
	Name     string `arg:"" optional:"" help:"Print only this snippet"`
}

func (c *TemplateDumpCmd) Run(app *App) error {
	tmplPath := c.Template
	if tmplPath == "" {
		tmplPath = app.Config.Template
	}
	p, err := template.Load(tmplPath)
	if err != nil {
		return err
	}
	if c.Name != "" {
		v, ok := p.Lookup(strings.ToLower(c.Name))
		if !ok {
			return errors.NewNotFound("snippet", c.Name)
		}
		fmt.Fprint(app.Out, v)
		return nil
	}
	for _, name := range []string{template.Preamble, template.WordBank, template.AnswerKey} {
		fmt.Fprintf(app.Out, "%%%% %s\n%s\n", name, template.Get(p, name))
	}
	return nil
}

// VersionCmd prints the version.
type VersionCmd struct{}

func (c *VersionCmd) Run(app *App) error {
	fmt.Fprintf(app.Out, "examtex version %s (sqlite driver: %s)\n", version, keystore.DriverType())
	return nil
}

// writeAnswers prints answer records as a table.
func writeAnswers(app *App, records []render.AnswerRecord) {
	tw := tabwriter.NewWriter(app.Out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NUMBER\tMODULE\tLETTER\tANSWER")
	for _, r := range records {
		num := strconv.Itoa(r.Number)
		if r.Part > 0 {
			num += "." + strconv.Itoa(r.Part)
		}
		if r.Subpart > 0 {
			num += "." + strconv.Itoa(r.Subpart)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", num, r.Module, r.Letter, r.Text)
	}
	tw.Flush()
}
