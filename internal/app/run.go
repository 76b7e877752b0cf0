package app

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/specialistvlad/metaxml/internal/ctxlog"
	"github.com/specialistvlad/metaxml/internal/document"
	"github.com/specialistvlad/metaxml/internal/fsutil"
)

// Run loads every document under the configured path and writes their
// renderings, one after another, each followed by a newline. Nothing is
// written unless every document loads.
func (a *App) Run(ctx context.Context) (err error) {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.", "doc_path", a.config.DocPath)

	files, err := fsutil.ResolveFiles(a.config.DocPath, ".hcl")
	if err != nil {
		return err
	}
	if len(files) == 0 {
		a.logger.Warn("No .hcl documents found in path, nothing to render.", "path", a.config.DocPath)
		return nil
	}
	a.logger.Debug("Discovered documents.", "count", len(files))

	docs := make([]*document.Document, 0, len(files))
	for _, file := range files {
		doc, err := document.Load(ctx, file)
		if err != nil {
			return err
		}
		docs = append(docs, doc)
	}

	out := a.outW
	if a.config.OutPath != "" {
		f, err := os.Create(a.config.OutPath)
		if err != nil {
			return fmt.Errorf("failed to create output file %s: %w", a.config.OutPath, err)
		}
		defer func() {
			if cerr := f.Close(); cerr != nil && err == nil {
				err = fmt.Errorf("failed to close output file %s: %w", a.config.OutPath, cerr)
			}
		}()
		out = f
	}

	if err := render(out, docs, a.config.Indent); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	a.logger.Info("Rendered documents.", "count", len(docs), "out", a.config.OutPath)
	a.logger.Debug("App.Run method finished.")
	return nil
}

func render(w io.Writer, docs []*document.Document, indent int) error {
	for _, doc := range docs {
		if _, err := io.WriteString(w, doc.XMLAt(indent)+"\n"); err != nil {
			return err
		}
	}
	return nil
}
