package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/pflag"

	"github.com/aventuscto/doc-console/internal/docquery"
	"github.com/aventuscto/doc-console/internal/entity"
)

func (a *App) docsCommand() *Command {
	return &Command{
		Name:    "docs",
		Summary: "Search and upload documents",
		Subcommands: []*Command{
			a.docsSearchCommand(),
			a.docsUploadCommand(),
		},
	}
}

func (a *App) docsSearchCommand() *Command {
	var filter docquery.Filter

	return &Command{
		Name:    "search",
		Summary: "Search documents (no filters lists all documents)",
		Usage:   "docctl docs search [--filename TEXT] [--tag TEXT] [--from YYYY-MM-DD] [--to YYYY-MM-DD]",
		Flags: func() *pflag.FlagSet {
			fs := pflag.NewFlagSet("search", pflag.ContinueOnError)
			fs.StringVar(&filter.Filename, "filename", "", "filename substring")
			fs.StringVar(&filter.Tag, "tag", "", "tag name or value")
			fs.StringVar(&filter.StartDate, "from", "", "uploaded on or after, YYYY-MM-DD")
			fs.StringVar(&filter.EndDate, "to", "", "uploaded on or before, YYYY-MM-DD")
			return fs
		},
		Run: a.requireSession(func(ctx context.Context, args []string) error {
			if err := noArgs(args); err != nil {
				return err
			}

			query := docquery.New(a.docs, a.logger)
			if err := query.Search(ctx, filter); err != nil {
				return err
			}

			docs := query.Results()
			if len(docs) == 0 {
				fmt.Fprintln(a.out, "No documents found matching criteria.")
				return nil
			}
			return writeDocuments(a.out, docs, a.docs.DownloadURL)
		}),
	}
}

func (a *App) docsUploadCommand() *Command {
	var (
		title string
		tags  []string
	)

	return &Command{
		Name:    "upload",
		Summary: "Upload a file with a title and tag values",
		Usage:   "docctl docs upload --title TITLE [--tag ID=VALUE ...] FILE",
		Flags: func() *pflag.FlagSet {
			fs := pflag.NewFlagSet("upload", pflag.ContinueOnError)
			fs.StringVarP(&title, "title", "t", "", "document title")
			fs.StringArrayVar(&tags, "tag", nil, "tag value as ID=VALUE (repeatable)")
			return fs
		},
		Run: a.requireSession(func(ctx context.Context, args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("%w: ожидается один файл", ErrUsage)
			}

			upload := entity.NewUpload(a.docs, a.logger)
			upload.SetForm(entity.UploadForm{Title: title})
			for _, raw := range tags {
				id, value, err := parseTagValue(raw)
				if err != nil {
					return err
				}
				upload.Tags().AddTag(id)
				upload.Tags().SetValue(id, value)
			}

			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("открытие файла: %w", err)
			}
			defer f.Close()

			if err := upload.Submit(ctx, filepath.Base(args[0]), f); err != nil {
				return modelError(upload.Message(), err)
			}
			fmt.Fprintln(a.out, upload.State().Notice)
			return nil
		}),
	}
}

// parseTagValue разбирает значение флага --tag вида ID=VALUE.
func parseTagValue(raw string) (int, string, error) {
	idText, value, ok := strings.Cut(raw, "=")
	if !ok {
		return 0, "", fmt.Errorf("%w: --tag %q, ожидается ID=VALUE", ErrUsage, raw)
	}
	id, err := strconv.Atoi(strings.TrimSpace(idText))
	if err != nil {
		return 0, "", fmt.Errorf("%w: --tag %q: id должен быть числом", ErrUsage, raw)
	}
	return id, value, nil
}

func (a *App) tagsCommand() *Command {
	return &Command{
		Name:    "tags",
		Summary: "Manage meta-tag definitions",
		Subcommands: []*Command{
			{
				Name:    "list",
				Summary: "List tag definitions",
				Run: a.requireSession(func(ctx context.Context, args []string) error {
					if err := noArgs(args); err != nil {
						return err
					}
					tags := entity.NewMetaTags(a.docs, a.logger)
					if err := tags.Refresh(ctx); err != nil {
						return err
					}
					return writeTagDefinitions(a.out, tags.State().Items)
				}),
			},
			a.tagsCreateCommand(),
		},
	}
}

func (a *App) tagsCreateCommand() *Command {
	var form entity.TagForm

	return &Command{
		Name:    "create",
		Summary: "Create a tag definition",
		Usage:   "docctl tags create --name NAME --label LABEL",
		Flags: func() *pflag.FlagSet {
			fs := pflag.NewFlagSet("create", pflag.ContinueOnError)
			fs.StringVar(&form.Name, "name", "", "system name, e.g. department")
			fs.StringVar(&form.Label, "label", "", "display label, e.g. Department")
			return fs
		},
		Run: a.requireSession(func(ctx context.Context, args []string) error {
			if err := noArgs(args); err != nil {
				return err
			}
			tags := entity.NewMetaTags(a.docs, a.logger)
			tags.SetForm(form)
			if err := tags.Create(ctx); err != nil {
				return modelError(tags.Message(), err)
			}
			return writeTagDefinitions(a.out, tags.State().Items)
		}),
	}
}
