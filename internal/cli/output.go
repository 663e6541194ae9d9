package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/aventuscto/doc-console/internal/domain/model"
)

func newTable(w io.Writer, header ...string) *tabwriter.Writer {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(header, "\t"))
	return tw
}

func writeDocuments(w io.Writer, docs []model.Document, downloadURL func(string) string) error {
	tw := newTable(w, "ID", "TITLE", "FILENAME", "UPLOADED", "TAGS", "URL")
	for _, d := range docs {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n",
			d.ID, d.Title, d.Filename, orDash(d.UploadedAt.Display()), formatTags(d.Tags), downloadURL(d.Filename))
	}
	return tw.Flush()
}

func writeTagDefinitions(w io.Writer, defs []model.TagDefinition) error {
	tw := newTable(w, "ID", "NAME", "LABEL")
	for _, d := range defs {
		fmt.Fprintf(tw, "%d\t%s\t%s\n", d.ID, d.Name, d.Label)
	}
	return tw.Flush()
}

func writeUsers(w io.Writer, users []model.User) error {
	tw := newTable(w, "ID", "USERNAME", "STATUS", "GROUP")
	for i := range users {
		u := &users[i]
		status := "Inactive"
		if u.IsActive {
			status = "Active"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", u.ID, u.Username, status, orDash(u.GroupName()))
	}
	return tw.Flush()
}

func writeGroups(w io.Writer, groups []model.Group) error {
	tw := newTable(w, "ID", "NAME", "ROLES")
	for _, g := range groups {
		names := make([]string, len(g.Roles))
		for i, r := range g.Roles {
			names[i] = r.Name
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\n", g.ID, g.Name, orDash(strings.Join(names, ", ")))
	}
	return tw.Flush()
}

func writeRoles(w io.Writer, roles []model.Role) error {
	tw := newTable(w, "ID", "NAME", "PERMISSIONS")
	for _, r := range roles {
		names := make([]string, len(r.Permissions))
		for i, p := range r.Permissions {
			names[i] = p.Name
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\n", r.ID, r.Name, orDash(strings.Join(names, ", ")))
	}
	return tw.Flush()
}

func writePermissions(w io.Writer, perms []model.Permission) error {
	tw := newTable(w, "ID", "NAME", "DESCRIPTION")
	for _, p := range perms {
		fmt.Fprintf(tw, "%d\t%s\t%s\n", p.ID, p.Name, orDash(p.Description))
	}
	return tw.Flush()
}

// formatTags — значения тегов документа в порядке backend: "Label=Value, ...".
func formatTags(tags []model.DocumentTag) string {
	parts := make([]string, 0, len(tags))
	for _, t := range tags {
		label := t.Label()
		if label == "" {
			label = "?"
		}
		parts = append(parts, label+"="+t.Value)
	}
	return orDash(strings.Join(parts, ", "))
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
