// Package main generates CLI reference documentation.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"
	"github.com/ubuntu/idbridge/cmd/idbridge/cli"
	"github.com/ubuntu/idbridge/internal/consts"
)

func main() {
	out := flag.String("out", "./docs/cli", "output directory")
	format := flag.String("format", "markdown", "markdown|man|rest")
	front := flag.Bool("frontmatter", false, "prepend simple YAML front matter to markdown")
	flag.Parse()

	if err := generate(cli.New().RootCmd(), *out, *format, *front); err != nil {
		log.Fatal(err)
	}
}

// generate writes the reference of rootCmd and its subcommands to out.
func generate(rootCmd *cobra.Command, out, format string, front bool) error {
	if err := os.MkdirAll(out, 0o750); err != nil {
		return err
	}

	// stable, reproducible files (no timestamp footer)
	disableAutoGenTag(rootCmd)

	switch format {
	case "markdown":
		if !front {
			return doc.GenMarkdownTree(rootCmd, out)
		}
		prep := func(filename string) string {
			base := filepath.Base(filename)
			name := strings.TrimSuffix(base, filepath.Ext(base))
			title := strings.ReplaceAll(name, "_", " ")
			return fmt.Sprintf("---\ntitle: %q\nslug: %q\ndescription: \"CLI reference for %s\"\n---\n\n", title, name, title)
		}
		link := func(name string) string { return strings.ToLower(name) }
		return doc.GenMarkdownTreeCustom(rootCmd, out, prep, link)
	case "man":
		hdr := &doc.GenManHeader{
			Title:   strings.ToUpper(rootCmd.Name()),
			Section: "1",
			Source:  consts.CmdName + " " + consts.Version,
			Manual:  "User Commands",
		}
		return doc.GenManTree(rootCmd, hdr, out)
	case "rest":
		return doc.GenReSTTree(rootCmd, out)
	}
	return fmt.Errorf("unknown format: %s", format)
}

// disableAutoGenTag marks cmd and all its subcommands, as man pages only look at the
// command they document.
func disableAutoGenTag(cmd *cobra.Command) {
	cmd.DisableAutoGenTag = true
	for _, c := range cmd.Commands() {
		disableAutoGenTag(c)
	}
}
