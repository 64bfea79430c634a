package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/loog-project/docdiff/internal/util"
	"github.com/loog-project/docdiff/pkg/diffmap"
	"github.com/loog-project/docdiff/pkg/diffpreview"
	"github.com/loog-project/docdiff/pkg/jsonpatch"
)

const (
	formatPretty          = "pretty"
	formatLines           = "lines"
	formatJSON            = "json"
	formatBSON            = "bson"
	formatJSONPatch       = "jsonpatch"
	formatJSONPatchNative = "jsonpatch-native"
)

var outputFormats = []string{formatPretty, formatLines, formatJSON, formatBSON, formatJSONPatch, formatJSONPatchNative}

var (
	// diff command flags
	diffPrefix   string
	diffFilters  []string
	diffWhere    string
	diffFormat   string
	diffMaxDepth int
)

var diffCmd = &cobra.Command{
	Use:   "diff [FLAGS] OLD NEW",
	Short: "Print the update that turns OLD into NEW",
	Long: `Compares two documents and prints the $set / $unset update that transforms
OLD into NEW. Documents are read from .json, .yaml/.yml or .msgpack files; use
"-" to read one of them as JSON from stdin.

Filter paths are relative to --prefix and also select everything below them.
--where takes an expression evaluated for every instruction, e.g.
  Under("spec") && !IsUnset()
  Depth() <= 2 || Kind() == "array"`,
	Args: cobra.ExactArgs(2),
	PreRunE: func(_ *cobra.Command, args []string) error {
		if args[0] == "-" && args[1] == "-" {
			return errors.New("only one document can be read from stdin")
		}
		if format := viper.GetString("format"); !slices.Contains(outputFormats, format) {
			return fmt.Errorf("unknown format %q, want one of %v", format, outputFormats)
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDiff(cmd.OutOrStdout(), args[0], args[1])
	},
}

func init() {
	rootCmd.AddCommand(diffCmd)

	diffCmd.Flags().StringVarP(&diffPrefix, "prefix", "p", "",
		"Path prepended to every instruction, e.g. items.$")
	diffCmd.Flags().StringArrayVarP(&diffFilters, "filter", "f", nil,
		"Only keep instructions at or below this path (repeatable)")
	diffCmd.Flags().StringVarP(&diffWhere, "where", "w", "",
		"Only keep instructions matching this expression")
	diffCmd.Flags().StringVarP(&diffFormat, "format", "o", formatPretty,
		fmt.Sprintf("Output format, one of %v", outputFormats))
	diffCmd.Flags().IntVar(&diffMaxDepth, "max-depth", 0,
		"Assign nested documents below this depth as a whole (0 = unlimited)")

	mustBind("format",
		viper.BindPFlag("format", diffCmd.Flags().Lookup("format")))
	mustBind("max-depth",
		viper.BindPFlag("max-depth", diffCmd.Flags().Lookup("max-depth")))
}

func runDiff(out io.Writer, oldPath, newPath string) error {
	oldDoc, err := util.LoadDocument(oldPath)
	if err != nil {
		return err
	}
	newDoc, err := util.LoadDocument(newPath)
	if err != nil {
		return err
	}

	update := diffmap.ComputeUpdate(oldDoc, newDoc,
		diffPrefix,
		diffmap.NewFilter(diffFilters...),
		diffmap.WithMaxDepth(viper.GetInt("max-depth")),
	)
	log.Debug().
		Str("old", oldPath).
		Str("new", newPath).
		Int("sets", update.Set.Len()).
		Int("unsets", update.Unset.Len()).
		Msg("computed update")

	if diffWhere != "" {
		program, err := util.CompileFilter(diffWhere)
		if err != nil {
			return fmt.Errorf("cannot compile --where expression: %w", err)
		}
		if update, err = util.FilterByExpr(update, program); err != nil {
			return err
		}
	}

	return writeUpdate(out, viper.GetString("format"), oldDoc, newDoc, update)
}

func writeUpdate(out io.Writer, format string, oldDoc, newDoc diffmap.Document, update *diffmap.Update) error {
	theme := diffpreview.PlainTheme
	if !viper.GetBool("no-color") {
		theme = diffpreview.AutoTheme()
	}

	switch format {
	case formatPretty:
		if !update.IsEmpty() {
			_, _ = fmt.Fprint(out, diffpreview.RenderTree(oldDoc, update, theme))
		}
		_, err := fmt.Fprintln(out, diffpreview.RenderStats(update.Stats()))
		return err
	case formatLines:
		_, err := fmt.Fprint(out, diffpreview.Render(update, theme))
		return err
	case formatJSON:
		return writeJSON(out, update)
	case formatBSON:
		data, err := bson.MarshalExtJSON(update.BSON(), false, false)
		if err != nil {
			return fmt.Errorf("cannot encode update as extended JSON: %w", err)
		}
		_, err = fmt.Fprintln(out, string(data))
		return err
	case formatJSONPatch:
		patch := jsonpatch.FromUpdate(update)
		if patch == nil {
			return writeJSON(out, []any{})
		}
		return writeJSON(out, patch)
	case formatJSONPatchNative:
		patch, err := jsonpatch.Compare(oldDoc, newDoc)
		if err != nil {
			return err
		}
		if patch == nil {
			return writeJSON(out, []any{})
		}
		return writeJSON(out, patch)
	}
	return fmt.Errorf("unknown format %q", format)
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
