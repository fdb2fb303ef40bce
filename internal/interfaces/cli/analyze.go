package cli

import (
	"encoding/json"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/neuroscribe/timeline-engine/internal/infrastructure/monitoring/logging"
	"github.com/neuroscribe/timeline-engine/pkg/errors"
	"github.com/neuroscribe/timeline-engine/pkg/types/clinical"
)

type analyzeOptions struct {
	inputPath  string
	outputPath string
	pretty     bool
}

func newAnalyzeCmd(root *rootOptions) *cobra.Command {
	opts := &analyzeOptions{}

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyze one patient document",
		Long:  "Reads an extracted-mentions document (JSON) from a file or stdin, runs the\nfull analysis pipeline, and writes the timeline, treatment response, and\nfunctional evolution reports as JSON.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, root, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.inputPath, "input", "i", "-", "document JSON file, or - for stdin")
	cmd.Flags().StringVarP(&opts.outputPath, "output", "o", "-", "result file, or - for stdout")
	cmd.Flags().BoolVar(&opts.pretty, "pretty", false, "indent the JSON output")
	return cmd
}

func runAnalyze(cmd *cobra.Command, root *rootOptions, opts *analyzeOptions) error {
	if opts.inputPath == "" {
		return errors.InvalidParam("input path must not be empty")
	}
	if opts.outputPath == "" {
		return errors.InvalidParam("output path must not be empty")
	}

	eng, logger, err := root.setup()
	if err != nil {
		return err
	}

	doc, err := readDocument(cmd.InOrStdin(), opts.inputPath)
	if err != nil {
		return err
	}

	result := eng.Analyze(cmd.Context(), doc)
	logger.Debug("analysis finished", logging.String("run_id", result.RunID))

	out := cmd.OutOrStdout()
	if opts.outputPath != "-" {
		f, err := os.Create(opts.outputPath)
		if err != nil {
			return errors.Internal("creating output file").WithCause(err)
		}
		defer f.Close()
		out = f
	}
	return writeResult(out, result, opts.pretty)
}

// readDocument decodes the input document, rejecting unknown fields so a
// misspelled category surfaces instead of silently dropping mentions.
func readDocument(stdin io.Reader, path string) (*clinical.Document, error) {
	var r io.Reader = stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, errors.NotFound("opening document: " + path).WithCause(err)
		}
		defer f.Close()
		r = f
	}

	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	doc := &clinical.Document{}
	if err := dec.Decode(doc); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "decoding document JSON")
	}
	return doc, nil
}

func writeResult(w io.Writer, result interface{}, pretty bool) error {
	enc := json.NewEncoder(w)
	if pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(result); err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "encoding result JSON")
	}
	return nil
}
