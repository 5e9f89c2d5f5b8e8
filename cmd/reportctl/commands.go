package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"insightform/internal/analytics"
	"insightform/internal/logger"
	"insightform/internal/model"
)

type inputFlags struct {
	formPath      string
	responsesPath string
	pretty        bool
	verbose       bool
}

func newRootCmd() *cobra.Command {
	var in inputFlags

	root := &cobra.Command{
		Use:          "reportctl",
		Short:        "Aggregate exported form responses offline",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&in.formPath, "form", "", "path to the form JSON")
	root.PersistentFlags().StringVar(&in.responsesPath, "responses", "", "path to the responses JSON array")
	root.PersistentFlags().BoolVar(&in.pretty, "pretty", false, "indent the output")
	root.PersistentFlags().BoolVarP(&in.verbose, "verbose", "v", false, "log rejected answers to stderr")
	root.MarkPersistentFlagRequired("form")
	root.MarkPersistentFlagRequired("responses")

	root.AddCommand(newAggregateCmd(&in), newChartsCmd(&in))
	return root
}

func newAggregateCmd(in *inputFlags) *cobra.Command {
	var context string

	cmd := &cobra.Command{
		Use:   "aggregate",
		Short: "Print per-question statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := analytics.Context(context)
			if ctx != analytics.ContextAI && ctx != analytics.ContextChart {
				return fmt.Errorf("unknown context %q (want ai or chart)", context)
			}

			processed, err := in.aggregate(cmd.ErrOrStderr(), ctx)
			if err != nil {
				return err
			}
			return writeOutput(cmd.OutOrStdout(), processed, in.pretty)
		},
	}
	cmd.Flags().StringVar(&context, "context", string(analytics.ContextChart), "aggregation context: ai or chart")
	return cmd
}

func newChartsCmd(in *inputFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "charts",
		Short: "Print chart-ready data",
		RunE: func(cmd *cobra.Command, args []string) error {
			processed, err := in.aggregate(cmd.ErrOrStderr(), analytics.ContextChart)
			if err != nil {
				return err
			}
			return writeOutput(cmd.OutOrStdout(), analytics.FormatForCharts(processed), in.pretty)
		},
	}
}

func (in *inputFlags) aggregate(stderr io.Writer, ctx analytics.Context) (*analytics.ProcessedData, error) {
	var form model.Form
	if err := readJSON(in.formPath, &form); err != nil {
		return nil, fmt.Errorf("read form: %w", err)
	}

	var responses []model.Response
	if err := readJSON(in.responsesPath, &responses); err != nil {
		return nil, fmt.Errorf("read responses: %w", err)
	}

	zl := zap.NewNop()
	if in.verbose {
		l, err := logger.New("warn", true)
		if err != nil {
			return nil, err
		}
		zl = l
		defer zl.Sync()
	}

	processed := analytics.NewAggregator(zl).Aggregate(form.Questions, responses, ctx)
	if n := processed.Warnings(); n > 0 {
		fmt.Fprintf(stderr, "%d answers rejected\n", n)
	}
	return processed, nil
}

func readJSON(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

func writeOutput(w io.Writer, v interface{}, pretty bool) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if pretty {
		var buf bytes.Buffer
		if err := json.Indent(&buf, data, "", "  "); err != nil {
			return err
		}
		data = buf.Bytes()
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
