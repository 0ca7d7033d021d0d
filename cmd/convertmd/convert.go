// Copyright 2026 Conductor OSS
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	convertmd "github.com/nicholasgasior/convertmd-go"
	"github.com/nicholasgasior/convertmd-go/extract"
)

var (
	convertOutput  string
	convertWorkers int
)

var convertCmd = &cobra.Command{
	Use:   "convert FILE...",
	Short: "Convert one or more documents to Markdown",
	Long: `Converts the given documents to Markdown. A single document is written as
a .md file (or to stdout); multiple documents are converted concurrently and
packaged into a ZIP archive of .md files.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runConvert,
}

func init() {
	convertCmd.Flags().StringVarP(&convertOutput, "output", "o", "", "output path (default: stdout for one file, "+convertmd.ArchiveName+" for a batch)")
	convertCmd.Flags().IntVar(&convertWorkers, "workers", convertmd.DefaultWorkers, "maximum concurrent conversions")
}

func runConvert(cmd *cobra.Command, args []string) error {
	docs := make([]convertmd.Document, 0, len(args))
	for _, path := range args {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		docs = append(docs, convertmd.Document{Name: filepath.Base(path), Data: data})
	}

	opts := []convertmd.Option{convertmd.WithWorkers(convertWorkers)}

	var bar *progressbar.ProgressBar
	if len(docs) > 1 {
		bar = progressbar.NewOptions(len(docs),
			progressbar.OptionSetDescription("converting"),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionShowCount(),
			progressbar.OptionOnCompletion(func() { fmt.Fprintln(os.Stderr) }),
		)
		opts = append(opts, convertmd.WithProgress(func(completed, _ int) {
			bar.Set(completed) //nolint:errcheck
		}))
	}

	session := convertmd.NewSession(extract.New(), opts...)
	deliverable, err := session.SetDocuments(cmd.Context(), docs)
	if err != nil {
		return err
	}

	for _, f := range deliverable.Failures {
		fmt.Fprintf(os.Stderr, "failed: %s\n", f)
	}

	if deliverable.Kind == convertmd.DeliverableNone {
		return fmt.Errorf("no documents converted")
	}

	if convertOutput == "" && deliverable.Kind == convertmd.DeliverableMarkdown {
		fmt.Println(string(deliverable.Content))
		return nil
	}

	out := convertOutput
	if out == "" {
		out = deliverable.Filename
	}
	if dir := filepath.Dir(out); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	if err := os.WriteFile(out, deliverable.Content, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}
	fmt.Fprintf(os.Stderr, "wrote %s\n", out)
	return nil
}
