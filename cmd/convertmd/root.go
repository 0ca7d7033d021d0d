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
	"strings"

	"github.com/spf13/cobra"

	convertmd "github.com/nicholasgasior/convertmd-go"
)

var version = "dev"

var rootCmd = &cobra.Command{
	Use:     "convertmd",
	Short:   "Convert documents to Markdown",
	Long:    "Converts " + strings.Join(convertmd.Formats(), ", ") + " documents to Markdown, one at a time or in concurrent batches.",
	Version: version,

	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(convertCmd)
	rootCmd.AddCommand(serveCmd)
}
