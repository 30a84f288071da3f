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
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/nicholasgasior/anything2md"
)

var formatsCmd = &cobra.Command{
	Use:   "formats",
	Short: "List the supported input formats",
	Run: func(cmd *cobra.Command, args []string) {
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "FORMAT\tMODE\tINPUTS\tEXTENSIONS\tDESCRIPTION")
		for _, r := range anything2md.New().Formats() {
			mode := "local"
			if r.Mode == anything2md.ModeRemote {
				mode = "remote"
			}
			kinds := make([]string, len(r.Accepts))
			for i, k := range r.Accepts {
				kinds[i] = k.String()
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", r.Format, mode,
				strings.Join(kinds, ", "), strings.Join(r.Extensions, " "), r.Description)
		}
		w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(formatsCmd)
}
