// Copyright Go-Datalog Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0
package cmd

import (
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/datalog-lang/go-datalog/pkg/ram"
	"github.com/datalog-lang/go-datalog/pkg/ram/analysis"
)

var debugCmd = &cobra.Command{
	Use:   "debug [flags] ram_file",
	Short: "print a RAM program in textual form.",
	Long: `Print a given RAM program as an indented textual tree in order to
	debug it, optionally including the index selections computed for its
	relations.`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) != 1 {
			fmt.Println(cmd.UsageString())
			os.Exit(1)
		}
		// Configure log level
		if GetFlag(cmd, "verbose") {
			log.SetLevel(log.DebugLevel)
		}
		//
		prog, _ := ReadRamFile(args[0])
		//
		ram.Print(os.Stdout, prog)
		// Print index selections (if requested)
		if GetFlag(cmd, "indexes") {
			printIndexes(prog)
		}
	},
}

func printIndexes(prog *ram.Program) {
	a := analysis.Analyse(prog)
	//
	for _, rel := range prog.Relations {
		fmt.Printf("INDEXES %s\n", rel.Name)
		//
		for i, order := range a.Indexes(rel) {
			fmt.Printf("  %d: %v\n", i, order)
		}
	}
}

func init() {
	rootCmd.AddCommand(debugCmd)
	debugCmd.Flags().Bool("indexes", false, "print computed index selections")
}
