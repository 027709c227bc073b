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
	"bytes"
	"fmt"
	"os"
	"path"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/datalog-lang/go-datalog/pkg/ram/analysis"
	"github.com/datalog-lang/go-datalog/pkg/synth"
)

var synthesiseCmd = &cobra.Command{
	Use:   "synthesise [flags] ram_file",
	Short: "synthesise a RAM program into a C++ compilation unit.",
	Long: `Synthesise a given RAM program into a single self-contained C++
	 compilation unit, ready for a host compiler.  The unit embeds the
	 program's symbol table and relation containers chosen by index
	 analysis.`,
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
		cfg := synth.Config{
			DebugReport: GetFlag(cmd, "debug-report"),
			Verbose:     GetFlag(cmd, "verbose"),
			ProfileName: GetString(cmd, "profile"),
			LiveProfile: GetFlag(cmd, "live-profile"),
			Provenance:  GetString(cmd, "provenance"),
			Jobs:        GetInt(cmd, "jobs"),
			Version:     Version,
			SourceName:  GetString(cmd, "source-name"),
		}
		cfg.ProfileEnabled = cfg.ProfileName != ""
		//
		if err := checkProvenance(cfg.Provenance); err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		// Read the translation unit
		prog, symbols := ReadRamFile(args[0])
		// Run the index analysis
		unit := synth.TranslationUnit{
			Program:     prog,
			SymbolTable: symbols,
			Analysis:    analysis.Analyse(prog),
		}
		// Synthesise
		var (
			out         bytes.Buffer
			synthesiser = synth.New(unit, cfg)
			id          = instanceID(args[0])
		)
		//
		withSharedLibrary := synthesiser.Generate(&out, id)
		//
		if withSharedLibrary {
			log.Info("program uses user-defined functors; link the functor shared library")
		}
		// Write the unit
		output := GetString(cmd, "output")
		if err := os.WriteFile(output, out.Bytes(), 0644); err != nil {
			fmt.Printf("error writing %s: %s\n", output, err.Error())
			os.Exit(1)
		}
		//
		log.Debugf("wrote %d bytes to %s", out.Len(), output)
	},
}

func checkProvenance(mode string) error {
	switch mode {
	case "", synth.ProvenanceExplain, synth.ProvenanceExplore, synth.ProvenanceSubtreeHeights:
		return nil
	}
	//
	return fmt.Errorf("unknown provenance mode %q", mode)
}

// The instance id keys the emitted factory and entry hooks; it is derived
// from the input file name with non-identifier characters dropped.
func instanceID(filename string) string {
	base := strings.TrimSuffix(path.Base(filename), path.Ext(filename))
	//
	var id strings.Builder
	//
	for _, ch := range base {
		if ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') ||
			(id.Len() > 0 && ch >= '0' && ch <= '9') {
			id.WriteRune(ch)
		}
	}
	//
	if id.Len() == 0 {
		return "program"
	}
	//
	return id.String()
}

//nolint:errcheck
func init() {
	rootCmd.AddCommand(synthesiseCmd)
	synthesiseCmd.Flags().StringP("output", "o", "a.cpp", "specify output file.")
	synthesiseCmd.Flags().Bool("debug-report", false, "wrap emitted fragments in begin/end comments")
	synthesiseCmd.Flags().String("profile", "", "enable profiling, writing the profile log to the given file")
	synthesiseCmd.Flags().Bool("live-profile", false, "enable the live profile UI thread")
	synthesiseCmd.Flags().String("provenance", "", "provenance mode (explain|explore|subtreeHeights)")
	synthesiseCmd.Flags().IntP("jobs", "j", 1, "default thread count of the emitted program")
	synthesiseCmd.Flags().String("source-name", "", "Datalog source name recorded in the emitted program")
	synthesiseCmd.MarkFlagRequired("output")
}
