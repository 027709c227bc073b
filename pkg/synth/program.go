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
package synth

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/datalog-lang/go-datalog/pkg/ram"
)

// Generate assembles the complete compilation unit for the translation
// unit's RAM program: includes, external functor declarations, relation
// container types, the program class and the entry-point scaffolding.  It
// reports whether the emitted unit must be linked against a functor shared
// library.
func (s *Synthesiser) Generate(w io.Writer, id string) bool {
	var (
		symTable  = s.unit.SymbolTable
		prog      = s.unit.Program
		classname = "Sf_" + id
	)
	//
	log.Debugf("synthesising program %s (%d relations)", id, len(prog.Relations))
	// Mint relation identifiers in declaration order, so emitted names are
	// independent of which statement references a relation first.
	for _, rel := range prog.Relations {
		s.relationName(rel)
	}
	// Pre-render the main body and all subroutine bodies.  This populates
	// the frequency and read registries, whose exact sizes are needed when
	// the class fields are emitted further down.
	var mainBody bytes.Buffer
	//
	s.emitCode(&mainBody, prog.Main)
	//
	subroutineBodies := make([]bytes.Buffer, len(prog.Subroutines))
	for i, sub := range prog.Subroutines {
		s.emitCode(&subroutineBodies[i], sub.Body)
	}
	// -- includes --
	fmt.Fprintf(w, "\n#include \"souffle/CompiledSouffle.h\"\n")
	//
	if s.cfg.HasProvenance() {
		fmt.Fprintf(w, "#include <mutex>\n")
		fmt.Fprintf(w, "#include \"souffle/Explain.h\"\n")
	}
	//
	if s.cfg.LiveProfile {
		fmt.Fprintf(w, "#include <thread>\n")
		fmt.Fprintf(w, "#include \"souffle/profile/Tui.h\"\n")
	}
	//
	fmt.Fprintf(w, "\n")
	// -- external functor declarations --
	withSharedLibrary := s.generateFunctorDecls(w, prog)
	//
	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "namespace souffle {\n")
	fmt.Fprintf(w, "using namespace ram;\n")
	// -- relation container types --
	for _, rel := range prog.Relations {
		s.generateRelationTypeStruct(w, s.realisation(rel))
	}
	//
	fmt.Fprintf(w, "\n")
	// -- program class --
	fmt.Fprintf(w, "class %s : public SouffleProgram {\n", classname)
	s.generateWrappers(w)
	//
	if s.cfg.ProfileEnabled {
		fmt.Fprintf(w, "std::string profiling_fname;\n")
	}
	//
	fmt.Fprintf(w, "public:\n")
	// -- symbol table --
	fmt.Fprintf(w, "// -- initialize symbol table --\n")
	fmt.Fprintf(w, "SymbolTable symTable\n")
	//
	if symTable.Size() > 0 {
		fmt.Fprintf(w, "{\n")
		//
		for i := 0; i < symTable.Size(); i++ {
			fmt.Fprintf(w, "\tR\"_(%s)_\",\n", symTable.Resolve(i))
		}
		//
		fmt.Fprintf(w, "}")
	}
	//
	fmt.Fprintf(w, ";")
	// -- profile counters --
	if s.cfg.ProfileEnabled {
		fmt.Fprintf(w, "private:\n")
		//
		if len(s.freqKeys) > 0 {
			fmt.Fprintf(w, "  size_t freqs[%d]{};\n", len(s.freqKeys))
		}
		//
		if len(s.readKeys) > 0 {
			fmt.Fprintf(w, "  size_t reads[%d]{};\n", len(s.readKeys))
		}
	}
	// -- relation members, wrappers and registrations --
	initCons, registerRel := s.generateRelationMembers(w, prog)
	//
	fmt.Fprintf(w, "public:\n")
	// -- constructor --
	fmt.Fprintf(w, "%s", classname)
	//
	if s.cfg.ProfileEnabled {
		fmt.Fprintf(w, "(std::string pf=\"profile.log\") : profiling_fname(pf)")
		//
		if initCons != "" {
			fmt.Fprintf(w, ",\n%s", initCons)
		}
	} else {
		fmt.Fprintf(w, "()")
		//
		if initCons != "" {
			fmt.Fprintf(w, " : %s", initCons)
		}
	}
	//
	fmt.Fprintf(w, "{\n")
	//
	if s.cfg.ProfileEnabled {
		fmt.Fprintf(w, "ProfileEventSingleton::instance().setOutputFile(profiling_fname);\n")
	}
	//
	fmt.Fprintf(w, "%s", registerRel)
	fmt.Fprintf(w, "}\n")
	// -- destructor --
	fmt.Fprintf(w, "~%s() {\n", classname)
	fmt.Fprintf(w, "}\n")
	// -- run function --
	s.generateRunFunction(w, prog, &mainBody)
	// -- public run methods --
	fmt.Fprintf(w, "public:\nvoid run() override { runFunction(\".\", \".\", false); }\n")
	fmt.Fprintf(w, "public:\nvoid runAll(std::string inputDirectory = \".\", std::string outputDirectory = \".\") override { ")
	//
	if s.cfg.LiveProfile {
		fmt.Fprintf(w, "std::thread profiler([]() { profile::Tui().runProf(); });\n")
	}
	//
	fmt.Fprintf(w, "runFunction(inputDirectory, outputDirectory, true);\n")
	//
	if s.cfg.LiveProfile {
		fmt.Fprintf(w, "if (profiler.joinable()) { profiler.join(); }\n")
	}
	//
	fmt.Fprintf(w, "}\n")
	// -- printAll --
	s.generatePrintAll(w, prog)
	// -- dumpFreqs --
	if s.cfg.ProfileEnabled {
		s.generateDumpFreqs(w)
	}
	// -- loadAll --
	s.generateLoadAll(w, prog)
	// -- dump methods --
	s.generateDumpMethods(w, prog)
	// -- symbol table accessor --
	fmt.Fprintf(w, "public:\n")
	fmt.Fprintf(w, "SymbolTable& getSymbolTable() override {\n")
	fmt.Fprintf(w, "return symTable;\n")
	fmt.Fprintf(w, "}\n")
	// -- provenance subroutines --
	if s.cfg.HasProvenance() {
		s.generateProvenance(w, prog, subroutineBodies)
	}
	//
	fmt.Fprintf(w, "};\n")
	// -- hidden hooks --
	fmt.Fprintf(w, "SouffleProgram *newInstance_%s(){return new %s;}\n", id, classname)
	fmt.Fprintf(w, "SymbolTable *getST_%s(SouffleProgram *p){return &reinterpret_cast<%s*>(p)->symTable;}\n",
		id, classname)
	// -- embedded factory / standalone main --
	s.generateEntryPoint(w, id, classname)
	//
	return withSharedLibrary
}

// generateFunctorDecls emits one extern "C" declaration per user-defined
// functor, with the C signature derived from its type string.  Returns true
// if any functor was found, since those require a shared library at link
// time.
func (s *Synthesiser) generateFunctorDecls(w io.Writer, prog *ram.Program) bool {
	functors := make(map[string]string)
	//
	ram.VisitDepthFirst(prog, func(n ram.Node) {
		if op, ok := n.(*ram.UserDefinedOperator); ok {
			if _, present := functors[op.Name]; !present {
				functors[op.Name] = op.TypeSignature
			}
		}
	})
	//
	names := make([]string, 0, len(functors))
	for name := range functors {
		names = append(names, name)
	}
	//
	sort.Strings(names)
	//
	fmt.Fprintf(w, "extern \"C\" {\n")
	//
	for _, name := range names {
		var (
			signature = functors[name]
			arity     = len(signature) - 1
		)
		//
		if signature[arity] == 'N' {
			fmt.Fprintf(w, "souffle::RamDomain ")
		} else {
			fmt.Fprintf(w, "const char * ")
		}
		//
		fmt.Fprintf(w, "%s(", name)
		//
		args := make([]string, arity)
		for i := 0; i < arity; i++ {
			if signature[i] == 'N' {
				args[i] = "souffle::RamDomain"
			} else {
				args[i] = "const char *"
			}
		}
		//
		fmt.Fprintf(w, "%s);\n", strings.Join(args, ","))
	}
	//
	fmt.Fprintf(w, "}\n")
	//
	return len(functors) > 0
}

// generateWrappers emits the inline regex, substring and string-to-number
// helpers used by the lowered string operations.
func (s *Synthesiser) generateWrappers(w io.Writer) {
	// regex wrapper: a malformed pattern logs a warning and fails the match
	fmt.Fprintf(w, "private:\n")
	fmt.Fprintf(w, "static inline bool regex_wrapper(const std::string& pattern, const std::string& text) {\n")
	fmt.Fprintf(w, "   bool result = false; \n")
	fmt.Fprintf(w, "   try { result = std::regex_match(text, std::regex(pattern)); } catch(...) { \n")
	fmt.Fprintf(w, "     std::cerr << \"warning: wrong pattern provided for match(\\\"\" << pattern << \"\\\",\\\"\" << text << \"\\\").\\n\";\n}\n")
	fmt.Fprintf(w, "   return result;\n")
	fmt.Fprintf(w, "}\n")
	// substring wrapper: an out-of-range index logs a warning and yields ""
	fmt.Fprintf(w, "private:\n")
	fmt.Fprintf(w, "static inline std::string substr_wrapper(const std::string& str, size_t idx, size_t len) {\n")
	fmt.Fprintf(w, "   std::string result; \n")
	fmt.Fprintf(w, "   try { result = str.substr(idx,len); } catch(...) { \n")
	fmt.Fprintf(w, "     std::cerr << \"warning: wrong index position provided by substr(\\\"\";\n")
	fmt.Fprintf(w, "     std::cerr << str << \"\\\",\" << (int32_t)idx << \",\" << (int32_t)len << \") functor.\\n\";\n")
	fmt.Fprintf(w, "   } return result;\n")
	fmt.Fprintf(w, "}\n")
	// to-number wrapper: a malformed number raises an arithmetic signal
	fmt.Fprintf(w, "private:\n")
	fmt.Fprintf(w, "static inline RamDomain wrapper_tonumber(const std::string& str) {\n")
	fmt.Fprintf(w, "   RamDomain result=0; \n")
	fmt.Fprintf(w, "   try { result = stord(str); } catch(...) { \n")
	fmt.Fprintf(w, "     std::cerr << \"error: wrong string provided by to_number(\\\"\";\n")
	fmt.Fprintf(w, "     std::cerr << str << \"\\\") functor.\\n\";\n")
	fmt.Fprintf(w, "     raise(SIGFPE);\n")
	fmt.Fprintf(w, "   } return result;\n")
	fmt.Fprintf(w, "}\n")
}

// generateRelationMembers emits one owning member per relation plus a thin
// wrapper per non-temporary relation, and accumulates the constructor
// initialiser list and the relation registrations.
func (s *Synthesiser) generateRelationMembers(w io.Writer, prog *ram.Program) (string, string) {
	var (
		initCons    strings.Builder
		registerRel strings.Builder
		relCtr      int
	)
	// which relations are loaded / stored anywhere in the main statement
	// (subroutines are not searched)
	loadRelations := make(map[string]bool)
	storeRelations := make(map[string]bool)
	//
	ram.VisitDepthFirst(prog.Main, func(n ram.Node) {
		switch n := n.(type) {
		case *ram.Load:
			loadRelations[n.Relation.Name] = true
		case *ram.Store:
			storeRelations[n.Relation.Name] = true
		}
	})
	//
	for _, rel := range prog.Relations {
		var (
			cppName = s.relationName(rel)
			typ     = s.realisation(rel).TypeName()
		)
		//
		fmt.Fprintf(w, "// -- Table: %s\n", rel.Name)
		fmt.Fprintf(w, "std::unique_ptr<%s> %s = std::make_unique<%s>();\n", typ, cppName, typ)
		//
		if rel.Temp {
			continue
		}
		//
		fmt.Fprintf(w, "souffle::RelationWrapper<%d,%s,Tuple<RamDomain,%d>,%d,%d> wrapper_%s;\n",
			relCtr, typ, rel.Arity, rel.Arity, rel.AuxiliaryArity, cppName)
		//
		relCtr++
		//
		var (
			tupleType = quotedArray(rel.Arity, rel.AttributeTypes)
			tupleName = quotedArray(rel.Arity, rel.AttributeNames)
		)
		//
		if initCons.Len() != 0 {
			initCons.WriteString(",\n")
		}
		//
		fmt.Fprintf(&initCons, "\nwrapper_%s(*%s,symTable,\"%s\",%s,%s)",
			cppName, cppName, rel.Name, tupleType, tupleName)
		//
		fmt.Fprintf(&registerRel, "addRelation(\"%s\",&wrapper_%s,%t,%t);\n",
			rel.Name, cppName, loadRelations[rel.Name], storeRelations[rel.Name])
	}
	//
	return initCons.String(), registerRel.String()
}

func quotedArray(arity int, items []string) string {
	var b strings.Builder
	//
	fmt.Fprintf(&b, "std::array<const char *,%d>{{", arity)
	//
	for i, item := range items {
		if i != 0 {
			b.WriteString(",")
		}
		//
		fmt.Fprintf(&b, "\"%s\"", item)
	}
	//
	b.WriteString("}}")
	//
	return b.String()
}

func (s *Synthesiser) generateRunFunction(w io.Writer, prog *ram.Program, mainBody *bytes.Buffer) {
	fmt.Fprintf(w, "private:\nvoid runFunction(std::string inputDirectory = \".\", "+
		"std::string outputDirectory = \".\", bool performIO = false) {\n")
	//
	fmt.Fprintf(w, "SignalHandler::instance()->set();\n")
	//
	if s.cfg.Verbose {
		fmt.Fprintf(w, "SignalHandler::instance()->enableLogging();\n")
	}
	// the auto-increment counter is only declared when used
	hasIncrement := false
	//
	ram.VisitDepthFirst(prog.Main, func(n ram.Node) {
		if _, ok := n.(*ram.AutoIncrement); ok {
			hasIncrement = true
		}
	})
	//
	if hasIncrement {
		fmt.Fprintf(w, "// -- initialize counter --\n")
		fmt.Fprintf(w, "std::atomic<RamDomain> ctr(0);\n\n")
	}
	//
	fmt.Fprintf(w, "std::atomic<size_t> iter(0);\n\n")
	// set default thread count (in embedded mode)
	fmt.Fprintf(w, "#if defined(_OPENMP)\n")
	fmt.Fprintf(w, "if (getNumThreads() > 0) {omp_set_num_threads(getNumThreads());}\n")
	fmt.Fprintf(w, "#endif\n\n")
	//
	fmt.Fprintf(w, "// -- query evaluation --\n")
	//
	if s.cfg.ProfileEnabled {
		fmt.Fprintf(w, "ProfileEventSingleton::instance().startTimer();\n")
		fmt.Fprintf(w, `ProfileEventSingleton::instance().makeTimeEvent("@time;starttime");`+"\n")
		fmt.Fprintf(w, "{\n")
		fmt.Fprintf(w, `Logger logger("@runtime;", 0);`+"\n")
		// record the count of user-visible relations
		relationCount := 0
		//
		for _, rel := range prog.Relations {
			if !strings.HasPrefix(rel.Name, "@") {
				relationCount++
			}
		}
		//
		fmt.Fprintf(w, `ProfileEventSingleton::instance().makeConfigRecord("relationCount", std::to_string(%d));`,
			relationCount)
	}
	// the pre-rendered main statement
	_, _ = w.Write(mainBody.Bytes())
	//
	if s.cfg.ProfileEnabled {
		fmt.Fprintf(w, "}\n")
		fmt.Fprintf(w, "ProfileEventSingleton::instance().stopTimer();\n")
		fmt.Fprintf(w, "dumpFreqs();\n")
	}
	// per-relation hint statistics
	fmt.Fprintf(w, "\n// -- relation hint statistics --\n")
	fmt.Fprintf(w, "if(isHintsProfilingEnabled()) {\n")
	fmt.Fprintf(w, "std::cout << \" -- Operation Hint Statistics --\\n\";\n")
	//
	for _, rel := range prog.Relations {
		name := s.relationName(rel)
		fmt.Fprintf(w, "std::cout << \"Relation %s:\\n\";\n", name)
		fmt.Fprintf(w, "%s->printHintStatistics(std::cout,\"  \");\n", name)
		fmt.Fprintf(w, "std::cout << \"\\n\";\n")
	}
	//
	fmt.Fprintf(w, "}\n")
	fmt.Fprintf(w, "SignalHandler::instance()->reset();\n")
	fmt.Fprintf(w, "}\n")
}

func (s *Synthesiser) generatePrintAll(w io.Writer, prog *ram.Program) {
	fmt.Fprintf(w, "public:\n")
	fmt.Fprintf(w, "void printAll(std::string outputDirectory = \".\") override {\n")
	//
	ram.VisitDepthFirst(prog.Main, func(n ram.Node) {
		store, ok := n.(*ram.Store)
		if !ok {
			return
		}
		//
		for _, directives := range store.Directives {
			fmt.Fprintf(w, "try {")
			fmt.Fprintf(w, "std::map<std::string, std::string> directiveMap(%s);\n", directives)
			fmt.Fprintf(w, `if (!outputDirectory.empty() && directiveMap["IO"] == "file" && `)
			fmt.Fprintf(w, "directiveMap[\"filename\"].front() != '/') {")
			fmt.Fprintf(w, `directiveMap["filename"] = outputDirectory + "/" + directiveMap["filename"];`)
			fmt.Fprintf(w, "}\n")
			fmt.Fprintf(w, "IODirectives ioDirectives(directiveMap);\n")
			fmt.Fprintf(w, "IOSystem::getInstance().getWriter(")
			fmt.Fprintf(w, "std::vector<RamTypeAttribute>({%s})", attributeMask(store.Relation))
			fmt.Fprintf(w, ", symTable, ioDirectives, %d", store.Relation.AuxiliaryArity)
			fmt.Fprintf(w, ")->writeAll(*%s);\n", s.relationName(store.Relation))
			fmt.Fprintf(w, "} catch (std::exception& e) {std::cerr << e.what();exit(1);}\n")
		}
	})
	//
	fmt.Fprintf(w, "}\n")
}

func (s *Synthesiser) generateDumpFreqs(w io.Writer) {
	fmt.Fprintf(w, "private:\n")
	fmt.Fprintf(w, "void dumpFreqs() {\n")
	//
	for idx, key := range s.freqKeys {
		fmt.Fprintf(w, "\tProfileEventSingleton::instance().makeQuantityEvent(R\"_(%s)_\", freqs[%d],0);\n",
			key, idx)
	}
	//
	for idx, key := range s.readKeys {
		fmt.Fprintf(w, "\tProfileEventSingleton::instance().makeQuantityEvent(R\"_(@relation-reads;%s)_\", reads[%d],0);\n",
			key, idx)
	}
	//
	fmt.Fprintf(w, "}\n")
}

func (s *Synthesiser) generateLoadAll(w io.Writer, prog *ram.Program) {
	fmt.Fprintf(w, "public:\n")
	fmt.Fprintf(w, "void loadAll(std::string inputDirectory = \".\") override {\n")
	//
	ram.VisitDepthFirst(prog.Main, func(n ram.Node) {
		load, ok := n.(*ram.Load)
		if !ok {
			return
		}
		//
		for _, directives := range load.Directives {
			fmt.Fprintf(w, "try {")
			fmt.Fprintf(w, "std::map<std::string, std::string> directiveMap(%s);\n", directives)
			fmt.Fprintf(w, `if (!inputDirectory.empty() && directiveMap["IO"] == "file" && `)
			fmt.Fprintf(w, "directiveMap[\"filename\"].front() != '/') {")
			fmt.Fprintf(w, `directiveMap["filename"] = inputDirectory + "/" + directiveMap["filename"];`)
			fmt.Fprintf(w, "}\n")
			fmt.Fprintf(w, "IODirectives ioDirectives(directiveMap);\n")
			fmt.Fprintf(w, "IOSystem::getInstance().getReader(")
			fmt.Fprintf(w, "std::vector<RamTypeAttribute>({%s})", attributeMask(load.Relation))
			fmt.Fprintf(w, ", symTable, ioDirectives")
			fmt.Fprintf(w, ", %d", load.Relation.AuxiliaryArity)
			fmt.Fprintf(w, ")->readAll(*%s);\n", s.relationName(load.Relation))
			fmt.Fprintf(w, "} catch (std::exception& e) {std::cerr << \"Error loading data: \" << e.what() << '\\n';}\n")
		}
	})
	//
	fmt.Fprintf(w, "}\n")
}

func (s *Synthesiser) generateDumpMethods(w io.Writer, prog *ram.Program) {
	dumpRelation := func(rel *ram.Relation) {
		fmt.Fprintf(w, "try {")
		fmt.Fprintf(w, "IODirectives ioDirectives;\n")
		fmt.Fprintf(w, "ioDirectives.setIOType(\"stdout\");\n")
		fmt.Fprintf(w, "ioDirectives.setRelationName(\"%s\");\n", rel.Name)
		fmt.Fprintf(w, "IOSystem::getInstance().getWriter(")
		fmt.Fprintf(w, "std::vector<RamTypeAttribute>({%s})", attributeMask(rel))
		fmt.Fprintf(w, ", symTable, ioDirectives, %d", rel.AuxiliaryArity)
		fmt.Fprintf(w, ")->writeAll(*%s);\n", s.relationName(rel))
		fmt.Fprintf(w, "} catch (std::exception& e) {std::cerr << e.what();exit(1);}\n")
	}
	// dump inputs
	fmt.Fprintf(w, "public:\n")
	fmt.Fprintf(w, "void dumpInputs(std::ostream& out = std::cout) override {\n")
	//
	ram.VisitDepthFirst(prog.Main, func(n ram.Node) {
		if load, ok := n.(*ram.Load); ok {
			dumpRelation(load.Relation)
		}
	})
	//
	fmt.Fprintf(w, "}\n")
	// dump outputs
	fmt.Fprintf(w, "public:\n")
	fmt.Fprintf(w, "void dumpOutputs(std::ostream& out = std::cout) override {\n")
	//
	ram.VisitDepthFirst(prog.Main, func(n ram.Node) {
		if store, ok := n.(*ram.Store); ok {
			dumpRelation(store.Relation)
		}
	})
	//
	fmt.Fprintf(w, "}\n")
}

func (s *Synthesiser) generateProvenance(w io.Writer, prog *ram.Program, bodies []bytes.Buffer) {
	// under subtree heights, provenance indexes are populated on demand
	if s.cfg.Provenance == ProvenanceSubtreeHeights {
		fmt.Fprintf(w, "void copyIndex() {\n")
		//
		for _, rel := range prog.Relations {
			if len(s.realisation(rel).ProvenanceIndexNumbers()) > 0 {
				fmt.Fprintf(w, "%s->copyIndex();\n", s.relationName(rel))
			}
		}
		//
		fmt.Fprintf(w, "}\n")
	}
	// subroutine dispatcher; subproof_i avoids special characters from
	// relation names in method names
	fmt.Fprintf(w, "void executeSubroutine(std::string name, const std::vector<RamDomain>& args, "+
		"std::vector<RamDomain>& ret) override {\n")
	//
	for i, sub := range prog.Subroutines {
		fmt.Fprintf(w, "if (name == \"%s\") {\n", sub.Name)
		fmt.Fprintf(w, "subproof_%d(args, ret);\n", i)
		fmt.Fprintf(w, "}\n")
	}
	//
	fmt.Fprintf(w, "}\n")
	// one method per subroutine
	for i := range prog.Subroutines {
		fmt.Fprintf(w, "void subproof_%d(const std::vector<RamDomain>& args, "+
			"std::vector<RamDomain>& ret) {\n", i)
		// appends to the return vector are serialised
		fmt.Fprintf(w, "std::mutex lock;\n")
		_, _ = w.Write(bodies[i].Bytes())
		fmt.Fprintf(w, "return;\n")
		fmt.Fprintf(w, "}\n")
	}
}

func (s *Synthesiser) generateEntryPoint(w io.Writer, id string, classname string) {
	// embedded mode registers a factory instead of defining main
	fmt.Fprintf(w, "\n#ifdef __EMBEDDED_SOUFFLE__\n")
	fmt.Fprintf(w, "class factory_%s: public souffle::ProgramFactory {\n", classname)
	fmt.Fprintf(w, "SouffleProgram *newInstance() {\n")
	fmt.Fprintf(w, "return new %s();\n", classname)
	fmt.Fprintf(w, "};\n")
	fmt.Fprintf(w, "public:\n")
	fmt.Fprintf(w, "factory_%s() : ProgramFactory(\"%s\"){}\n", classname, id)
	fmt.Fprintf(w, "};\n")
	fmt.Fprintf(w, "static factory_%s __factory_%s_instance;\n", classname, classname)
	fmt.Fprintf(w, "}\n")
	fmt.Fprintf(w, "#else\n")
	fmt.Fprintf(w, "}\n")
	//
	fmt.Fprintf(w, "int main(int argc, char** argv)\n{\n")
	fmt.Fprintf(w, "try{\n")
	// command-line options, with defaults baked in at synthesis time
	fmt.Fprintf(w, "souffle::CmdOptions opt(")
	fmt.Fprintf(w, "R\"(%s)\",\n", s.cfg.SourceName)
	fmt.Fprintf(w, "R\"(.)\",\n")
	fmt.Fprintf(w, "R\"(.)\",\n")
	//
	if s.cfg.ProfileEnabled {
		fmt.Fprintf(w, "true,\n")
		fmt.Fprintf(w, "R\"(%s)\",\n", s.cfg.ProfileName)
	} else {
		fmt.Fprintf(w, "false,\n")
		fmt.Fprintf(w, "R\"()\",\n")
	}
	//
	fmt.Fprintf(w, "%d,\n", s.cfg.Jobs)
	fmt.Fprintf(w, "-1")
	fmt.Fprintf(w, ");\n")
	//
	fmt.Fprintf(w, "if (!opt.parse(argc,argv)) return 1;\n")
	//
	fmt.Fprintf(w, "souffle::")
	//
	if s.cfg.ProfileEnabled {
		fmt.Fprintf(w, "%s obj(opt.getProfileName());\n", classname)
	} else {
		fmt.Fprintf(w, "%s obj;\n", classname)
	}
	//
	fmt.Fprintf(w, "#if defined(_OPENMP) \n")
	fmt.Fprintf(w, "obj.setNumThreads(opt.getNumJobs());\n")
	fmt.Fprintf(w, "\n#endif\n")
	//
	if s.cfg.ProfileEnabled {
		fmt.Fprintf(w, `souffle::ProfileEventSingleton::instance().makeConfigRecord("", opt.getSourceFileName());`+"\n")
		fmt.Fprintf(w, `souffle::ProfileEventSingleton::instance().makeConfigRecord("fact-dir", opt.getInputFileDir());`+"\n")
		fmt.Fprintf(w, `souffle::ProfileEventSingleton::instance().makeConfigRecord("jobs", std::to_string(opt.getNumJobs()));`+"\n")
		fmt.Fprintf(w, `souffle::ProfileEventSingleton::instance().makeConfigRecord("output-dir", opt.getOutputFileDir());`+"\n")
		fmt.Fprintf(w, `souffle::ProfileEventSingleton::instance().makeConfigRecord("version", "%s");`+"\n", s.cfg.Version)
	}
	//
	fmt.Fprintf(w, "obj.runAll(opt.getInputFileDir(), opt.getOutputFileDir());\n")
	//
	switch s.cfg.Provenance {
	case ProvenanceExplain:
		fmt.Fprintf(w, "explain(obj, false, false);\n")
	case ProvenanceSubtreeHeights:
		fmt.Fprintf(w, "obj.copyIndex();\n")
		fmt.Fprintf(w, "explain(obj, false, true);\n")
	case ProvenanceExplore:
		fmt.Fprintf(w, "explain(obj, true, false);\n")
	}
	//
	fmt.Fprintf(w, "return 0;\n")
	fmt.Fprintf(w, "} catch(std::exception &e) { souffle::SignalHandler::instance()->error(e.what());}\n")
	fmt.Fprintf(w, "}\n")
	fmt.Fprintf(w, "\n#endif\n")
}
