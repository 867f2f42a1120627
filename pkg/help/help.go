// Package help holds the reference text printed by `soplang help` and the
// REPL's :help command.
package help

import (
	"fmt"
	"sort"
	"strings"
)

// Version is the interpreter release reported by `soplang version`.
const Version = "0.1.0"

// QUICKREF is the one-screen overview shown by `soplang help` with no topic.
var QUICKREF = strings.TrimLeft(`
Soplang v`+Version+` - luqadda barnaamijyada Soomaaliga (the Somali programming language)

  door x = 5                 dynamic variable
  tiro n = 3                 typed variable (tiro qoraal bool liis shey)
  hawl f(a, b) { celi a+b }  function
  haddii (c) { } haddii_kale (d) { } haddii_kalena { }
  ku_celi i min 1 ilaa 10 by 2 { }   inta_ay (c) { }   jooji  sii_wad
  isku_day { } qabo (err) { }
  fasalka B ka_dhaxal A { }  door b = cusub B()
  ka_keen "lib.so"           qor("salaan")

Commands: run check fmt tokens ast repl help version
Topics:   `+strings.Join(TopicList, " ")+`
Run 'soplang help <topic>' for details; topic names may be abbreviated.
`, "\n")

// TopicList is the display order of Topics.
var TopicList = []string{"syntax", "types", "flow", "functions", "classes", "stdlib", "errors", "imports", "repl", "examples"}

// Topics maps a topic name to its text.
var Topics = map[string]string{
	"syntax": `SYNTAX

Statements are separated by newlines or ';'. Blocks use braces.
Comments: // to end of line, /* ... */ across lines.
Strings use "..." or '...' and have no escape sequences.
Numbers are decimal: 42, 3.14. There is no exponent form.

Keywords:
  door hawl (howl) celi (soo_celi) qor akhri
  haddii haddii_kale haddii_kalena ku_celi inta_ay jooji sii_wad
  isku_day qabo ka_keen fasalka ka_dhaxal cusub nafta
  tiro qoraal bool (labadaran) liis shey
  run (true) been (false) null

Operators, loosest first:
  && ||    == != < > <= >=    + -    * / %    unary ! -
  Postfix: call f(x), property o.k, index l[0], method l.push(1)

'qor expr' without parentheses prints one value.`,

	"types": `TYPES

  tiro     number; integral values print without a fraction
  jajab    number with a fraction (nooc reports it, it is not a keyword)
  qoraal   text
  bool     run / been
  liis     list, shared by reference
  shey     object with ordered keys, shared by reference
           (nooc reports "shey"; older Soplang releases printed "walax")
  maran    null
  hawl     function reference

A variable declared with a type keyword keeps that type: every later
assignment is checked. Redeclaring it with 'door' removes the type.

Falsy values: null, been, 0, "", "false", "False".
Empty lists and objects are truthy.
'+' concatenates when either side is text; otherwise both must be numbers.
'==' compares lists and objects by content.`,

	"flow": `CONTROL FLOW

  haddii (x > 0) { ... } haddii_kale (x == 0) { ... } haddii_kalena { ... }
  ku_celi i min 0 ilaa 10 { ... }        i = 0..10, both ends included
  ku_celi i min 10 ilaa 0 by -2 { ... }  counts down; a step of 0 is an error
  inta_ay (n < 3) { n = n + 1 }
  jooji      break the innermost loop
  sii_wad    continue with the next iteration
  isku_day { ... } qabo (err) { qor(err) }

qabo catches Type, Runtime and Import errors; err holds the message.
jooji, sii_wad and celi pass through isku_day untouched.
Resource limits (--max-iterations, --timeout) cannot be caught.`,

	"functions": `FUNCTIONS

  hawl add(a, b) {
      celi a + b
  }
  qor(add(1, 2))

Arguments are bound by position; missing ones are null.
A call sees the caller's variables. Plain variable writes inside a function
are discarded when it returns; changes made to lists and objects persist.
A function name used as a value is a function reference:
  door f = add
  qor([1, 2].map(f))`,

	"classes": `CLASSES

  fasalka Xayawaan {
      hawl hadal() { celi "..." }
  }
  fasalka Eey ka_dhaxal Xayawaan { }
  door e = cusub Eey()
  qor(e)        {'__class__': Eey}

The parent must be declared first. cusub checks that the class exists and
returns an object tagged with its name.`,

	"stdlib": StdlibIndex(),

	"errors": `ERRORS

Every error names its family in Somali and English:
  Khalad lexer (Lexer Error)         bad characters, unterminated strings
  Khalad parser (Parser Error)       malformed statements
  Khalad nuuc (Type Error)           wrong operand or argument types
  Khalad runtime (Runtime Error)     undefined names, bad indexes, division by zero
  Khalad import (Import Error)       ka_keen failures

The location follows: "ee sadar (line) L, goobta (position) C".
'soplang check' reports static problems without running the program.
Exit codes: 1 usage or I/O, 2 lex/parse/check errors, 4 runtime errors.`,

	"imports": `IMPORTS

  ka_keen "utils.so"

The path is resolved relative to the importing file. The imported program
runs in the same interpreter, so its functions, classes and variables become
visible. A missing file is an Import Error; an error inside the imported file
is reported as an Import Error naming that file.

Imports can be disabled with the policy deny list (capability fs.import).`,

	"repl": `REPL

  soplang repl    (or just 'soplang' in a terminal)

  :help            this text
  :exit, :quit     leave (Ctrl+D also works)
  :reset           forget all variables, functions and classes
  :vars            list variables with their static types
  :load <file>     run a file inside the session
  :clear           clear the screen

Input continues on a '...' prompt until braces, brackets and parentheses
balance. History is kept in ~/.soplang_history.`,

	"examples": `EXAMPLES

  // fizzbuzz
  ku_celi i min 1 ilaa 15 {
      haddii (i % 15 == 0) { qor("FizzBuzz") }
      haddii_kale (i % 3 == 0) { qor("Fizz") }
      haddii_kale (i % 5 == 0) { qor("Buzz") }
      haddii_kalena { qor(i) }
  }

  // safe division
  hawl qeybi(a, b) {
      isku_day { celi a / b } qabo (e) { celi null }
  }

  // filtering
  hawl weyn(n) { celi n > 2 }
  qor([1, 2, 3, 4].filter(weyn))     [3, 4]`,
}

type stdlibEntry struct {
	name    string
	aliases []string
	summary string
}

var stdlibSections = []struct {
	title   string
	entries []stdlibEntry
}{
	{"Functions", []stdlibEntry{
		{"qor", []string{"bandhig"}, "print values separated by spaces"},
		{"akhri", []string{"gelin"}, "print an optional prompt, read one line"},
		{"nooc", nil, "type name of a value"},
		{"tiro", nil, "convert to an integral number"},
		{"jajab", nil, "convert to a number"},
		{"qoraal", nil, "convert to text"},
		{"bool", []string{"labadaran"}, "truthiness of a value"},
		{"liis", nil, "list of the arguments"},
		{"shey", []string{"walax"}, "empty object, or a shallow copy"},
		{"dherer", nil, "length of text, list or object"},
	}},
	{"List methods", []stdlibEntry{
		{"push", []string{"ku_dar_dhamaad"}, "append values"},
		{"pop", []string{"kasaar"}, "remove and return the last item"},
		{"length", []string{"dherer"}, "number of items"},
		{"concat", []string{"kudar"}, "join with another list"},
		{"contains", []string{"leeyahay"}, "membership by equality"},
		{"copy", []string{"nuqul"}, "shallow copy"},
		{"clear", []string{"nadiifi"}, "remove every item"},
		{"reverse", []string{"rog"}, "reverse in place"},
		{"sort", []string{"habee"}, "sort numbers or texts in place"},
		{"filter", []string{"shaandhee"}, "items where a function returns truthy"},
		{"slice", []string{"jar"}, "sub-list from start to end"},
		{"map", []string{"khariidad"}, "apply a function to every item"},
		{"find_index", []string{"hel_index"}, "first matching position or -1"},
		{"get", nil, "item at an index"},
		{"set", nil, "replace the item at an index"},
	}},
	{"Object methods", []stdlibEntry{
		{"keys", []string{"fure"}, "keys in insertion order"},
		{"values", []string{"qiimaha"}, "values in insertion order"},
		{"has", []string{"leeyahay"}, "whether a key exists"},
		{"remove", []string{"tirtir"}, "delete a key"},
		{"merge", []string{"kudar"}, "new object with another's entries"},
		{"get", nil, "value for a key, or null"},
		{"set", nil, "store a value under a key"},
	}},
}

// StdlibIndex lists every builtin and method with its aliases.
func StdlibIndex() string {
	var b strings.Builder
	b.WriteString("STANDARD LIBRARY\n")
	total := 0
	for _, sec := range stdlibSections {
		fmt.Fprintf(&b, "\n%s:\n", sec.title)
		for _, e := range sec.entries {
			name := e.name
			if len(e.aliases) > 0 {
				name += " / " + strings.Join(e.aliases, " / ")
			}
			fmt.Fprintf(&b, "  %-30s %s\n", name, e.summary)
			total++
		}
	}
	fmt.Fprintf(&b, "\nTotal: %d entries\n", total)
	return b.String()
}

// StdlibNames returns the canonical names and aliases listed in the index,
// keyed by section title.
func StdlibNames() map[string][]string {
	out := make(map[string][]string, len(stdlibSections))
	for _, sec := range stdlibSections {
		for _, e := range sec.entries {
			out[sec.title] = append(out[sec.title], e.name)
			out[sec.title] = append(out[sec.title], e.aliases...)
		}
	}
	return out
}

// MatchTopic resolves name to a topic, accepting any unambiguous prefix.
func MatchTopic(name string) (string, string, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if content, ok := Topics[name]; ok {
		return name, content, nil
	}
	var matches []string
	if name != "" {
		for _, t := range TopicList {
			if strings.HasPrefix(t, name) {
				matches = append(matches, t)
			}
		}
	}
	switch len(matches) {
	case 1:
		return matches[0], Topics[matches[0]], nil
	case 0:
		return "", "", fmt.Errorf("unknown help topic %q (available: %s)", name, strings.Join(TopicList, ", "))
	default:
		sort.Strings(matches)
		return "", "", fmt.Errorf("ambiguous help topic %q (matches: %s)", name, strings.Join(matches, ", "))
	}
}
