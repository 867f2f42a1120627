package stdlib_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/MakeNowJust/heredoc"

	"github.com/soplang/soplang/pkg/diagnostics"
	"github.com/soplang/soplang/pkg/evaluator"
	"github.com/soplang/soplang/pkg/parser"
	"github.com/soplang/soplang/pkg/stdlib"
)

func run(t *testing.T, src string) (string, error) {
	t.Helper()
	prog, diags := parser.Parse(src, "stdlib.so")
	if len(diags) > 0 {
		t.Fatalf("parse errors: %s", diagnostics.FormatDiagnostics(diags, true))
	}
	reg := stdlib.Default()
	var out bytes.Buffer
	_, err := evaluator.Execute(context.Background(), prog, evaluator.ExecOptions{
		Builtins:      reg.All(),
		ListMethods:   reg.ListMethods(),
		ObjectMethods: reg.ObjectMethods(),
		Stdout:        &out,
		Stdin:         strings.NewReader(""),
	})
	return out.String(), err
}

// outputs runs each case as a standalone program and compares its output.
func outputs(t *testing.T, cases map[string]string) {
	t.Helper()
	for src, want := range cases {
		t.Run(src, func(t *testing.T) {
			got, err := run(t, src)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != want {
				t.Errorf("got %q, want %q", got, want)
			}
		})
	}
}

func failsWith(t *testing.T, cases map[string]string) {
	t.Helper()
	for src, code := range cases {
		t.Run(src, func(t *testing.T) {
			_, err := run(t, src)
			var rerr *evaluator.RuntimeError
			if !errors.As(err, &rerr) {
				t.Fatalf("expected runtime error %s, got %v", code, err)
			}
			if rerr.Code != code {
				t.Errorf("expected %s, got %s: %s", code, rerr.Code, rerr.Message)
			}
		})
	}
}

func TestRegistryAliases(t *testing.T) {
	reg := stdlib.Default()
	for _, name := range []string{"qor", "bandhig", "akhri", "gelin", "nooc", "tiro", "jajab", "qoraal", "bool", "labadaran", "liis", "shey", "walax", "dherer"} {
		if reg.Get(name) == nil {
			t.Errorf("builtin %q not registered", name)
		}
	}
	for _, name := range []string{"push", "ku_dar_dhamaad", "pop", "kasaar", "sort", "habee", "find_index", "hel_index"} {
		if reg.ListMethods()[name] == nil {
			t.Errorf("list method %q not registered", name)
		}
	}
	for _, name := range []string{"keys", "fure", "has", "leeyahay", "merge", "kudar"} {
		if reg.ObjectMethods()[name] == nil {
			t.Errorf("object method %q not registered", name)
		}
	}
}

func TestPrint(t *testing.T) {
	outputs(t, map[string]string{
		`qor("a", 1, run, null)`: "a 1 run null\n",
		`bandhig()`:              "\n",
		`qor qor("x")`:           "x\nnull\n",
		`qor "sugar"`:            "sugar\n",
	})
}

func TestConversions(t *testing.T) {
	outputs(t, map[string]string{
		`qor(tiro("42"))`:      "42\n",
		`qor(tiro(3.9))`:       "3\n",
		`qor(tiro(-3.9))`:      "-3\n",
		`qor(tiro(run))`:       "1\n",
		`qor(tiro(" 7 "))`:     "7\n",
		`qor(jajab("2.5"))`:    "2.5\n",
		`qor(jajab(4))`:        "4\n",
		`qor(qoraal(12) + 3)`:  "123\n",
		`qor(qoraal([1, 2]))`:  "[1, 2]\n",
		`qor(bool(0))`:         "been\n",
		`qor(bool("False"))`:   "been\n",
		`qor(labadaran("x"))`:  "run\n",
		`qor(bool())`:          "been\n",
		`qor(liis())`:          "[]\n",
		`qor(liis(1, "b"))`:    "[1, b]\n",
		`qor(shey())`:          "{}\n",
		`qor(walax({"a": 1}))`: "{'a': 1}\n",
	})
	failsWith(t, map[string]string{
		`tiro("abc")`: diagnostics.ECannotConvert,
		`jajab([1])`:  diagnostics.ECannotConvert,
		`tiro("inf")`: diagnostics.ECannotConvert,
		`shey([1])`:   diagnostics.EArgType,
		`tiro()`:      diagnostics.EMissingArgument,
		`nooc()`:      diagnostics.EMissingArgument,
		`dherer(5)`:   diagnostics.EArgType,
	})
}

func TestShallowObjectCopy(t *testing.T) {
	got, err := run(t, heredoc.Doc(`
		door a = {"l": [1]}
		door b = shey(a)
		b.x = 2
		b.l.push(3)
		qor(a)
	`))
	if err != nil {
		t.Fatal(err)
	}
	if got != "{'l': [1, 3]}\n" {
		t.Errorf("got %q", got)
	}
}

func TestTypeAndLength(t *testing.T) {
	outputs(t, map[string]string{
		`qor(nooc(1), nooc(1.5), nooc("s"), nooc(run))`:  "tiro jajab qoraal bool\n",
		`qor(nooc([]), nooc({}), nooc(null), nooc(qor))`: "liis shey maran hawl\n",
		`qor(dherer("salaan"), dherer([1, 2]))`:          "6 2\n",
		`qor(dherer("ṣọ"), dherer({"a": 1}))`:            "2 1\n",
	})
}

func TestListMethods(t *testing.T) {
	outputs(t, map[string]string{
		`door l = [1]; l.push(2, 3); qor(l)`:                 "[1, 2, 3]\n",
		`door l = [1, 2]; qor(l.pop(), l)`:                   "2 [1]\n",
		`qor([1, 2, 3].length(), [].dherer())`:               "3 0\n",
		`door l = [1]; qor(l.concat([2]), l)`:                "[1, 2] [1]\n",
		`door l = [1]; qor(l.kudar(2), l)`:                   "[1, 2] [1, 2]\n",
		`qor([1, [2]].contains([2]), [1].leeyahay("1"))`:     "run been\n",
		`door l = [1]; door c = l.copy(); c.push(2); qor(l)`: "[1]\n",
		`door l = [1, 2]; l.clear(); qor(l)`:                 "[]\n",
		`qor([1, 2, 3].reverse())`:                           "[3, 2, 1]\n",
		`qor([3, 1, 2].sort(), ["b", "a"].habee())`:          "[1, 2, 3] [a, b]\n",
		`qor([0, 1, 2, 3, 4].slice(1, 3))`:                   "[1, 2]\n",
		`qor([0, 1, 2, 3, 4].slice(-2))`:                     "[3, 4]\n",
		`qor([0, 1, 2].slice(5), [0, 1, 2].jar(2, 1))`:       "[] []\n",
		`qor([5, 6, 7].find_index(6), [5].find_index(9))`:    "1 -1\n",
		`qor([5, 6, 7].get("2"), [5, 6].get(0))`:             "7 5\n",
		`door l = [1, 2]; l.set(1, "x"); qor(l)`:             "[1, x]\n",
	})
	failsWith(t, map[string]string{
		`[].pop()`:             diagnostics.EEmptyList,
		`[1, "a"].sort()`:      diagnostics.EInvalidOperand,
		`[[1]].sort()`:         diagnostics.EInvalidOperand,
		`[1].get(3)`:           diagnostics.EIndexOutOfRange,
		`[1].set("x", 2)`:      diagnostics.EArgType,
		`[1].push()`:           diagnostics.EMissingArgument,
		`[1].slice(0.5)`:       diagnostics.EArgType,
		`[1, 2].map(5)`:        diagnostics.ENotCallable,
		`[1, 2].filter("nah")`: diagnostics.EUndefinedFunction,
	})
}

func TestListIndexRejectsNonFinite(t *testing.T) {
	failsWith(t, map[string]string{
		`door a = [1, 2]; a.get(jajab("nan"))`:     diagnostics.EArgType,
		`door a = [1, 2]; a.set(jajab("nan"), 1)`:  diagnostics.EArgType,
		`door a = [1, 2]; a.get(jajab("inf"))`:     diagnostics.EArgType,
		`door a = [1, 2]; a.set(jajab("-inf"), 1)`: diagnostics.EArgType,
	})
	outputs(t, map[string]string{
		`door a = [1, 2]; isku_day { a.get(jajab("nan")) } qabo (e) { qor("qabtay") }`: "qabtay\n",
	})
}

func TestHigherOrderListMethods(t *testing.T) {
	got, err := run(t, heredoc.Doc(`
		hawl big(n) { celi n > 2 }
		hawl sq(n) { celi n * n }
		door l = [1, 2, 3, 4]
		qor(l.filter(big))
		qor(l.shaandhee("big"))
		qor(l.map(sq))
		qor(l.khariidad(qoraal))
		qor(l.find_index(big))
		qor(l.hel_index(sq))
	`))
	if err != nil {
		t.Fatal(err)
	}
	want := "[3, 4]\n[3, 4]\n[1, 4, 9, 16]\n[1, 2, 3, 4]\n2\n0\n"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestObjectMethods(t *testing.T) {
	outputs(t, map[string]string{
		`qor({"a": 1, "b": 2}.keys())`:                          "[a, b]\n",
		`qor({"a": 1, "b": 2}.qiimaha())`:                       "[1, 2]\n",
		`qor({"a": 1}.has("a"), {"a": 1}.leeyahay("b"))`:        "run been\n",
		`door o = {"a": 1, "b": 2}; o.remove("a"); qor(o)`:      "{'b': 2}\n",
		`door o = {"a": 1}; qor(o.merge({"a": 2, "c": 3}), o)`:  "{'a': 2, 'c': 3} {'a': 1}\n",
		`qor({"a": 1}.get("a"), {}.get("x"))`:                   "1 null\n",
		`door o = {}; o.set("k", [1]); o.set(1, "one"); qor(o)`: "{'k': [1], '1': one}\n",
		`door o = {"x": 1}; o.tirtir("missing"); qor(o.fure())`: "[x]\n",
	})
	failsWith(t, map[string]string{
		`door o = {}.merge(1)`:    diagnostics.EArgType,
		`door o = {}.set([1], 2)`: diagnostics.EArgType,
		`door o = {}.get()`:       diagnostics.EMissingArgument,
		`door o = {}.nothing()`:   diagnostics.EMethodNotFound,
	})
}

func TestReadBuiltin(t *testing.T) {
	prog, diags := parser.Parse(`door n = akhri("> "); qor(tiro(n) * 2)`, "")
	if len(diags) > 0 {
		t.Fatal(diags)
	}
	reg := stdlib.Default()
	var out bytes.Buffer
	_, err := evaluator.Execute(context.Background(), prog, evaluator.ExecOptions{
		Builtins: reg.All(),
		Stdout:   &out,
		Stdin:    strings.NewReader("21\n"),
	})
	if err != nil {
		t.Fatal(err)
	}
	if out.String() != "> 42\n" {
		t.Errorf("got %q", out.String())
	}
}
