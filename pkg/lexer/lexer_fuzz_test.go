package lexer

import (
	"testing"
)

// FuzzTokenize feeds random inputs to the lexer to catch panics.
// Invalid input must come back as an error, never a panic.
func FuzzTokenize(f *testing.F) {
	seeds := []string{
		`door x = 5`,
		`tiro n = 3.5; qoraal s = "hi"; labadaran b = run`,
		`hawl f(a, b) { celi a + b }`,
		`haddii (x > 1) { qor(x) } haddii_kale (x == 0) {} haddii_kalena {}`,
		`ku_celi i min 5 ilaa 1 by -1 { jooji }`,
		`inta_ay (run) { sii_wad }`,
		`isku_day { } qabo (e) { qor(e) }`,
		`fasalka Ey ka_dhaxal Xayawaan { door magac = 'x' }`,
		`ka_keen "lib.so"`,
		`[1, 2, 3][0]`,
		`{a: 1, "b": 2}.a`,
		`+ - * / % > < >= <= == != && || !`,
		`// comment`,
		`/* block */`,
		`/* unterminated`,
		``,
		`   `,
		"\t\n\r",
		`"unterminated`,
		`'`,
		`@#$^&`,
		`1.2.3`,
		`5.`,
		`.5`,
		"\xff\xfe",
		`é`,
	}

	for _, s := range seeds {
		f.Add(s)
	}

	f.Fuzz(func(t *testing.T, input string) {
		func() {
			defer func() {
				if r := recover(); r != nil {
					t.Fatalf("Tokenize panicked on input %q: %v", input, r)
				}
			}()
			tokens, err := Tokenize(input, "fuzz.so")
			if err == nil && (len(tokens) == 0 || tokens[len(tokens)-1].Type != TokEOF) {
				t.Fatalf("token stream for %q does not end in EOF", input)
			}
		}()
	})
}
