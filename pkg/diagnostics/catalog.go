package diagnostics

import (
	"fmt"
	"sort"
	"strings"
)

// Args holds the named values substituted into a message template.
type Args map[string]any

type template struct {
	kind Kind
	text string
}

var catalog = map[string]template{
	EUnexpectedChar:      {KindLexer, "Xaraf aan la filayn (Unexpected character): {char}"},
	EUnterminatedString:  {KindLexer, "Qoraal aan la dhammaystirin (Unterminated string)"},
	EUnterminatedComment: {KindLexer, "Faallo aan la dhammaystirin (Unterminated comment)"},
	EMalformedNumber:     {KindLexer, "Tiro aan sax ahayn (Malformed number): {text}"},

	EExpectedToken:   {KindParser, "Waxaa la filayay (Expected) {expected}, laakiin waxaa la helay (found) {found}"},
	EUnexpectedToken: {KindParser, "Calaamad aan la filayn (Unexpected token): {token}"},
	EInvalidSyntax:   {KindParser, "Qoraalka syntax-kiisa waa khalad (Invalid syntax): {detail}"},
	EDupParam:        {KindParser, "Halbeeg labajibbaaran '{name}' ee howsha '{func}' (Duplicate parameter)"},

	ETypeMismatch:   {KindType, "'{var_name}' waa {expected_type} laakin qiimaheeda '{value}' ma ahan {expected_type} (Type mismatch)"},
	ECannotConvert:  {KindType, "'{value}' ma badali karo {target_type} (Cannot convert to this type)"},
	EInvalidOperand: {KindType, "Ma isticmaali karo '{operator}' oo ku shaqeeya {type_name} (Invalid operand for this operator)"},
	EPropertyAccess: {KindType, "Ma heli karo astaanta '{prop}' ee qiimaha aan ahayn shey (Cannot access property on non-object)"},
	EIndexAccess:    {KindType, "Ma heli karo tirooyinka ee qiimaha aan ahayn liis (Cannot use index on non-list)"},
	EInvalidMethod:  {KindType, "Ma wici karo habka '{method}' ee qiimaha {type_name} (Cannot call method on this type)"},
	EInvalidForLoop: {KindType, "Ku_celi billowga, dhamaadka iyo tallaabada waa in ay yihiin tiro (Invalid for loop parameters)"},
	EArgType:        {KindType, "{func}: qiimahu ma ahan {expected} (Argument must be {expected})"},
	ENotCallable:    {KindType, "Qiimaha {type_name} lama wici karo (Value is not callable)"},

	EUndefinedVariable:   {KindRuntime, "Doorsame aan la qeexin (Undefined variable): '{name}'"},
	EUndefinedFunction:   {KindRuntime, "Howl aan la qeexin (Undefined function): '{name}'"},
	EDivisionByZero:      {KindRuntime, "Ma suurtogali karto qeybinta eber (Division by zero)"},
	EModuloByZero:        {KindRuntime, "Ma suurtogali karto modulo eber (Modulo by zero)"},
	EIndexOutOfRange:     {KindRuntime, "Tirada fihris-ku waa ka baxsan xadka (Index out of range): {index}"},
	EPropertyNotFound:    {KindRuntime, "Astaanta '{prop_name}' kuma jirto sheyga (Property not found on object)"},
	EMethodNotFound:      {KindRuntime, "Habka '{method_name}' kuma jirto {type_name} (Method not found on object)"},
	EMissingArgument:     {KindRuntime, "Howsha '{func_name}' waxay u baahan tahay {expected} dood, laakiin waxaa la siiyay {provided} (Missing argument)"},
	EParentClassNotFound: {KindRuntime, "Fasalka waalidka '{parent_name}' ma jiro (Parent class not found)"},
	EClassNotFound:       {KindRuntime, "Fasalka '{name}' ma jiro (Class not found)"},
	EBreakOutsideLoop:    {KindRuntime, "Jooji waa in ay ku jiraan xalqad (Break outside loop)"},
	EContinueOutsideLoop: {KindRuntime, "Sii_wad waa in ay ku jiraan xalqad (Continue outside loop)"},
	EReturnOutsideFunc:   {KindRuntime, "Celi waa in ay ku jirto howl (Return outside function)"},
	EUnknownNodeType:     {KindRuntime, "Nooca cladka aan la aqoon (Unknown node type): {node_type}"},
	EUnknownOperator:     {KindRuntime, "Hawl-gal aan la aqoon (Unknown operator): {operator}"},
	EEmptyList:           {KindRuntime, "Ma saari kartid liis madhan (Cannot pop from an empty list)"},
	ECallDepth:           {KindRuntime, "Howlaha la isku wacay waa ka badan yihiin {limit} (Maximum call depth exceeded)"},
	EBudget:              {KindRuntime, "Xadka {budget} waa la dhaafay (Budget exceeded): {limit}"},
	ECancelled:           {KindRuntime, "Fulinta waa la joojiyay (Execution cancelled)"},
	ECapDenied:           {KindRuntime, "Ogolaansho ma jiro (Capability denied): {cap}"},
	EIO:                  {KindRuntime, "Khalad gelin/bixin (I/O error): {detail}"},

	EFileNotFound: {KindImport, "Faylka '{module}' ma helin (File not found)"},
	EImportError:  {KindImport, "Qalad baa ka jira file-ka {filename}: {error} (Error in imported file)"},
}

var hints = map[string]string{
	EUndefinedVariable:   "declare it first with 'door' or a type keyword",
	EBreakOutsideLoop:    "'jooji' is only valid inside 'ku_celi' or 'inta_ay'",
	EContinueOutsideLoop: "'sii_wad' is only valid inside 'ku_celi' or 'inta_ay'",
	EReturnOutsideFunc:   "'celi' is only valid inside a 'hawl' body",
}

// KindOf returns the error family a code belongs to. Unknown codes are runtime errors.
func KindOf(code string) Kind {
	if t, ok := catalog[code]; ok {
		return t.kind
	}
	return KindRuntime
}

// Render substitutes args into the catalog template for code. Unknown codes
// render as the code itself followed by the args.
func Render(code string, args Args) string {
	t, ok := catalog[code]
	if !ok {
		if len(args) == 0 {
			return code
		}
		return fmt.Sprintf("%s %v", code, map[string]any(args))
	}
	if len(args) == 0 {
		return t.text
	}
	keys := make([]string, 0, len(args))
	for k := range args {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	pairs := make([]string, 0, len(keys)*2)
	for _, k := range keys {
		pairs = append(pairs, "{"+k+"}", fmt.Sprint(args[k]))
	}
	return strings.NewReplacer(pairs...).Replace(t.text)
}

func hintFor(code string) string {
	return hints[code]
}
