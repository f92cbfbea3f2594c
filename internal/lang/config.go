package lang

// Config describes, for one grammar, which syntax node kinds carry structural
// meaning and which fields hold names and related clauses. A single generic
// walker consumes these tables; adding a language is a table edit, not a new
// extractor type.
type Config struct {
	// ClassKinds are node kinds that declare a class-like entity
	// (class, struct, trait, type spec).
	ClassKinds map[string]bool

	// FunctionKinds are node kinds that declare a function or method.
	FunctionKinds map[string]bool

	// ImportKinds are node kinds that introduce an import. When a kind here
	// is also a call expression (e.g. JavaScript require), the call target
	// must be listed in ImportCallNames for the node to count as an import.
	ImportKinds map[string]bool

	// VariableKinds are node kinds that declare a module-level variable.
	VariableKinds map[string]bool

	// CallKinds are node kinds representing a call expression inside a
	// function body.
	CallKinds map[string]bool

	// ContainerKinds are the node kinds a variable declaration's immediate
	// parent must have for the declaration to count as module scoped.
	ContainerKinds map[string]bool

	// NameField is the field holding a declaration's name.
	NameField string

	// ParamsField is the field holding a function's parameter list.
	ParamsField string

	// SuperclassField is the field on a class node holding its
	// superclass/extends clause. Empty when the grammar has no field for it.
	SuperclassField string

	// SuperclassKind is a fallback child node kind for grammars that expose
	// the extends clause as a named child rather than a field
	// (e.g. class_heritage in JavaScript and TypeScript).
	SuperclassKind string

	// CalleeField is the field on a call node holding the called expression.
	CalleeField string

	// ImportCallNames restricts which call targets count as imports when a
	// call-expression kind appears in ImportKinds.
	ImportCallNames map[string]bool
}

func kindSet(kinds ...string) map[string]bool {
	m := make(map[string]bool, len(kinds))
	for _, k := range kinds {
		m[k] = true
	}
	return m
}

// configs holds the per-language extraction tables.
var configs = map[Language]*Config{
	LangGo: {
		ClassKinds:     kindSet("type_spec"),
		FunctionKinds:  kindSet("function_declaration", "method_declaration"),
		ImportKinds:    kindSet("import_declaration"),
		VariableKinds:  kindSet("var_spec", "const_spec"),
		CallKinds:      kindSet("call_expression"),
		ContainerKinds: kindSet("source_file", "var_declaration", "const_declaration", "var_spec_list", "const_spec_list"),
		NameField:      "name",
		ParamsField:    "parameters",
		CalleeField:    "function",
	},
	LangPython: {
		ClassKinds:      kindSet("class_definition"),
		FunctionKinds:   kindSet("function_definition"),
		ImportKinds:     kindSet("import_statement", "import_from_statement"),
		VariableKinds:   kindSet("assignment"),
		CallKinds:       kindSet("call"),
		ContainerKinds:  kindSet("module", "expression_statement"),
		NameField:       "name",
		ParamsField:     "parameters",
		SuperclassField: "superclasses",
		CalleeField:     "function",
	},
	LangJavaScript: {
		ClassKinds:      kindSet("class_declaration"),
		FunctionKinds:   kindSet("function_declaration", "generator_function_declaration", "method_definition"),
		ImportKinds:     kindSet("import_statement", "call_expression"),
		VariableKinds:   kindSet("variable_declarator"),
		CallKinds:       kindSet("call_expression"),
		ContainerKinds:  kindSet("program", "lexical_declaration", "variable_declaration"),
		NameField:       "name",
		ParamsField:     "parameters",
		SuperclassKind:  "class_heritage",
		CalleeField:     "function",
		ImportCallNames: kindSet("require"),
	},
	LangTypeScript: {
		ClassKinds:     kindSet("class_declaration", "abstract_class_declaration"),
		FunctionKinds:  kindSet("function_declaration", "generator_function_declaration", "method_definition"),
		ImportKinds:    kindSet("import_statement"),
		VariableKinds:  kindSet("variable_declarator"),
		CallKinds:      kindSet("call_expression"),
		ContainerKinds: kindSet("program", "lexical_declaration", "variable_declaration"),
		NameField:      "name",
		ParamsField:    "parameters",
		SuperclassKind: "class_heritage",
		CalleeField:    "function",
	},
	LangRust: {
		ClassKinds:     kindSet("struct_item", "enum_item", "trait_item"),
		FunctionKinds:  kindSet("function_item"),
		ImportKinds:    kindSet("use_declaration"),
		VariableKinds:  kindSet("static_item", "const_item"),
		CallKinds:      kindSet("call_expression"),
		ContainerKinds: kindSet("source_file"),
		NameField:      "name",
		ParamsField:    "parameters",
		CalleeField:    "function",
	},
}

func init() {
	// TSX shares the TypeScript tables; only the grammar differs.
	configs[LangTSX] = configs[LangTypeScript]
}

// ConfigFor returns the extraction tables for a language, or nil when the
// language has no grammar mapping.
func ConfigFor(l Language) *Config {
	return configs[l]
}

// superclassNameKinds are the node kinds accepted as a superclass name inside
// an extends clause or base-class argument list.
var superclassNameKinds = map[string]bool{
	"identifier":             true,
	"type_identifier":        true,
	"attribute":              true,
	"member_expression":      true,
	"scoped_identifier":      true,
	"scoped_type_identifier": true,
	"generic_type":           true,
}

// IsSuperclassName reports whether a node kind can name a superclass.
func IsSuperclassName(kind string) bool {
	return superclassNameKinds[kind]
}

// parameterKinds are the node kinds accepted as a single parameter entry,
// covering plain, typed and defaulted shapes across grammars.
var parameterKinds = map[string]bool{
	"identifier":              true,
	"typed_parameter":         true,
	"typed_default_parameter": true,
	"default_parameter":       true,
	"formal_parameter":        true,
	"parameter":               true,
	"parameter_declaration":   true,
	"required_parameter":      true,
	"optional_parameter":      true,
	"simple_parameter":        true,
}

// IsParameter reports whether a node kind is a parameter entry.
func IsParameter(kind string) bool {
	return parameterKinds[kind]
}
