package grammar

// queryText holds the capture-query pattern for each built-in language tag.
// Conventions are fixed: @name captures the identifier naming the symbol,
// @definition.<kind> captures the enclosing definition node, where <kind>
// is one of the SymbolKind labels (function, class, method, interface,
// type, module, constant, variable, struct, enum, trait, implementation,
// constructor).
var queryText = map[string]string{
	LangGo: `
		(function_declaration name: (identifier) @name) @definition.function
		(method_declaration name: (field_identifier) @name) @definition.method
		(type_declaration (type_spec name: (type_identifier) @name type: (struct_type))) @definition.struct
		(type_declaration (type_spec name: (type_identifier) @name type: (interface_type))) @definition.interface
		(type_declaration (type_spec name: (type_identifier) @name)) @definition.type
		(const_spec name: (identifier) @name) @definition.constant
		(var_spec name: (identifier) @name) @definition.variable
	`,
	LangPython: `
		(function_definition name: (identifier) @name) @definition.function
		(class_definition name: (identifier) @name) @definition.class
	`,
	LangTypeScript: `
		(function_declaration name: (identifier) @name) @definition.function
		(method_definition name: (property_identifier) @name) @definition.method
		(class_declaration name: (type_identifier) @name) @definition.class
		(interface_declaration name: (type_identifier) @name) @definition.interface
		(type_alias_declaration name: (type_identifier) @name) @definition.type
		(enum_declaration name: (identifier) @name) @definition.enum
	`,
	LangJavaScript: `
		(function_declaration name: (identifier) @name) @definition.function
		(method_definition name: (property_identifier) @name) @definition.method
		(class_declaration name: (identifier) @name) @definition.class
	`,
	LangRust: `
		(function_item name: (identifier) @name) @definition.function
		(impl_item type: (type_identifier) @name) @definition.implementation
		(struct_item name: (type_identifier) @name) @definition.struct
		(enum_item name: (type_identifier) @name) @definition.enum
		(trait_item name: (type_identifier) @name) @definition.trait
		(type_item name: (type_identifier) @name) @definition.type
		(mod_item name: (identifier) @name) @definition.module
	`,
	LangJava: `
		(method_declaration name: (identifier) @name) @definition.method
		(constructor_declaration name: (identifier) @name) @definition.constructor
		(class_declaration name: (identifier) @name) @definition.class
		(interface_declaration name: (identifier) @name) @definition.interface
		(enum_declaration name: (identifier) @name) @definition.enum
	`,
	LangC: `
		(function_definition declarator: (function_declarator declarator: (identifier) @name)) @definition.function
		(struct_specifier name: (type_identifier) @name) @definition.struct
		(enum_specifier name: (type_identifier) @name) @definition.enum
		(type_definition declarator: (type_identifier) @name) @definition.type
	`,
	LangCPP: `
		(function_definition declarator: (function_declarator declarator: (identifier) @name)) @definition.function
		(function_definition declarator: (function_declarator declarator: (qualified_identifier name: (identifier) @name))) @definition.method
		(class_specifier name: (type_identifier) @name) @definition.class
		(struct_specifier name: (type_identifier) @name) @definition.struct
		(enum_specifier name: (type_identifier) @name) @definition.enum
	`,
}
