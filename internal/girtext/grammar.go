// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed as part of the siltc project.

// Package girtext implements the textual GraphIR format (spec §6): a
// bit-exact writer and a participle-based parser with a semantic decode
// pass from the parsed syntax tree into an *ir.Module.
package girtext

import (
	"github.com/alecthomas/participle"
	"github.com/alecthomas/participle/lexer"
)

var girLexer = lexer.Must(lexer.Regexp(
	`(?P<Comment>--[^\n]*)` +
		`|(?P<Whitespace>\s+)` +
		`|(?P<Arrow>->)` +
		`|(?P<Param>%[A-Za-z_][A-Za-z0-9_.]*)` +
		`|(?P<Global>@[A-Za-z_][A-Za-z0-9_.]*)` +
		`|(?P<Block>bb[0-9]+)` +
		`|(?P<Number>[0-9]+)` +
		`|(?P<Ident>[A-Za-z_][A-Za-z0-9_]*)` +
		`|(?P<Punct>[(){}<>,:;=|*])`,
))

// astModule is the root production: `module NAME where` followed by a
// sequence of data/record/function declarations.
type astModule struct {
	Name  string     `parser:"\"module\" @Ident \"where\""`
	Decls []*astDecl `parser:"@@*"`
}

type astDecl struct {
	Data   *astDataDecl   `parser:"(  @@"`
	Record *astRecordDecl `parser:"  | @@"`
	Func   *astFuncDecl   `parser:"  | @@ )"`
}

type astDataDecl struct {
	Name  string     `parser:"\"data\" @Ident \"=\""`
	Ctors []*astCtor `parser:"@@ (\"|\" @@)*"`
}

type astCtor struct {
	Name    string   `parser:"@Ident"`
	Payload *astType `parser:"@@?"`
}

type astRecordDecl struct {
	Name   string      `parser:"\"record\" @Ident \"{\""`
	Fields []*astField `parser:"(@@ (\",\" @@)*)? \"}\""`
}

type astField struct {
	Name string   `parser:"@Ident \":\""`
	Type *astType `parser:"@@"`
}

type astFuncDecl struct {
	Name   string      `parser:"@Global \":\""`
	Type   *astType    `parser:"@@ \"{\""`
	Blocks []*astBlock `parser:"@@* \"}\""`
}

type astBlock struct {
	Label  string      `parser:"@Block \"(\""`
	Params []*astParam `parser:"(@@ (\",\" @@)*)? \")\" \":\""`
	Instrs []*astInstr `parser:"@@*"`
}

type astParam struct {
	Name     string   `parser:"@Param \":\""`
	Type     *astType `parser:"@@"`
	Borrowed string   `parser:"@\"borrowed\"?"`
}

// astInstr covers every primop uniformly: an optional result binding,
// an opcode name, and a parenthesized comma-separated argument list
// whose per-opcode interpretation happens in the decode pass rather
// than in the grammar.
type astInstr struct {
	Result string        `parser:"(@Param \"=\")?"`
	Op     string        `parser:"@Ident"`
	Args   []*astOperand `parser:"\"(\" (@@ (\",\" @@)*)? \")\""`
}

// astOperand is either a constructor/default switch arm (`ctor -> bbN`)
// or a bare reference token: an SSA id, a global ref, a block label, a
// number, or a bare identifier (constructor/type name).
type astOperand struct {
	Case *astCaseArm `parser:"(  @@"`
	Ref  string      `parser:"  | @Param | @Global | @Block | @Number | @Ident )"`
}

type astCaseArm struct {
	Ctor string `parser:"@Ident \"->\""`
	Dest string `parser:"@Block"`
}

// astType is the type grammar: function, tuple, address, box, metadata,
// thick-function, and named (record/data/archetype/Type/bottom) forms.
type astType struct {
	Func  *astFuncType  `parser:"(  @@"`
	Tuple *astTupleType `parser:"  | @@"`
	Addr  *astAddrType  `parser:"  | @@"`
	Box   *astBoxType   `parser:"  | @@"`
	Meta  *astMetaType  `parser:"  | @@"`
	Thick *astThickType `parser:"  | @@"`
	Named *astNamedType `parser:"  | @@ )"`
}

type astFuncType struct {
	Args []*astType `parser:"\"(\" (@@ (\",\" @@)*)? \")\" \"->\""`
	Ret  *astType   `parser:"@@"`
}

type astTupleType struct {
	Elems []*astType `parser:"\"(\" (@@ (\",\" @@)*)? \")\""`
}

type astAddrType struct {
	Pointee *astType `parser:"\"*\" @@"`
}

type astBoxType struct {
	Inner *astType `parser:"\"Box\" \"<\" @@ \">\""`
}

type astMetaType struct {
	Of *astType `parser:"\"Meta\" \"<\" @@ \">\""`
}

type astThickType struct {
	Underlying *astType `parser:"\"Thick\" @@"`
}

type astNamedType struct {
	Name string     `parser:"@Ident"`
	Args []*astType `parser:"(\"<\" @@ (\",\" @@)* \">\")?"`
}

var girParser = participle.MustBuild(
	&astModule{},
	participle.Lexer(girLexer),
	participle.Elide("Whitespace", "Comment"),
)
