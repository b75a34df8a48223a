package suite

import (
	"fmt"

	"github.com/gnolang/pmconv/collection"
	"github.com/gnolang/pmconv/syntax"
	"github.com/tdewolff/parse/v2/js"
)

const requires = `const chai = require("chai");
const chaiFetch = require("chai-fetch");
const fetch = require("node-fetch");
const tv4 = require("tv4");
chai.use(chaiFetch);
const { expect } = chai;`

// Preamble returns the statements every generated file starts with. The
// environment map is seeded with defaults and overridden by process.env.
func Preamble(defaults []collection.KeyValue) []js.IStmt {
	ast, err := syntax.ParseScript(requires)
	if err != nil {
		panic(fmt.Sprintf("preamble: %v", err))
	}
	stmts := append([]js.IStmt(nil), ast.List...)
	return append(stmts, environmentDecl(defaults))
}

// environmentDecl builds
//
//	const environment = new Map(Object.entries({...defaults, ...process.env}));
func environmentDecl(defaults []collection.KeyValue) js.IStmt {
	processEnv := syntax.Member(syntax.Ident("process"), "env")

	var source js.IExpr = processEnv
	if len(defaults) > 0 {
		fields := make([]syntax.Field, 0, len(defaults))
		for _, kv := range defaults {
			fields = append(fields, syntax.Field{Key: kv.Key, Value: syntax.Str(kv.Value), Quoted: true})
		}
		obj := syntax.Object(fields...)
		obj.List = append(obj.List, syntax.Spread(processEnv))
		source = obj
	}

	entries := syntax.Call(syntax.Member(syntax.Ident("Object"), "entries"), source)
	return syntax.Const(syntax.Ident(EnvironmentVar), syntax.New(syntax.Ident("Map"), entries))
}
