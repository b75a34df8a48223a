// Package internal holds the conversion engine behind the pmconv commands.
//
// Engine: builds the rule table from the configuration, generates the
// suite for a collection and writes it, and checks generated suites for
// references the translation left behind.
//
// CheckRule: one check over the tokens of a generated suite. Findings are
// reported as types.Issue values and can be silenced with nolint comments:
//
//	//nolint:untranslated-reference
//	pm.info.iteration;
//
// Cache: keeps generated suites keyed by the collection's content so a
// project conversion skips unchanged collections.
//
// Watcher: reports changed collection and environment files for watch mode.
//
// Usage:
//
//	engine, err := internal.NewEngine(config.Default(), logger)
//	if err != nil {
//	    // handle error
//	}
//	issues, err := engine.Convert("users.json", "test/users.spec.js")
package internal
