// Package monojs is a JavaScript runtime that can seal a program and its
// engine into a single self-contained executable.
//
// # Overview
//
// monojs runs JavaScript through QuickJS compiled to WASI, executed with the
// wazero runtime. In normal mode the CLI loads scripts from disk. The
// compile command appends a flattened program and a 16-byte trailer record
// to a copy of the running binary; when that binary is launched it detects
// the trailer and runs the embedded program instead of the CLI.
//
// # Basic Usage
//
//	eng, _ := engine.New()
//	defer eng.Close()
//
//	w, _ := eng.NewWorker(engine.Config{Permissions: permissions.None()},
//	    loader.NewSingle(`console.log("hello")`))
//	defer w.Close()
//
//	ctx := context.Background()
//	w.Bootstrap(ctx)
//	w.ExecuteModule(ctx, loader.EmbeddedSpecifier)
//
// # Sealed Binaries
//
//	monojs compile app.js -o app
//	./app arg1 arg2
//
// A sealed binary grants the embedded program full trust: every host
// capability is enabled, and the module loader serves exactly one in-memory
// module. Importing anything else fails.
//
// See the [engine], [loader], [standalone], and [trailer] packages for
// detailed API documentation.
package monojs
