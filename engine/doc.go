// Package engine executes JavaScript through QuickJS compiled to WASI,
// running on the wazero runtime.
//
// An [Engine] owns the wazero runtime and the compiled interpreter. A
// [Worker] is one execution context: it is bound to a module loader and a
// [Config] at creation, and driven through the narrow lifecycle the
// runtime exposes: Bootstrap, ExecuteModule, DispatchEvent, RunEventLoop.
//
// The host and the interpreter talk over the instance's stdin and stderr:
// commands go in as JSON lines, completion signals and host calls come
// back NUL-framed on stderr so they never mix with script output.
package engine
