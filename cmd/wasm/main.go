//go:build js && wasm

package main

import (
	"context"
	"encoding/json"
	"syscall/js"
	"time"

	"github.com/hack-pad/hackpadfs"
	"github.com/hack-pad/hackpadfs/indexeddb"

	"github.com/kittclouds/poschunk/pkg/grammar"
	"github.com/kittclouds/poschunk/pkg/scanner/chunker"
	"github.com/kittclouds/poschunk/pkg/scanner/tree"
)

// Version info
const Version = "0.1.0"

const grammarDir = "grammars"

// Global state
var (
	engine   = chunker.New()
	active   *grammar.Grammar
	cascade  *chunker.Cascade
	grammars hackpadfs.FS
)

func main() {
	if err := useGrammar(grammar.Default()); err != nil {
		println("[PosChunk] FATAL: default grammar:", err.Error())
	}
	println("[PosChunk] WASM Ready v" + Version)

	js.Global().Set("PosChunk", js.ValueOf(map[string]interface{}{
		"version":      js.FuncOf(getVersion),
		"loadGrammar":  js.FuncOf(loadGrammar),
		"chunk":        js.FuncOf(chunk),
		"parse":        js.FuncOf(parse),
		"initStorage":  js.FuncOf(initStorage),
		"saveGrammar":  js.FuncOf(saveGrammar),
		"openGrammar":  js.FuncOf(openGrammar),
		"listGrammars": js.FuncOf(listGrammars),
	}))

	select {}
}

func getVersion(this js.Value, args []js.Value) interface{} {
	return Version
}

func useGrammar(g *grammar.Grammar) error {
	c, err := g.Compile(engine)
	if err != nil {
		return err
	}
	active, cascade = g, c
	return nil
}

// loadGrammar compiles a YAML grammar and makes it the active cascade.
// Args: [grammarYAML string]
func loadGrammar(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return errorResult("loadGrammar requires 1 argument: grammarYAML")
	}
	g, err := grammar.Parse([]byte(args[0].String()))
	if err != nil {
		return errorResult(err.Error())
	}
	if err := useGrammar(g); err != nil {
		return errorResult(err.Error())
	}
	return successResult("loaded " + g.Name)
}

// chunk applies the active grammar, or inline rules, to tagged text.
// Args: [text string, rulesJSON? string]
func chunk(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return errorResult("chunk requires at least 1 argument: text")
	}
	text := args[0].String()
	start := time.Now()

	var chunked string
	name := ""
	if len(args) > 1 && args[1].Type() == js.TypeString {
		var specs []grammar.RuleSpec
		if err := json.Unmarshal([]byte(args[1].String()), &specs); err != nil {
			return errorResult("rules json: " + err.Error())
		}
		g := &grammar.Grammar{Name: "inline", Rules: specs}
		rules, err := g.ChunkRules()
		if err != nil {
			return errorResult(err.Error())
		}
		chunked, err = engine.Chunk(text, rules)
		if err != nil {
			return errorResult(err.Error())
		}
		name = g.Name
	} else {
		if cascade == nil {
			return errorResult("no grammar loaded")
		}
		chunked = cascade.Apply(text)
		name = active.Name
	}

	return jsonResult(map[string]interface{}{
		"chunked":   chunked,
		"grammar":   name,
		"timingsUs": time.Since(start).Microseconds(),
	})
}

// parse returns the bracket tree of chunked text as JSON.
// Args: [chunkedText string]
func parse(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return errorResult("parse requires 1 argument: chunkedText")
	}
	return jsonResult(map[string]interface{}{
		"tree": tree.Parse(args[0].String()),
	})
}

// initStorage opens the IndexedDB-backed grammar directory.
func initStorage(this js.Value, args []js.Value) interface{} {
	fs, err := indexeddb.NewFS(context.Background(), "poschunk", indexeddb.Options{})
	if err != nil {
		return errorResult("failed to create idb fs: " + err.Error())
	}
	if err := hackpadfs.MkdirAll(fs, grammarDir, 0o755); err != nil {
		return errorResult("failed to create grammar dir: " + err.Error())
	}
	grammars = fs
	return successResult("storage initialized")
}

// saveGrammar persists the active grammar.
func saveGrammar(this js.Value, args []js.Value) interface{} {
	if grammars == nil {
		return errorResult("storage not initialized")
	}
	if active == nil {
		return errorResult("no grammar loaded")
	}
	if err := grammar.Save(grammars, grammarFile(active.Name), active); err != nil {
		return errorResult("save failed: " + err.Error())
	}
	return successResult("saved " + active.Name)
}

// openGrammar loads a saved grammar by name and activates it.
// Args: [name string]
func openGrammar(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return errorResult("openGrammar requires 1 argument: name")
	}
	if grammars == nil {
		return errorResult("storage not initialized")
	}
	g, err := grammar.Load(grammars, grammarFile(args[0].String()))
	if err != nil {
		return errorResult(err.Error())
	}
	if err := useGrammar(g); err != nil {
		return errorResult(err.Error())
	}
	return successResult("loaded " + g.Name)
}

func listGrammars(this js.Value, args []js.Value) interface{} {
	if grammars == nil {
		return errorResult("storage not initialized")
	}
	all, err := grammar.LoadDir(grammars, grammarDir)
	if err != nil {
		return errorResult(err.Error())
	}
	names := make([]string, len(all))
	for i, g := range all {
		names[i] = g.Name
	}
	return jsonResult(map[string]interface{}{"grammars": names})
}

func grammarFile(name string) string {
	return grammarDir + "/" + name + ".yaml"
}

// Helper: Marshal any value to a JSON string
func jsonResult(v interface{}) interface{} {
	jsonBytes, err := json.Marshal(v)
	if err != nil {
		return errorResult(err.Error())
	}
	return string(jsonBytes)
}

// Helper: Create error result
func errorResult(msg string) interface{} {
	result := map[string]interface{}{
		"error": msg,
	}
	jsonBytes, _ := json.Marshal(result)
	return string(jsonBytes)
}

// Helper: Create success result
func successResult(msg string) interface{} {
	result := map[string]interface{}{
		"success": msg,
	}
	jsonBytes, _ := json.Marshal(result)
	return string(jsonBytes)
}
