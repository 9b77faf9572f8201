//go:build js && wasm

// PostStencil WASM - Client-side renderer.
// Compiled with: GOOS=js GOARCH=wasm go build -o poststencil.wasm ./clients/wasm/
package main

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"syscall/js"

	"github.com/xob0t/poststencil/pkg/export"
	"github.com/xob0t/poststencil/pkg/fonts"
	"github.com/xob0t/poststencil/pkg/imageload"
	"github.com/xob0t/poststencil/pkg/logger"
	"github.com/xob0t/poststencil/pkg/state"
)

const assetScheme = "asset:"

// In-memory asset store, addressed from states as asset:ID.
var (
	assetsMu sync.RWMutex
	assets   = make(map[string]assetEntry)
)

type assetEntry struct {
	Data []byte
	Mime string
}

var exporter *export.Exporter

func main() {
	log, _ := logger.New(logger.Options{Level: "info"})
	exporter = export.New(export.Options{
		Images: imageload.New(imageload.Options{Logger: log}),
		// No cache directory in the browser; embedded fallbacks only.
		Fonts:  fonts.New(fonts.Options{Offline: true, CacheDir: "/tmp", Logger: log}),
		Logger: log,
	})
	fmt.Println("PostStencil WASM loaded")

	js.Global().Set("goRenderImage", js.FuncOf(renderImage))
	js.Global().Set("goLayout", js.FuncOf(layoutPlan))
	js.Global().Set("goValidate", js.FuncOf(validate))
	js.Global().Set("goExample", js.FuncOf(example))
	js.Global().Set("goRegisterAsset", js.FuncOf(registerAsset))
	js.Global().Set("goRemoveAsset", js.FuncOf(removeAsset))
	js.Global().Set("goReady", js.ValueOf(true))

	select {}
}

// inline replaces asset:ID references with data URIs.
func inline(ref string) (string, error) {
	id, ok := strings.CutPrefix(ref, assetScheme)
	if !ok {
		return ref, nil
	}
	assetsMu.RLock()
	a, found := assets[id]
	assetsMu.RUnlock()
	if !found {
		return "", fmt.Errorf("unknown asset %q", id)
	}
	return imageload.EncodeDataURI(a.Mime, a.Data), nil
}

// decodeArgs reads (stateJSON, dataJSON, mode) with the last two optional.
func decodeArgs(args []js.Value) (*state.State, state.Mode, []string, error) {
	if len(args) < 1 {
		return nil, "", nil, fmt.Errorf("need stateJSON")
	}
	doc := args[0].String()
	if strings.TrimSpace(doc) == "" {
		doc = "{}"
	}
	st, warnings, err := state.DecodeResolved([]byte(doc), inline)
	if err != nil {
		return nil, "", nil, err
	}
	if len(args) > 1 && args[1].Type() == js.TypeString {
		if err := state.ApplyData(st, []byte(args[1].String())); err != nil {
			return nil, "", nil, err
		}
		if err := st.ResolveImages(inline); err != nil {
			return nil, "", nil, err
		}
	}
	var mode state.Mode = state.ModePost
	if len(args) > 2 && args[2].Type() == js.TypeString {
		if mode, err = state.ParseMode(args[2].String()); err != nil {
			return nil, "", nil, err
		}
	}
	return st, mode, warnings, nil
}

// promise runs fn off the JS event loop, since image fetches block on it.
func promise(fn func() (any, error)) js.Value {
	handler := js.FuncOf(func(this js.Value, args []js.Value) any {
		resolve, reject := args[0], args[1]
		go func() {
			v, err := fn()
			if err != nil {
				reject.Invoke(js.Global().Get("Error").New(err.Error()))
				return
			}
			resolve.Invoke(v)
		}()
		return nil
	})
	p := js.Global().Get("Promise").New(handler)
	handler.Release()
	return p
}

// goRenderImage(stateJSON, dataJSON?, mode?) - resolves to a base64 PNG.
func renderImage(this js.Value, args []js.Value) any {
	return promise(func() (any, error) {
		st, mode, _, err := decodeArgs(args)
		if err != nil {
			return nil, err
		}
		res, err := exporter.Export(context.Background(), st, mode)
		if err != nil {
			return nil, fmt.Errorf("%s", export.Message(err))
		}
		return base64.StdEncoding.EncodeToString(res.Data), nil
	})
}

// goLayout(stateJSON, dataJSON?, mode?) - resolves to the plan JSON.
func layoutPlan(this js.Value, args []js.Value) any {
	return promise(func() (any, error) {
		st, mode, _, err := decodeArgs(args)
		if err != nil {
			return nil, err
		}
		plan, err := exporter.Layout(context.Background(), st, mode)
		if err != nil {
			return nil, err
		}
		b, err := json.Marshal(plan)
		if err != nil {
			return nil, err
		}
		return string(b), nil
	})
}

// goValidate(stateJSON) - returns a JSON array of warnings.
func validate(this js.Value, args []js.Value) any {
	_, _, warnings, err := decodeArgs(args[:min(len(args), 1)])
	if err != nil {
		return js.ValueOf("error: " + err.Error())
	}
	if warnings == nil {
		warnings = []string{}
	}
	b, _ := json.Marshal(warnings)
	return js.ValueOf(string(b))
}

// goExample() - returns {state, data} sample documents.
func example(this js.Value, args []js.Value) any {
	st, data := state.ExampleJSON()
	b, _ := json.Marshal(map[string]json.RawMessage{"state": json.RawMessage(st), "data": json.RawMessage(data)})
	return js.ValueOf(string(b))
}

// goRegisterAsset(id, base64Data, mime) - store an asset in Go memory.
func registerAsset(this js.Value, args []js.Value) any {
	if len(args) < 3 {
		return js.ValueOf("error: need id, base64Data, mime")
	}
	id := args[0].String()
	data, err := base64.StdEncoding.DecodeString(args[1].String())
	if err != nil {
		return js.ValueOf("error: invalid base64: " + err.Error())
	}
	mimeType := args[2].String()
	if err := imageload.Accept(data, mimeType, imageload.DefaultMaxPixels); err != nil {
		return js.ValueOf("error: " + err.Error())
	}

	assetsMu.Lock()
	assets[id] = assetEntry{Data: data, Mime: mimeType}
	assetsMu.Unlock()
	return js.ValueOf(assetScheme + id)
}

// goRemoveAsset(id) - remove an asset from Go memory.
func removeAsset(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return js.ValueOf("error: need id")
	}
	assetsMu.Lock()
	delete(assets, args[0].String())
	assetsMu.Unlock()
	return js.ValueOf("ok")
}
