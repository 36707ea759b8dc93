//go:build js && wasm
// +build js,wasm

package main

import (
	"fmt"
	"io/fs"
	"syscall/js"

	"github.com/MeKo-Tech/reversejp/assets"
	"github.com/MeKo-Tech/reversejp/internal/archive"
	"github.com/MeKo-Tech/reversejp/internal/binding"
	"github.com/MeKo-Tech/reversejp/internal/types"
	"github.com/MeKo-Tech/reversejp/pkg/reversejp"
)

// engine is built from the embedded shards on first use.
var engine = binding.NewLazy(func() (*reversejp.Engine, error) {
	return reversejp.BuildEmbedded()
})

func errorValue(format string, args ...any) map[string]any {
	return map[string]any{"error": fmt.Sprintf(format, args...)}
}

func propertiesValue(p types.Properties) map[string]any {
	return map[string]any{
		"code":   p.Code,
		"name":   p.Name,
		"enName": p.EnName,
	}
}

// coords reads (lon, lat) from the first two arguments.
func coords(args []js.Value) (float64, float64, error) {
	if len(args) < 2 {
		return 0, 0, fmt.Errorf("expected (lon, lat), got %d arguments", len(args))
	}
	if args[0].Type() != js.TypeNumber || args[1].Type() != js.TypeNumber {
		return 0, 0, fmt.Errorf("lon and lat must be numbers")
	}
	return args[0].Float(), args[1].Float(), nil
}

// initialize builds the index ahead of the first lookup.
func initialize(this js.Value, args []js.Value) any {
	eng, err := engine.Get()
	if err != nil {
		return errorValue("failed to load region index: %v", err)
	}
	return map[string]any{"status": "ready", "polygons": eng.Len()}
}

// findProperties returns an array of {code, name, enName} objects.
func findProperties(this js.Value, args []js.Value) any {
	lon, lat, err := coords(args)
	if err != nil {
		return errorValue("%v", err)
	}
	eng, err := engine.Get()
	if err != nil {
		return errorValue("failed to load region index: %v", err)
	}

	props := eng.Find(lon, lat)
	out := make([]any, len(props))
	for i, p := range props {
		out[i] = propertiesValue(p)
	}
	return out
}

// findPropertiesAsMap returns an object keyed by region code.
func findPropertiesAsMap(this js.Value, args []js.Value) any {
	lon, lat, err := coords(args)
	if err != nil {
		return errorValue("%v", err)
	}
	eng, err := engine.Get()
	if err != nil {
		return errorValue("failed to load region index: %v", err)
	}

	out := make(map[string]any)
	for code, p := range eng.FindAsMap(lon, lat) {
		out[code] = propertiesValue(p)
	}
	return out
}

// shardJSON returns the raw GeoJSON text of landslides shard idx.
func shardJSON(this js.Value, args []js.Value) any {
	if len(args) < 1 || args[0].Type() != js.TypeNumber {
		return errorValue("expected a shard index")
	}
	idx := args[0].Int()
	if idx < 0 || idx >= reversejp.LandslideShardCount {
		return errorValue("shard index %d out of range [0, %d)", idx, reversejp.LandslideShardCount)
	}

	fsys, err := assets.DataFS()
	if err != nil {
		return errorValue("%v", err)
	}
	name := reversejp.DefaultShardNames()[idx+1]
	data, err := fs.ReadFile(fsys, name.File)
	if err != nil {
		return errorValue("%v", err)
	}
	doc, err := archive.Extract(data, name.Entry)
	if err != nil {
		return errorValue("%v", err)
	}
	return string(doc)
}

func main() {
	c := make(chan struct{})

	js.Global().Set("reversejpInitialize", js.FuncOf(initialize))
	js.Global().Set("reversejpFindProperties", js.FuncOf(findProperties))
	js.Global().Set("reversejpFindPropertiesAsMap", js.FuncOf(findPropertiesAsMap))
	js.Global().Set("reversejpShardJSON", js.FuncOf(shardJSON))

	fmt.Println("reversejp WASM module loaded")
	<-c
}
