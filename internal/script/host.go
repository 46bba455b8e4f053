// Package script hosts Lua value formulas. Every script file is a chunk that
// returns one function; the function receives the caster id followed by the
// caster attributes and returns the (min, max) magnitude pair.
//
//	-- fire_bolt.lua
//	return function(cid, level, maglevel)
//	    local base = level * 2 + maglevel * 3
//	    return -base * 2, -base
//	end
//
// A Host wraps a single Lua state and is not safe for concurrent use.
package script

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	lua "github.com/yuin/gopher-lua"

	"github.com/udisondev/tilecombat/internal/game/formula"
)

var (
	ErrUnknownScript = errors.New("unknown script")
	ErrNotFunction   = errors.New("script chunk must return a function")
	ErrBadReturn     = errors.New("script must return two numbers")
)

// DefaultCallTimeout bounds a single formula call.
const DefaultCallTimeout = 50 * time.Millisecond

// Host runs registered formula scripts.
type Host struct {
	state       *lua.LState
	funcs       map[string]*lua.LFunction
	callTimeout time.Duration
}

// NewHost creates a host with the base, math, string and table libraries.
// A zero callTimeout means DefaultCallTimeout.
func NewHost(callTimeout time.Duration) *Host {
	if callTimeout <= 0 {
		callTimeout = DefaultCallTimeout
	}

	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	for _, lib := range []struct {
		name string
		open lua.LGFunction
	}{
		{lua.BaseLibName, lua.OpenBase},
		{lua.MathLibName, lua.OpenMath},
		{lua.StringLibName, lua.OpenString},
		{lua.TabLibName, lua.OpenTable},
	} {
		L.Push(L.NewFunction(lib.open))
		L.Push(lua.LString(lib.name))
		L.Call(1, 0)
	}

	return &Host{
		state:       L,
		funcs:       make(map[string]*lua.LFunction),
		callTimeout: callTimeout,
	}
}

// Close releases the Lua state.
func (h *Host) Close() {
	h.state.Close()
}

// Names returns the registered script names in sorted order.
func (h *Host) Names() []string {
	names := make([]string, 0, len(h.funcs))
	for name := range h.funcs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Register compiles src and stores the function it returns under name.
// Registering an existing name replaces it.
func (h *Host) Register(name, src string) error {
	L := h.state
	chunk, err := L.LoadString(src)
	if err != nil {
		return fmt.Errorf("compiling script %q: %w", name, err)
	}

	L.Push(chunk)
	if err := L.PCall(0, 1, nil); err != nil {
		return fmt.Errorf("running script %q: %w", name, err)
	}
	ret := L.Get(-1)
	L.Pop(1)

	fn, ok := ret.(*lua.LFunction)
	if !ok {
		return fmt.Errorf("script %q returned %s: %w", name, ret.Type(), ErrNotFunction)
	}
	h.funcs[name] = fn
	return nil
}

// LoadDir registers every *.lua file in dir under its base name without
// extension. It returns the number of scripts loaded.
func (h *Host) LoadDir(dir string) (int, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.lua"))
	if err != nil {
		return 0, fmt.Errorf("listing scripts in %s: %w", dir, err)
	}
	sort.Strings(paths)

	for _, path := range paths {
		src, err := os.ReadFile(path)
		if err != nil {
			return 0, fmt.Errorf("reading script %s: %w", path, err)
		}
		name := strings.TrimSuffix(filepath.Base(path), ".lua")
		if err := h.Register(name, string(src)); err != nil {
			return 0, err
		}
	}

	slog.Info("formula scripts loaded", "dir", dir, "count", len(paths))
	return len(paths), nil
}

// Invoke implements formula.Host. The function named name is called with
// casterID followed by args and must return two numbers, which are
// truncated to int32.
func (h *Host) Invoke(name string, casterID uint32, kind formula.Kind, args ...int32) (int32, int32, error) {
	fn, ok := h.funcs[name]
	if !ok {
		return 0, 0, fmt.Errorf("%w: %q", ErrUnknownScript, name)
	}

	L := h.state
	ctx, cancel := context.WithTimeout(context.Background(), h.callTimeout)
	defer cancel()
	L.SetContext(ctx)
	defer L.RemoveContext()

	params := make([]lua.LValue, 0, len(args)+1)
	params = append(params, lua.LNumber(casterID))
	for _, a := range args {
		params = append(params, lua.LNumber(a))
	}

	top := L.GetTop()
	if err := L.CallByParam(lua.P{Fn: fn, NRet: 2, Protect: true}, params...); err != nil {
		L.SetTop(top)
		return 0, 0, fmt.Errorf("calling script %q (%s): %w", name, kind, err)
	}
	minV, maxV := L.Get(-2), L.Get(-1)
	L.Pop(2)
	if L.GetTop() != top {
		L.SetTop(top)
		return 0, 0, fmt.Errorf("script %q left the stack unbalanced", name)
	}

	minN, ok1 := minV.(lua.LNumber)
	maxN, ok2 := maxV.(lua.LNumber)
	if !ok1 || !ok2 {
		return 0, 0, fmt.Errorf("script %q returned (%s, %s): %w", name, minV.Type(), maxV.Type(), ErrBadReturn)
	}
	lo, ok1 := toInt32(minN)
	hi, ok2 := toInt32(maxN)
	if !ok1 || !ok2 {
		return 0, 0, fmt.Errorf("script %q returned (%v, %v) outside int32: %w", name, minN, maxN, ErrBadReturn)
	}
	return lo, hi, nil
}

// toInt32 truncates n toward zero. NaN, infinities and values that do not
// fit an int32 are rejected.
func toInt32(n lua.LNumber) (int32, bool) {
	f := math.Trunc(float64(n))
	if math.IsNaN(f) || f < math.MinInt32 || f > math.MaxInt32 {
		return 0, false
	}
	return int32(f), true
}
