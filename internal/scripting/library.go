// Package scripting loads entity kinds from Lua. Kinds registered by
// scripts provide the same hook set as Go behaviors: update, object
// collision accept, tile collision accept, raycast accept. A single VM is
// shared and accessed only from the game loop goroutine.
package scripting

import (
	"fmt"
	"os"
	"path/filepath"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/1studio/SpaceHuggers/internal/entity"
	"github.com/1studio/SpaceHuggers/internal/mathx"
)

// Library wraps one gopher-lua VM and the kinds its scripts registered.
type Library struct {
	vm    *lua.LState
	log   *zap.Logger
	kinds map[string]*kind
}

type kind struct {
	name          string
	update        *lua.LFunction
	collideObject *lua.LFunction
	collideTile   *lua.LFunction
	raycastTile   *lua.LFunction
}

// NewLibrary creates a VM, installs the register_kind builtin, and runs
// every .lua file in dir. A missing directory yields an empty library.
func NewLibrary(dir string, log *zap.Logger) (*Library, error) {
	if log == nil {
		log = zap.NewNop()
	}
	vm := lua.NewState(lua.Options{SkipOpenLibs: false})
	vm.SetGlobal("API_VERSION", lua.LNumber(1))

	l := &Library{vm: vm, log: log, kinds: make(map[string]*kind)}
	vm.SetGlobal("register_kind", vm.NewFunction(l.luaRegisterKind))

	if err := l.loadDir(dir); err != nil {
		vm.Close()
		return nil, fmt.Errorf("load scripts: %w", err)
	}
	return l, nil
}

func (l *Library) loadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // no scripts is fine
		}
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := l.vm.DoFile(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		l.log.Debug("loaded lua script", zap.String("file", path))
	}
	return nil
}

func (l *Library) Close() { l.vm.Close() }

// Count returns how many kinds scripts registered.
func (l *Library) Count() int { return len(l.kinds) }

// Behavior resolves a kind name to its scripted behavior.
func (l *Library) Behavior(name string) (entity.Behavior, bool) {
	k, ok := l.kinds[name]
	if !ok {
		return nil, false
	}
	return &luaBehavior{lib: l, kind: k}, true
}

func (l *Library) luaRegisterKind(L *lua.LState) int {
	name := L.CheckString(1)
	tbl := L.CheckTable(2)
	k := &kind{name: name}
	if f, ok := tbl.RawGetString("update").(*lua.LFunction); ok {
		k.update = f
	}
	if f, ok := tbl.RawGetString("on_collide_object").(*lua.LFunction); ok {
		k.collideObject = f
	}
	if f, ok := tbl.RawGetString("on_collide_tile").(*lua.LFunction); ok {
		k.collideTile = f
	}
	if f, ok := tbl.RawGetString("on_raycast_tile").(*lua.LFunction); ok {
		k.raycastTile = f
	}
	l.kinds[name] = k
	l.log.Debug("registered lua kind", zap.String("kind", name))
	return 0
}

// luaBehavior adapts a scripted kind to the entity hook interface. Data
// crosses the boundary as small tables built per call; script errors are
// logged and fall back to the default hook result, never into the
// resolver.
type luaBehavior struct {
	entity.Base
	lib  *Library
	kind *kind
}

func (b *luaBehavior) entityTable(e *entity.Entity) *lua.LTable {
	tbl := b.lib.vm.NewTable()
	tbl.RawSetString("x", lua.LNumber(e.Pos.X))
	tbl.RawSetString("y", lua.LNumber(e.Pos.Y))
	tbl.RawSetString("vx", lua.LNumber(e.Velocity.X))
	tbl.RawSetString("vy", lua.LNumber(e.Velocity.Y))
	tbl.RawSetString("angle", lua.LNumber(e.Angle))
	tbl.RawSetString("mass", lua.LNumber(e.Mass))
	tbl.RawSetString("on_ground", lua.LBool(e.OnGround()))
	return tbl
}

func (b *luaBehavior) Update(e *entity.Entity, ctx entity.Context) {
	if b.kind.update == nil {
		return
	}
	vm := b.lib.vm
	self := b.entityTable(e)
	self.RawSetString("time", lua.LNumber(ctx.Time()))
	if err := vm.CallByParam(lua.P{Fn: b.kind.update, NRet: 1, Protect: true}, self); err != nil {
		b.lib.log.Error("lua update failed", zap.String("kind", b.kind.name), zap.Error(err))
		return
	}
	ret := vm.Get(-1)
	vm.Pop(1)
	out, ok := ret.(*lua.LTable)
	if !ok {
		return
	}
	if v, ok := out.RawGetString("vx").(lua.LNumber); ok {
		e.Velocity.X = float64(v)
	}
	if v, ok := out.RawGetString("vy").(lua.LNumber); ok {
		e.Velocity.Y = float64(v)
	}
	if v, ok := out.RawGetString("angle").(lua.LNumber); ok {
		e.Angle = float64(v)
	}
	if v, ok := out.RawGetString("destroy").(lua.LBool); ok && bool(v) {
		e.Destroy()
	}
}

func (b *luaBehavior) CollideWithObject(e, other *entity.Entity) bool {
	if b.kind.collideObject == nil {
		return true
	}
	v, err := b.callBool(b.kind.collideObject, b.entityTable(e), b.entityTable(other))
	if err != nil {
		b.lib.log.Error("lua on_collide_object failed", zap.String("kind", b.kind.name), zap.Error(err))
		return true
	}
	return v
}

func (b *luaBehavior) CollideWithTile(e *entity.Entity, code int, cell mathx.Vector2) bool {
	if b.kind.collideTile == nil {
		return code > 0
	}
	v, err := b.callBool(b.kind.collideTile, lua.LNumber(code), lua.LNumber(cell.X), lua.LNumber(cell.Y))
	if err != nil {
		b.lib.log.Error("lua on_collide_tile failed", zap.String("kind", b.kind.name), zap.Error(err))
		return code > 0
	}
	return v
}

func (b *luaBehavior) RaycastHitTile(e *entity.Entity, code int, cell mathx.Vector2) bool {
	if b.kind.raycastTile == nil {
		return code > 0
	}
	v, err := b.callBool(b.kind.raycastTile, lua.LNumber(code), lua.LNumber(cell.X), lua.LNumber(cell.Y))
	if err != nil {
		b.lib.log.Error("lua on_raycast_tile failed", zap.String("kind", b.kind.name), zap.Error(err))
		return code > 0
	}
	return v
}

func (b *luaBehavior) callBool(fn *lua.LFunction, args ...lua.LValue) (bool, error) {
	vm := b.lib.vm
	if err := vm.CallByParam(lua.P{Fn: fn, NRet: 1, Protect: true}, args...); err != nil {
		return false, err
	}
	ret := vm.Get(-1)
	vm.Pop(1)
	return lua.LVAsBool(ret), nil
}
