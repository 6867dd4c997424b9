package starlark

import (
	"context"
	"fmt"

	"github.com/leapstack-labs/leapcad/internal/console"
	"github.com/leapstack-labs/leapcad/internal/coords"
	"github.com/leapstack-labs/leapcad/pkg/geom"
	"go.starlark.net/starlark"
	"go.starlark.net/starlarkstruct"
)

// contextKey is the thread-local slot holding the run's context.Context.
const contextKey = "context"

func threadContext(thread *starlark.Thread) context.Context {
	if ctx, ok := thread.Local(contextKey).(context.Context); ok {
		return ctx
	}
	return context.Background()
}

type builtinFunc = func(*starlark.Thread, *starlark.Builtin, starlark.Tuple, []starlark.Tuple) (starlark.Value, error)

// Module returns the "cad" module bound to con. Every primitive of the
// catalog becomes a function taking its parameters plus optional on= and
// name= keywords and returning the new object id.
func Module(con *console.Console) *starlarkstruct.Module {
	b := &builtins{con: con}
	members := starlark.StringDict{
		"plane":             starlark.NewBuiltin("plane", b.plane),
		"plane_from_points": starlark.NewBuiltin("plane_from_points", b.planeFromPoints),
		"plane_from_system": starlark.NewBuiltin("plane_from_system", b.planeFromSystem),
		"reset_plane":       starlark.NewBuiltin("reset_plane", b.resetPlane),
		"active_plane":      starlark.NewBuiltin("active_plane", b.activePlane),
		"set_active_plane":  starlark.NewBuiltin("set_active_plane", b.setActivePlane),
		"delete":            starlark.NewBuiltin("delete", b.delete),
		"rename":            starlark.NewBuiltin("rename", b.rename),
		"toggle":            starlark.NewBuiltin("toggle", b.toggle),
		"undo":              starlark.NewBuiltin("undo", b.undo),
		"redo":              starlark.NewBuiltin("redo", b.redo),
		"get":               starlark.NewBuiltin("get", b.get),
		"objects":           starlark.NewBuiltin("objects", b.objects),
		"children":          starlark.NewBuiltin("children", b.children),
		"history":           starlark.NewBuiltin("history", b.history),
		"cs_create":         starlark.NewBuiltin("cs_create", b.csCreate),
		"cs_use":            starlark.NewBuiltin("cs_use", b.csUse),
		"cs_list":           starlark.NewBuiltin("cs_list", b.csList),
		"import_file":       starlark.NewBuiltin("import_file", b.importFile),
		"exec":              starlark.NewBuiltin("exec", b.exec),
	}
	for _, p := range console.Primitives() {
		members[p.Name] = starlark.NewBuiltin(p.Name, b.primitive(p))
	}
	return &starlarkstruct.Module{Name: "cad", Members: members}
}

// Predeclared returns the globals of a script run: the cad module.
func Predeclared(con *console.Console) starlark.StringDict {
	return starlark.StringDict{"cad": Module(con)}
}

type builtins struct {
	con *console.Console
}

func (b *builtins) primitive(p *console.Primitive) builtinFunc {
	return func(_ *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		vals := make([]starlark.Value, len(p.Params))
		var on, name string
		pairs := make([]any, 0, 2*len(p.Params)+4)
		for i, param := range p.Params {
			pairs = append(pairs, param.Name, &vals[i])
		}
		pairs = append(pairs, "on?", &on, "name?", &name)
		if err := starlark.UnpackArgs(fn.Name(), args, kwargs, pairs...); err != nil {
			return nil, err
		}

		nums := make([]float64, len(vals))
		for i, v := range vals {
			f, ok := starlark.AsFloat(v)
			if !ok {
				return nil, fmt.Errorf("%s: %s: want a number, got %s", fn.Name(), p.Params[i].Name, v.Type())
			}
			nums[i] = f
		}
		id, err := b.con.CreatePrimitive(p, nums, on, name)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", fn.Name(), err)
		}
		return starlark.String(id), nil
	}
}

func (b *builtins) plane(_ *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var origin, normal starlark.Value
	var name string
	if err := starlark.UnpackArgs(fn.Name(), args, kwargs, "origin", &origin, "normal", &normal, "name?", &name); err != nil {
		return nil, err
	}
	o, err := Vec3FromStarlark(origin)
	if err != nil {
		return nil, fmt.Errorf("%s: origin: %w", fn.Name(), err)
	}
	n, err := Vec3FromStarlark(normal)
	if err != nil {
		return nil, fmt.Errorf("%s: normal: %w", fn.Name(), err)
	}
	def, err := geom.NewPlaneDefinition(o, n)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", fn.Name(), err)
	}
	return b.createPlane(fn, name, def)
}

func (b *builtins) planeFromPoints(_ *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var p1, p2, p3 starlark.Value
	var name string
	if err := starlark.UnpackArgs(fn.Name(), args, kwargs, "p1", &p1, "p2", &p2, "p3", &p3, "name?", &name); err != nil {
		return nil, err
	}
	var pts [3]geom.Vec3
	for i, v := range []starlark.Value{p1, p2, p3} {
		p, err := Vec3FromStarlark(v)
		if err != nil {
			return nil, fmt.Errorf("%s: p%d: %w", fn.Name(), i+1, err)
		}
		pts[i] = p
	}
	def, err := geom.PlaneFromPoints(pts[0], pts[1], pts[2])
	if err != nil {
		return nil, fmt.Errorf("%s: %w", fn.Name(), err)
	}
	return b.createPlane(fn, name, def)
}

func (b *builtins) createPlane(fn *starlark.Builtin, name string, def geom.PlaneDefinition) (starlark.Value, error) {
	id, err := b.con.Document().CreatePlane(name, def)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", fn.Name(), err)
	}
	return starlark.String(id), nil
}

func (b *builtins) planeFromSystem(_ *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var title string
	kind := string(coords.PlaneOXY)
	if err := starlark.UnpackArgs(fn.Name(), args, kwargs, "title", &title, "kind?", &kind); err != nil {
		return nil, err
	}
	id, err := b.con.Document().PlaneFromSystem(title, coords.PlaneKind(kind))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", fn.Name(), err)
	}
	return starlark.String(id), nil
}

func (b *builtins) resetPlane(_ *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	if err := starlark.UnpackArgs(fn.Name(), args, kwargs); err != nil {
		return nil, err
	}
	id, err := b.con.ResetPlane()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", fn.Name(), err)
	}
	return starlark.String(id), nil
}

func (b *builtins) activePlane(_ *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	if err := starlark.UnpackArgs(fn.Name(), args, kwargs); err != nil {
		return nil, err
	}
	id := b.con.Document().ActivePlane()
	if id == "" {
		return starlark.None, nil
	}
	return starlark.String(id), nil
}

func (b *builtins) setActivePlane(_ *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var id starlark.Value
	if err := starlark.UnpackPositionalArgs(fn.Name(), args, kwargs, 1, &id); err != nil {
		return nil, err
	}
	target := ""
	if s, ok := id.(starlark.String); ok {
		target = string(s)
	} else if id != starlark.None {
		return nil, fmt.Errorf("%s: want a plane id or None, got %s", fn.Name(), id.Type())
	}
	if err := b.con.Document().SetActivePlane(target); err != nil {
		return nil, fmt.Errorf("%s: %w", fn.Name(), err)
	}
	return starlark.None, nil
}

// idOp wraps a document operation taking one object id.
func idOp(op func(id string) error) builtinFunc {
	return func(_ *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		var id string
		if err := starlark.UnpackPositionalArgs(fn.Name(), args, kwargs, 1, &id); err != nil {
			return nil, err
		}
		if err := op(id); err != nil {
			return nil, fmt.Errorf("%s: %w", fn.Name(), err)
		}
		return starlark.None, nil
	}
}

func (b *builtins) delete(thread *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	return idOp(b.con.Document().Delete)(thread, fn, args, kwargs)
}

func (b *builtins) toggle(thread *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	return idOp(b.con.Document().ToggleVisibility)(thread, fn, args, kwargs)
}

func (b *builtins) rename(_ *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var oldID, newID string
	if err := starlark.UnpackPositionalArgs(fn.Name(), args, kwargs, 2, &oldID, &newID); err != nil {
		return nil, err
	}
	if err := b.con.Document().Rename(oldID, newID); err != nil {
		return nil, fmt.Errorf("%s: %w", fn.Name(), err)
	}
	return starlark.None, nil
}

// undo and redo return False instead of failing when there is nothing to do.
func (b *builtins) undo(_ *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	if err := starlark.UnpackArgs(fn.Name(), args, kwargs); err != nil {
		return nil, err
	}
	d := b.con.Document()
	if !d.CanUndo() {
		return starlark.False, nil
	}
	if err := d.Undo(); err != nil {
		return nil, fmt.Errorf("%s: %w", fn.Name(), err)
	}
	return starlark.True, nil
}

func (b *builtins) redo(_ *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	if err := starlark.UnpackArgs(fn.Name(), args, kwargs); err != nil {
		return nil, err
	}
	d := b.con.Document()
	if !d.CanRedo() {
		return starlark.False, nil
	}
	if err := d.Redo(); err != nil {
		return nil, fmt.Errorf("%s: %w", fn.Name(), err)
	}
	return starlark.True, nil
}

func (b *builtins) get(_ *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var id string
	if err := starlark.UnpackPositionalArgs(fn.Name(), args, kwargs, 1, &id); err != nil {
		return nil, err
	}
	rec, ok := b.con.Document().Object(id)
	if !ok {
		return starlark.None, nil
	}
	return RecordToStarlark(rec), nil
}

func (b *builtins) objects(_ *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	if err := starlark.UnpackArgs(fn.Name(), args, kwargs); err != nil {
		return nil, err
	}
	recs := b.con.Document().Objects()
	out := make([]starlark.Value, len(recs))
	for i, rec := range recs {
		out[i] = RecordToStarlark(rec)
	}
	return starlark.NewList(out), nil
}

func (b *builtins) children(_ *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var id string
	if err := starlark.UnpackPositionalArgs(fn.Name(), args, kwargs, 1, &id); err != nil {
		return nil, err
	}
	recs := b.con.Document().Children(id)
	out := make([]starlark.Value, len(recs))
	for i, rec := range recs {
		out[i] = RecordToStarlark(rec)
	}
	return starlark.NewList(out), nil
}

func (b *builtins) history(_ *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	if err := starlark.UnpackArgs(fn.Name(), args, kwargs); err != nil {
		return nil, err
	}
	entries := b.con.Document().History()
	out := make([]any, len(entries))
	for i, e := range entries {
		out[i] = map[string]any{"description": e.Description, "applied": e.Applied}
	}
	return GoToStarlark(out)
}

func (b *builtins) csCreate(_ *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var title string
	var origin, x, y starlark.Value
	active := false
	if err := starlark.UnpackArgs(fn.Name(), args, kwargs,
		"title", &title, "origin", &origin, "x", &x, "y", &y, "active?", &active); err != nil {
		return nil, err
	}
	var v [3]geom.Vec3
	for i, val := range []starlark.Value{origin, x, y} {
		vec, err := Vec3FromStarlark(val)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", fn.Name(), err)
		}
		v[i] = vec
	}
	d := b.con.Document()
	s, err := d.Systems().CreateFromVectors(title, v[0], v[1], v[2])
	if err != nil {
		return nil, fmt.Errorf("%s: %w", fn.Name(), err)
	}
	if active {
		if err := d.SetActiveSystem(title); err != nil {
			return nil, fmt.Errorf("%s: %w", fn.Name(), err)
		}
	}
	return SystemToStarlark(s), nil
}

func (b *builtins) csUse(thread *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	return idOp(b.con.Document().SetActiveSystem)(thread, fn, args, kwargs)
}

func (b *builtins) csList(_ *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	if err := starlark.UnpackArgs(fn.Name(), args, kwargs); err != nil {
		return nil, err
	}
	m := b.con.Document().Systems()
	out := make([]starlark.Value, 0, m.Len())
	for _, title := range m.Titles() {
		s, _ := m.Get(title)
		out = append(out, SystemToStarlark(s))
	}
	return starlark.NewList(out), nil
}

func (b *builtins) importFile(thread *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var path, on, name string
	var at starlark.Value = starlark.None
	if err := starlark.UnpackArgs(fn.Name(), args, kwargs, "path", &path, "at?", &at, "on?", &on, "name?", &name); err != nil {
		return nil, err
	}
	req := console.ImportRequest{Path: path, Plane: on, Name: name}
	if at != starlark.None {
		off, err := Vec3FromStarlark(at)
		if err != nil {
			return nil, fmt.Errorf("%s: at: %w", fn.Name(), err)
		}
		req.Offset = off
	}

	res, err := b.con.Importer().Import(threadContext(thread), req)
	if res == nil {
		return nil, fmt.Errorf("%s: %w", fn.Name(), err)
	}
	kinds, kerr := GoToStarlark(res.Container.CountByKind())
	if kerr != nil {
		return nil, kerr
	}
	return starlarkstruct.FromStringDict(starlark.String("import"), starlark.StringDict{
		"group":       starlark.String(res.Group),
		"shapes":      starlark.MakeInt(res.Container.Len()),
		"skipped":     starlark.MakeInt(res.Container.Skipped),
		"diagnostics": starlark.MakeInt(len(res.Container.Diagnostics)),
		"kinds":       kinds,
		"journaled":   starlark.Bool(res.Entry != nil),
	}), nil
}

func (b *builtins) exec(thread *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var line string
	if err := starlark.UnpackPositionalArgs(fn.Name(), args, kwargs, 1, &line); err != nil {
		return nil, err
	}
	out, err := b.con.Exec(threadContext(thread), line)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", fn.Name(), err)
	}
	return starlark.String(out), nil
}
