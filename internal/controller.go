package internal

import (
	"fmt"
	"runtime/debug"
	"strings"
	"unicode"
	"unicode/utf8"
)

// IndexAction is the action used when the requested one does not exist.
const IndexAction = "index"

// Definition describes a registered controller without instantiating it.
type Definition interface {
	Module() string
	Controller() string

	// Identifier returns the conventional name <Module>/<Controller>Controller.
	Identifier() string

	// CanView runs the capability check. It must not build the controller.
	CanView(c Context) bool

	HasAction(action string) bool

	// Invoke builds the controller and runs the action.
	// A panic inside the constructor or the action is returned as *PanicError.
	Invoke(c Context, action string, vars Vars) error
}

// ControllerDef registers a controller type T with its constructor,
// capability check and actions.
//
//	blog := internal.Controller("blog", "post", NewPostController).
//	    Allow(func(c internal.Context) bool { return true }).
//	    Action("index", (*PostController).Index).
//	    Action("show", (*PostController).Show)
type ControllerDef[T any] struct {
	newFn      func(Context) (T, error)
	allow      func(Context) bool
	actions    map[string]func(T, Vars) error
	module     string
	controller string
}

// Controller starts a controller definition for module and controller names.
// Names are matched case-insensitively.
func Controller[T any](module, controller string, newFn func(Context) (T, error)) *ControllerDef[T] {
	return &ControllerDef[T]{
		newFn:      newFn,
		actions:    make(map[string]func(T, Vars) error),
		module:     strings.ToLower(module),
		controller: strings.ToLower(controller),
	}
}

// Allow sets the capability check. Without one every request is allowed.
func (d *ControllerDef[T]) Allow(fn func(Context) bool) *ControllerDef[T] {
	d.allow = fn
	return d
}

// Action registers an action method.
func (d *ControllerDef[T]) Action(name string, fn func(T, Vars) error) *ControllerDef[T] {
	d.actions[strings.ToLower(name)] = fn
	return d
}

func (d *ControllerDef[T]) Module() string     { return d.module }
func (d *ControllerDef[T]) Controller() string { return d.controller }

func (d *ControllerDef[T]) Identifier() string {
	return capitalize(d.module) + "/" + capitalize(d.controller) + "Controller"
}

func (d *ControllerDef[T]) CanView(c Context) bool {
	if d.allow == nil {
		return true
	}
	return d.allow(c)
}

func (d *ControllerDef[T]) HasAction(action string) bool {
	_, ok := d.actions[strings.ToLower(action)]
	return ok
}

func (d *ControllerDef[T]) Invoke(c Context, action string, vars Vars) (err error) {
	fn, ok := d.actions[strings.ToLower(action)]
	if !ok {
		return fmt.Errorf("%w: %s::%s", ErrActionAbsent, d.Identifier(), action)
	}

	defer func() {
		if rec := recover(); rec != nil {
			err = &PanicError{Value: rec, Stack: debug.Stack()}
		}
	}()

	ctrl, err := d.newFn(c)
	if err != nil {
		return fmt.Errorf("%s: %w", d.Identifier(), err)
	}
	return fn(ctrl, vars)
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

// Registry maps module and controller names to definitions.
// It is read-only after construction and safe for concurrent use.
type Registry struct {
	defs map[string]Definition
}

// NewRegistry builds a registry. A later definition for the same
// module and controller replaces an earlier one.
func NewRegistry(defs ...Definition) *Registry {
	r := &Registry{defs: make(map[string]Definition, len(defs))}
	for _, d := range defs {
		r.defs[registryKey(d.Module(), d.Controller())] = d
	}
	return r
}

// Lookup returns the definition for module and controller.
func (r *Registry) Lookup(module, controller string) (Definition, bool) {
	d, ok := r.defs[registryKey(module, controller)]
	return d, ok
}

// Len returns the number of registered controllers.
func (r *Registry) Len() int { return len(r.defs) }

func registryKey(module, controller string) string {
	return strings.ToLower(module) + "/" + strings.ToLower(controller)
}
