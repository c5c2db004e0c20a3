package bootstrap

import (
	"errors"
	"fmt"
)

// Sentinel errors for bootstrap operations.
var (
	// ErrScriptLoad indicates a script failed to load or execute.
	// It is terminal for the sequence.
	ErrScriptLoad = errors.New("script load failed")

	// ErrStyleInject indicates a style reference could not be injected.
	ErrStyleInject = errors.New("style injection failed")

	// ErrIconInject indicates an icon reference could not be injected.
	ErrIconInject = errors.New("icon injection failed")

	// ErrEmptyPath indicates a manifest entry with an empty path.
	ErrEmptyPath = errors.New("resource path cannot be empty")

	// ErrObserverRegistered indicates a Completion already has its observer.
	ErrObserverRegistered = errors.New("completion observer already registered")

	// ErrNilObserver indicates OnComplete was called with a nil function.
	ErrNilObserver = errors.New("completion observer cannot be nil")

	// ErrObserverPanic indicates the completion observer panicked.
	// The sequence itself succeeded.
	ErrObserverPanic = errors.New("completion observer panicked")

	// ErrDuplicateScript indicates a script path listed more than once.
	ErrDuplicateScript = errors.New("duplicate script path")
)

// ScriptLoadError reports which script ended the sequence.
type ScriptLoadError struct {
	Index int    // position in the script list
	Path  string // script path as given
	Err   error  // cause reported by the runner
}

func (e *ScriptLoadError) Error() string {
	return fmt.Sprintf("%v: script %d %q: %v", ErrScriptLoad, e.Index, e.Path, e.Err)
}

// Unwrap returns the runner's error.
func (e *ScriptLoadError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrScriptLoad.
func (e *ScriptLoadError) Is(target error) bool {
	return target == ErrScriptLoad
}

// InjectError reports a style or icon that could not be injected.
type InjectError struct {
	Resource Resource
	Err      error
}

func (e *InjectError) Error() string {
	return fmt.Sprintf("%v: %q: %v", e.sentinel(), e.Resource.Path, e.Err)
}

// Unwrap returns the injector's error.
func (e *InjectError) Unwrap() error {
	return e.Err
}

// Is matches ErrStyleInject or ErrIconInject according to the resource kind.
func (e *InjectError) Is(target error) bool {
	return target == e.sentinel()
}

func (e *InjectError) sentinel() error {
	if e.Resource.Kind == KindIcon {
		return ErrIconInject
	}
	return ErrStyleInject
}
