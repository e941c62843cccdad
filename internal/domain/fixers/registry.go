package fixers

import (
	"fmt"

	"github.com/mouse-blink/py3ify/internal/fixer"
)

// All returns every shipped fixer in registration order.
func All() []fixer.Fixer {
	return []fixer.Fixer{
		Print(),
		Exec(),
		Repr(),
		Ne(),
		NumLiterals(),
		Except(),
		Raise(),
		HasKey(),
		Dict(),
		Apply(),
		XRange(),
		RawInput(),
		Getcwdu(),
		Unicode(),
		Basestring(),
		Long(),
		StandardError(),
		FuncAttrs(),
		MethodAttrs(),
		IsInstance(),
	}
}

// Default registers All into a new registry and seals it.
func Default(opts ...fixer.Option) (*fixer.Registry, error) {
	r := fixer.NewRegistry(opts...)

	for _, f := range All() {
		if err := r.Register(f); err != nil {
			return nil, fmt.Errorf("register fixers: %w", err)
		}
	}

	if err := r.Seal(); err != nil {
		return nil, fmt.Errorf("seal fixers: %w", err)
	}

	return r, nil
}
