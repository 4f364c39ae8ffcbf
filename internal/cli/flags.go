package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/aidanlsb/roadmap/internal/config"
	"github.com/aidanlsb/roadmap/internal/roadmap"
)

// enumValue is a pflag.Value restricted to one of the roadmap vocabularies.
type enumValue[T ~string] struct {
	target   *T
	typ      string
	parse    func(string) (T, error)
	optional bool
}

var (
	_ pflag.Value = (*enumValue[roadmap.Kind])(nil)
	_ pflag.Value = (*enumValue[string])(nil)
)

func newEnumValue[T ~string](target *T, def T, typ string, parse func(string) (T, error)) *enumValue[T] {
	*target = def
	return &enumValue[T]{target: target, typ: typ, parse: parse}
}

// newOptionalEnumValue accepts the empty string, meaning "not set".
func newOptionalEnumValue[T ~string](target *T, typ string, parse func(string) (T, error)) *enumValue[T] {
	v := newEnumValue(target, "", typ, parse)
	v.optional = true
	return v
}

func (e *enumValue[T]) String() string { return string(*e.target) }

func (e *enumValue[T]) Type() string { return e.typ }

func (e *enumValue[T]) Set(s string) error {
	if e.optional && strings.TrimSpace(s) == "" {
		*e.target = ""
		return nil
	}
	v, err := e.parse(s)
	if err != nil {
		return err
	}
	*e.target = v
	return nil
}

func parseBackend(s string) (string, error) {
	switch v := strings.ToLower(strings.TrimSpace(s)); v {
	case config.BackendGitHub, config.BackendMemory:
		return v, nil
	default:
		return "", fmt.Errorf("unknown board %q (valid: %s, %s)", s, config.BackendGitHub, config.BackendMemory)
	}
}

// completeValues offers a fixed vocabulary for flag completion.
func completeValues[T ~string](values []T) func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = string(v)
	}
	return func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return out, cobra.ShellCompDirectiveNoFileComp
	}
}
