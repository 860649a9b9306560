package variables

import (
	"github.com/sirupsen/logrus"

	"github.com/tinovyatkin/pinscan/internal/dockerfile"
)

// Resolver substitutes build variables into an instruction stream.
// The zero value is ready to use.
type Resolver struct {
	// BuildArgs override ARG values, like `docker build --build-arg`.
	// ENV definitions are never overridden.
	BuildArgs map[string]string
}

// Resolve is shorthand for a zero Resolver's Resolve.
func Resolve(insts []dockerfile.Instruction) []dockerfile.Instruction {
	var r Resolver
	return r.Resolve(insts)
}

// Resolve returns a copy of insts in which every argument, except those of
// ENV and ARG, has its variable references replaced by resolved values.
//
// RUN arguments are first given the values of variables assigned within
// the command itself, so a shell-local definition shadows an ENV or ARG of
// the same name. A RUN argument that is not valid shell skips that step.
func (r *Resolver) Resolve(insts []dockerfile.Instruction) []dockerfile.Instruction {
	ordered := r.Table(insts).ByNameLength()

	out := make([]dockerfile.Instruction, len(insts))
	copy(out, insts)

	for i := range out {
		inst := &out[i]
		if isDefinition(*inst) {
			continue
		}

		arg := inst.Argument
		if inst.Is("RUN") {
			locals, err := ShellLocals(arg)
			if err != nil {
				logrus.WithFields(logrus.Fields{
					"line":    inst.StartLine,
					"keyword": inst.Keyword,
				}).WithError(err).Warn("skipping shell-local variables")
			} else {
				arg = substitute(arg, locals.ByNameLength(), false)
			}
		}
		inst.Argument = substitute(arg, ordered, true)
	}
	return out
}

// Table builds the Dockerfile-level variable table from the ENV and ARG
// instructions of insts, in order.
func (r *Resolver) Table(insts []dockerfile.Instruction) *Table {
	table := NewTable()
	for _, inst := range insts {
		if !isDefinition(inst) {
			continue
		}

		fragment := ParseAssignments(inst.Argument)
		if inst.Is("ARG") {
			fragment = r.applyBuildArgs(inst.Argument, fragment)
		}
		if len(fragment) == 0 {
			continue
		}

		ResolveFragment(fragment, table)
		table.Merge(fragment)
	}
	return table
}

// applyBuildArgs overrides ARG values with build arguments. A bare
// `ARG NAME` becomes a definition when NAME was passed as a build argument.
func (r *Resolver) applyBuildArgs(argument string, fragment []Variable) []Variable {
	if len(r.BuildArgs) == 0 {
		return fragment
	}

	for i := range fragment {
		if v, ok := r.BuildArgs[fragment[i].Name]; ok {
			fragment[i].Value = v
		}
	}

	if fragment == nil {
		if fields := splitFields(argument); len(fields) == 1 {
			if v, ok := r.BuildArgs[fields[0]]; ok {
				fragment = []Variable{{Name: fields[0], Value: v}}
			}
		}
	}
	return fragment
}

// ResolveFragment substitutes the values of table into the values of
// fragment, in place, until a full pass makes no change. A substitution
// that the cycle guard rejects is skipped, leaving that reference
// unresolved.
func ResolveFragment(fragment []Variable, table *Table) {
	known := table.Variables()
	maxPasses := len(fragment) + len(known) + 1

	for range maxPasses {
		changed := false
		for i := range fragment {
			for _, v := range known {
				replacement := trimDoubleQuotes(v.Value)
				for _, ref := range referencesTo(v.Name) {
					if !ref.in(fragment[i].Value) || isCyclic(ref, v.Value) {
						continue
					}
					fragment[i].Value = ref.replace(fragment[i].Value, replacement)
					changed = true
				}
			}
		}
		if !changed {
			return
		}
	}
}

// substitute replaces $NAME and ${NAME} in s for each variable, in the
// given order.
func substitute(s string, vars []Variable, trimQuotes bool) string {
	for _, v := range vars {
		value := v.Value
		if trimQuotes {
			value = trimDoubleQuotes(value)
		}
		for _, ref := range referencesTo(v.Name) {
			s = ref.replace(s, value)
		}
	}
	return s
}

func isDefinition(inst dockerfile.Instruction) bool {
	return inst.Is("ENV") || inst.Is("ARG")
}
