package readonly_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/marcuscaisey/hackro/hack/readonly"
)

func TestContextLookupDefaultsToMutable(t *testing.T) {
	ctx := readonly.NewContext(readonly.Readonly, readonly.Readonly)
	if got := ctx.Lookup("$never_bound"); got != readonly.Mutable {
		t.Errorf("Lookup of unbound name = %s, want %s", got, readonly.Mutable)
	}
	ctx.Bind("$x", readonly.Readonly)
	if got := ctx.Lookup("$x"); got != readonly.Readonly {
		t.Errorf("Lookup of bound name = %s, want %s", got, readonly.Readonly)
	}
}

func TestEnvClone(t *testing.T) {
	env := readonly.Env{"$x": readonly.Readonly}
	clone := env.Clone()
	clone["$x"] = readonly.Mutable
	clone["$y"] = readonly.Readonly
	want := readonly.Env{"$x": readonly.Readonly}
	if diff := cmp.Diff(want, env); diff != "" {
		t.Errorf("modifying clone changed original (-want +got):\n%s", diff)
	}

	var nilEnv readonly.Env
	if nilEnv.Clone() == nil {
		t.Errorf("Clone of nil Env returned nil, want empty Env")
	}
}

var mergeTests = []struct {
	name string
	a, b readonly.Env
	want readonly.Env
}{
	{
		name: "both empty",
		a:    readonly.Env{},
		b:    readonly.Env{},
		want: readonly.Env{},
	},
	{
		name: "readonly wins over mutable",
		a:    readonly.Env{"$x": readonly.Readonly},
		b:    readonly.Env{"$x": readonly.Mutable},
		want: readonly.Env{"$x": readonly.Readonly},
	},
	{
		name: "readonly on one side only",
		a:    readonly.Env{"$x": readonly.Readonly},
		b:    readonly.Env{},
		want: readonly.Env{"$x": readonly.Readonly},
	},
	{
		name: "mutable on one side only",
		a:    readonly.Env{},
		b:    readonly.Env{"$x": readonly.Mutable},
		want: readonly.Env{"$x": readonly.Mutable},
	},
	{
		name: "disjoint names",
		a:    readonly.Env{"$x": readonly.Readonly, "$y": readonly.Mutable},
		b:    readonly.Env{"$z": readonly.Readonly},
		want: readonly.Env{"$x": readonly.Readonly, "$y": readonly.Mutable, "$z": readonly.Readonly},
	},
	{
		name: "mutable on both sides",
		a:    readonly.Env{"$x": readonly.Mutable},
		b:    readonly.Env{"$x": readonly.Mutable},
		want: readonly.Env{"$x": readonly.Mutable},
	},
}

func TestMerge(t *testing.T) {
	for _, test := range mergeTests {
		t.Run(test.name, func(t *testing.T) {
			got := readonly.Merge(test.a, test.b)
			if diff := cmp.Diff(test.want, got); diff != "" {
				t.Errorf("Merge(%v, %v) mismatch (-want +got):\n%s", test.a, test.b, diff)
			}
		})
	}
}

func TestMergeIsCommutative(t *testing.T) {
	for _, test := range mergeTests {
		t.Run(test.name, func(t *testing.T) {
			ab := readonly.Merge(test.a, test.b)
			ba := readonly.Merge(test.b, test.a)
			if diff := cmp.Diff(ab, ba); diff != "" {
				t.Errorf("Merge(a, b) != Merge(b, a) (-ab +ba):\n%s", diff)
			}
		})
	}
}

func TestMergeKeepsReadonly(t *testing.T) {
	for _, test := range mergeTests {
		t.Run(test.name, func(t *testing.T) {
			got := readonly.Merge(test.a, test.b)
			for _, env := range []readonly.Env{test.a, test.b} {
				for name, q := range env {
					if q == readonly.Readonly && got[name] != readonly.Readonly {
						t.Errorf("%s is readonly in an input but %s in the result", name, got[name])
					}
				}
			}
		})
	}
}

func TestMergeDoesNotModifyInputs(t *testing.T) {
	a := readonly.Env{"$x": readonly.Mutable}
	b := readonly.Env{"$x": readonly.Readonly, "$y": readonly.Mutable}
	readonly.Merge(a, b)
	if diff := cmp.Diff(readonly.Env{"$x": readonly.Mutable}, a); diff != "" {
		t.Errorf("Merge modified its first argument (-want +got):\n%s", diff)
	}
}
