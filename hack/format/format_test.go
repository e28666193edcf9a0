package format_test

import (
	"strings"
	"testing"

	"github.com/marcuscaisey/hackro/hack/ast"
	"github.com/marcuscaisey/hackro/hack/format"
	"github.com/marcuscaisey/hackro/hack/parser"
	"github.com/marcuscaisey/hackro/hack/token"
	"github.com/marcuscaisey/hackro/test/hacktest"
)

func TestNodeRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{
			name: "empty file",
			src:  "<?hh\n",
		},
		{
			name: "function declaration",
			src: `<?hh

async function f(inout int $a, readonly Foo $b, ?vec<int> $c = null, string ...$rest): readonly Foo {
    return $b;
}
`,
		},
		{
			name: "class declaration",
			src: `abstract class C extends B implements I, J {
    const int X = 1;
    private static ?Foo $foo = null;

    abstract public function a(): void;

    public readonly function b(): void {}
}
`,
		},
		{
			name: "control flow",
			src: `if ($a) {
    f();
} elseif ($b) {
    g();
} else if ($c) {
    h();
} else {
    i();
}
while ($a) {
    break;
}
do {
    continue;
} while ($b);
for ($i = 0, $j = 0; $i < 10; $i++) {}
foreach ($xs as $k => $v) {
    echo $k, $v;
}
try {
    throw new Exception('x');
} catch (Exception $e) {
    ;
} finally {
    f();
}
switch ($x) {
    case 1:
    case 2:
        f();
        break;
    default:
        g();
}
`,
		},
		{
			name: "blank lines between statements are kept",
			src: `$a = 1;

$b = 2;
$c = 3;
`,
		},
		{
			name: "collections",
			src: `$a = vec[1, 2];
$b = dict['a' => 1];
$c = keyset[];
$d = varray[1];
$e = darray[1 => 2];
$f = shape('x' => 1, 'y' => 2);
$g = tuple(1, 'a');
list($h, $_) = $g;
$i = Vector {1, 2};
$j = Map {'a' => 1};
$k = Pair {1, 2};
$l = Foo {1};
`,
		},
		{
			name: "operators",
			src: `$a = $b ?? $c ? $d : $e;
$f = $g ?: $h;
$i = !$j && -$k || ~$l;
$m .= 'a' . "b $n";
$o = $p |> f($$);
$q = $r is Foo;
$s = $t as Foo;
$u = $v ?as Foo;
$w = (int)$x;
$y = clone $z;
$aa = await $bb;
$cc = readonly $dd;
$ee = @f();
$ff--;
++$gg;
`,
		},
		{
			name: "member access",
			src: `$a->b?->c[0][]->d();
Foo::$bar;
Foo::BAR;
Foo::baz(inout $x, ...$rest);
$f = f<>;
$g = Foo::bar<>;
$h = fun('f');
$i = inst_meth($a, 'b');
$j = class_meth(Foo::class, 'b');
$k = meth_caller(Foo::class, 'b');
$l = E#A;
$m = #B;
$n = re"a+";
`,
		},
		{
			name: "anonymous functions",
			src: `$a = $x ==> $x + 1;
$b = async ($x, $y): int ==> {
    return $x;
};
$c = function($x) use ($y): int {
    return $x;
};
$d = () ==> yield 1 => 2;
`,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			program, err := parser.Parse(strings.NewReader(test.src), "test.hack")
			if err != nil {
				t.Fatalf("parsing source: %s", err)
			}
			got := format.Node(program)
			if got != test.src {
				t.Errorf("format.Node(parse(src)) != src:\n%s", hacktest.ComputeTextDiff(test.src, got))
			}
		})
	}
}

func TestNodeReadonlyWrapper(t *testing.T) {
	x := &ast.VarExpr{Name: token.Token{Type: token.Variable, Lexeme: "$x"}}
	call := &ast.CallExpr{
		Callee: &ast.IdentExpr{Name: token.Token{Type: token.Ident, Lexeme: "f"}},
		Args:   []ast.Expr{&ast.ReadonlyExpr{Expr: x}},
	}
	if got, want := format.Node(call), "f(readonly $x)"; got != want {
		t.Errorf("format.Node(call) = %q, want %q", got, want)
	}
}
