package flake_test

import (
	"fmt"
	"time"

	"github.com/mantono/flakeid/pkg/flake"
)

func ExampleGenerator_TryNext() {
	clock := func() time.Time { return time.UnixMilli(1619047590079) }

	gen, err := flake.New(0x74d02b9ef426, flake.WithClock(clock))
	if err != nil {
		fmt.Println(err)
		return
	}

	a, _ := gen.TryNext()
	b, _ := gen.TryNext()
	fmt.Println(a)
	fmt.Println(a.Less(b), b.Sequence())
	// Output:
	// AAABePbBqL900Cue9CYAAA==
	// true 1
}

func ExampleParse() {
	id, err := flake.Parse("AAABePbBqL900Cue9CYAAA==")
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println(id.Timestamp(), id.Node(), id.Sequence())
	fmt.Printf("%x\n", id)
	// Output:
	// 1619047590079 128437433857062 0
	// 00000178f6c1a8bf74d02b9ef4260000
}
