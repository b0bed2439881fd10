package sidecar

import (
	"encoding/json"
	"reflect"
	"testing"

	"peek-and-poke/sidecar/internal/queue"
	"peek-and-poke/sidecar/internal/simstore"
	"peek-and-poke/sidecar/internal/wire"
)

type vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type score struct {
	Value int `json:"value"`
}

func newBuildContext(host Host) *buildContext {
	out := queue.New[wire.Blob]()
	return &buildContext{
		host:        host,
		conn:        newConnection(out, nil),
		componentIn: make(map[string]*queue.Queue[componentRequest]),
		resourceIn:  make(map[string]*queue.Queue[json.RawMessage]),
	}
}

func TestTypeSetPreservesDeclarationOrder(t *testing.T) {
	store := simstore.NewStore()
	positions := simstore.NewTable[vec2](store)
	velocities := simstore.NewTable[vec2](store)
	scores := simstore.NewBox[score]()

	set := SyncComponent[vec2](EmptySet(), "Position", positions)
	set = ReadComponent[vec2](set, "Velocity", velocities)
	set = SyncResource[score](set, "Score", scores)

	want := []string{"Position", "Velocity", "Score"}
	if got := set.Names(); !reflect.DeepEqual(got, want) {
		t.Fatalf("expected names %v, got %v", want, got)
	}

	readers, writers, err := set.materialize(newBuildContext(store))
	if err != nil {
		t.Fatalf("materialize failed: %v", err)
	}
	if len(readers) != 3 {
		t.Fatalf("expected 3 read stages, got %d", len(readers))
	}
	if readers[0].name() != "Position" || readers[1].name() != "Velocity" || readers[2].name() != "Score" {
		t.Fatalf("read stage order does not match declaration order: %s %s %s",
			readers[0].name(), readers[1].name(), readers[2].name())
	}
	if len(writers) != 2 {
		t.Fatalf("expected 2 write stages, got %d", len(writers))
	}
	if writers[0].name() != "Position" || writers[1].name() != "Score" {
		t.Fatalf("write stage order does not match declaration order: %s %s",
			writers[0].name(), writers[1].name())
	}
}

func TestTypeSetJoinConcatenates(t *testing.T) {
	store := simstore.NewStore()
	left := ReadComponent[vec2](EmptySet(), "A", simstore.NewTable[vec2](store))
	left = ReadComponent[vec2](left, "B", simstore.NewTable[vec2](store))
	right := ReadComponent[vec2](EmptySet(), "C", simstore.NewTable[vec2](store))

	joined := left.Join(right)
	if got := joined.Names(); !reflect.DeepEqual(got, []string{"A", "B", "C"}) {
		t.Fatalf("unexpected join order: %v", got)
	}
	// The inputs are values and must be unaffected.
	if left.Len() != 2 || right.Len() != 1 {
		t.Fatalf("join mutated its inputs: left=%d right=%d", left.Len(), right.Len())
	}
}

func TestTypeSetAppendDoesNotMutateOriginal(t *testing.T) {
	store := simstore.NewStore()
	base := ReadComponent[vec2](EmptySet(), "A", simstore.NewTable[vec2](store))
	withB := ReadComponent[vec2](base, "B", simstore.NewTable[vec2](store))
	withC := ReadComponent[vec2](base, "C", simstore.NewTable[vec2](store))

	if base.Len() != 1 {
		t.Fatalf("append mutated the base set: %v", base.Names())
	}
	if !reflect.DeepEqual(withB.Names(), []string{"A", "B"}) {
		t.Fatalf("unexpected names: %v", withB.Names())
	}
	if !reflect.DeepEqual(withC.Names(), []string{"A", "C"}) {
		t.Fatalf("unexpected names: %v", withC.Names())
	}
}

func TestTypeSetRejectsDuplicateNames(t *testing.T) {
	store := simstore.NewStore()

	dupRead := ReadComponent[vec2](EmptySet(), "Position", simstore.NewTable[vec2](store))
	dupRead = ReadComponent[vec2](dupRead, "Position", simstore.NewTable[vec2](store))
	if _, _, err := dupRead.materialize(newBuildContext(store)); err == nil {
		t.Fatalf("expected duplicate read registration to fail")
	}

	dupWrite := WriteComponent[vec2](EmptySet(), "Position", simstore.NewTable[vec2](store))
	dupWrite = SyncComponent[vec2](dupWrite, "Position", simstore.NewTable[vec2](store))
	if _, _, err := dupWrite.materialize(newBuildContext(store)); err == nil {
		t.Fatalf("expected duplicate write registration to fail")
	}

	// Read-only plus write-only under one name is a valid split registration.
	split := ReadComponent[vec2](EmptySet(), "Position", simstore.NewTable[vec2](store))
	split = WriteComponent[vec2](split, "Position", simstore.NewTable[vec2](store))
	if _, _, err := split.materialize(newBuildContext(store)); err != nil {
		t.Fatalf("split registration should be allowed: %v", err)
	}

	// Component and resource names live in separate namespaces.
	mixed := ReadComponent[score](EmptySet(), "Score", simstore.NewTable[score](store))
	mixed = ReadResource[score](mixed, "Score", simstore.NewBox[score]())
	if _, _, err := mixed.materialize(newBuildContext(store)); err != nil {
		t.Fatalf("component/resource name overlap should be allowed: %v", err)
	}
}

func TestTypeSetRejectsEmptyName(t *testing.T) {
	store := simstore.NewStore()
	set := ReadComponent[vec2](EmptySet(), "", simstore.NewTable[vec2](store))
	if _, _, err := set.materialize(newBuildContext(store)); err == nil {
		t.Fatalf("expected empty name to fail validation")
	}
}

func TestMaterializeRegistersWriterChannelsByName(t *testing.T) {
	store := simstore.NewStore()
	set := SyncComponent[vec2](EmptySet(), "Position", simstore.NewTable[vec2](store))
	set = WriteResource[score](set, "Score", simstore.NewBox[score]())

	b := newBuildContext(store)
	if _, _, err := set.materialize(b); err != nil {
		t.Fatalf("materialize failed: %v", err)
	}
	if _, ok := b.componentIn["Position"]; !ok {
		t.Fatalf("expected component channel for Position")
	}
	if _, ok := b.resourceIn["Score"]; !ok {
		t.Fatalf("expected resource channel for Score")
	}
	if len(b.componentIn) != 1 || len(b.resourceIn) != 1 {
		t.Fatalf("unexpected channel counts: %d components, %d resources",
			len(b.componentIn), len(b.resourceIn))
	}
}
