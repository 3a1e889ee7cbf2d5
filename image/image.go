// Package image serializes runtime data graphs to CBOR snapshots and back.
package image

import (
	"errors"
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"github.com/chazu/brim/vm"
)

// Version is the snapshot format version written by Encode.
const Version = 1

// ErrCyclic is returned when asked to encode a graph that contains a cycle.
var ErrCyclic = errors.New("image: cyclic data cannot be encoded")

// NodeKind identifies the heap variant a node rebuilds.
type NodeKind uint8

const (
	NodeSymbol NodeKind = iota + 1
	NodeString
	NodePair
	NodeVector
	NodeError
)

// Ref points at a node (1-based) or carries an immediate word when Node is
// zero.
type Ref struct {
	Node  int    `cbor:"n,omitempty"`
	Value uint64 `cbor:"v,omitempty"`
}

// Node is one heap block. Refs hold car/cdr for pairs, elements for
// vectors, and signal/payload for errors; they only point at earlier nodes.
type Node struct {
	Kind NodeKind `cbor:"k"`
	Text string   `cbor:"t,omitempty"`
	Refs []Ref    `cbor:"r,omitempty"`
}

// Image is a snapshot of the data reachable from one root. Shared
// substructure appears once.
type Image struct {
	Version int    `cbor:"version"`
	Nodes   []Node `cbor:"nodes"`
	Root    Ref    `cbor:"root"`
}

var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("image: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// Marshal serializes an Image to CBOR bytes.
func Marshal(img *Image) ([]byte, error) {
	return cborEncMode.Marshal(img)
}

// Unmarshal deserializes an Image from CBOR bytes.
func Unmarshal(data []byte) (*Image, error) {
	var img Image
	if err := cbor.Unmarshal(data, &img); err != nil {
		return nil, fmt.Errorf("image: unmarshal: %w", err)
	}
	return &img, nil
}

// Encode snapshots the graph reachable from root.
func Encode(rt *vm.Runtime, root vm.Object) ([]byte, error) {
	img, err := Capture(rt, root)
	if err != nil {
		return nil, err
	}
	return Marshal(img)
}

// Decode rebuilds a snapshot in rt and pushes its root onto the current
// frame.
func Decode(rt *vm.Runtime, data []byte) (vm.Object, error) {
	img, err := Unmarshal(data)
	if err != nil {
		return vm.Undefined, err
	}
	return Restore(rt, img)
}

// ---------------------------------------------------------------------------
// Capture
// ---------------------------------------------------------------------------

type visit struct {
	obj      vm.Object
	expanded bool
}

// Capture builds an Image of the graph reachable from root. Nodes are
// emitted children first, so every Ref points backwards.
func Capture(rt *vm.Runtime, root vm.Object) (*Image, error) {
	img := &Image{Version: Version}
	index := make(map[vm.Object]int)
	open := make(map[vm.Object]bool)

	ref := func(o vm.Object) Ref {
		if o.Immediate() {
			return Ref{Value: uint64(o)}
		}
		return Ref{Node: index[o]}
	}

	stack := []visit{{obj: root}}
	for len(stack) > 0 {
		v := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		o := v.obj
		if o.Immediate() {
			continue
		}
		if _, done := index[o]; done {
			continue
		}

		if !v.expanded {
			if open[o] {
				return nil, ErrCyclic
			}
			open[o] = true
			stack = append(stack, visit{obj: o, expanded: true})
			children := childrenOf(rt, o)
			for i := len(children) - 1; i >= 0; i-- {
				stack = append(stack, visit{obj: children[i]})
			}
			continue
		}

		node := Node{}
		switch rt.Type(o) {
		case vm.TypeSymbol:
			node.Kind, node.Text = NodeSymbol, rt.SymbolName(o)
		case vm.TypeString:
			node.Kind, node.Text = NodeString, rt.StringData(o)
		case vm.TypePair:
			node.Kind = NodePair
		case vm.TypeVector:
			node.Kind = NodeVector
		case vm.TypeError:
			node.Kind = NodeError
		}
		for _, child := range childrenOf(rt, o) {
			node.Refs = append(node.Refs, ref(child))
		}
		img.Nodes = append(img.Nodes, node)
		index[o] = len(img.Nodes)
		delete(open, o)
	}

	img.Root = ref(root)
	return img, nil
}

func childrenOf(rt *vm.Runtime, o vm.Object) []vm.Object {
	switch rt.Type(o) {
	case vm.TypePair:
		return []vm.Object{rt.Car(o), rt.Cdr(o)}
	case vm.TypeVector:
		return rt.Elements(o)
	case vm.TypeError:
		return []vm.Object{rt.Signal(o), rt.Payload(o)}
	}
	return nil
}

// ---------------------------------------------------------------------------
// Restore
// ---------------------------------------------------------------------------

// Restore rebuilds img in rt and pushes the root onto the current frame.
// Collection is inhibited while the nodes are unrooted.
func Restore(rt *vm.Runtime, img *Image) (vm.Object, error) {
	if img.Version != Version {
		return vm.Undefined, fmt.Errorf("image: unsupported version %d", img.Version)
	}

	rt.Inhibit()
	defer rt.Allow()

	objs := make([]vm.Object, len(img.Nodes))
	resolve := func(i int, r Ref) (vm.Object, error) {
		if r.Node == 0 {
			o := vm.Object(r.Value)
			if !o.Immediate() {
				return vm.Undefined, fmt.Errorf("image: node %d: immediate ref carries a heap word", i+1)
			}
			return o, nil
		}
		if r.Node < 0 || r.Node > i {
			return vm.Undefined, fmt.Errorf("image: node %d: ref %d is not an earlier node", i+1, r.Node)
		}
		return objs[r.Node-1], nil
	}

	for i, n := range img.Nodes {
		refs := make([]vm.Object, len(n.Refs))
		for j, r := range n.Refs {
			o, err := resolve(i, r)
			if err != nil {
				return vm.Undefined, err
			}
			refs[j] = o
		}

		switch n.Kind {
		case NodeSymbol:
			objs[i] = rt.Symbol(n.Text)
		case NodeString:
			objs[i] = rt.NewString(n.Text)
		case NodePair:
			if len(refs) != 2 {
				return vm.Undefined, fmt.Errorf("image: node %d: pair needs 2 refs, has %d", i+1, len(refs))
			}
			objs[i] = rt.NewPair(refs[0], refs[1])
		case NodeVector:
			objs[i] = rt.NewVector(refs)
		case NodeError:
			if len(refs) != 2 {
				return vm.Undefined, fmt.Errorf("image: node %d: error needs 2 refs, has %d", i+1, len(refs))
			}
			objs[i] = rt.NewError(refs[0], refs[1])
		default:
			return vm.Undefined, fmt.Errorf("image: node %d: unknown kind %d", i+1, n.Kind)
		}
	}

	root, err := resolve(len(img.Nodes), img.Root)
	if err != nil {
		return vm.Undefined, err
	}
	rt.Push(root)
	return root, nil
}
