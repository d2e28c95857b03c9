// Package cfg partitions a decoded instruction sequence into basic blocks
// and wires successor edges between them (spec §4.2).
package cfg

import (
	"sort"

	"jclift/internal/bytecode"
	"jclift/internal/classfile"
)

// Block is a maximal straight-line run of instructions ending at a
// branch, switch, return, throw, or immediately before any branch target.
type Block struct {
	Entry        int64
	Instructions bytecode.InstructionSequence
	Successors   []int64

	fallthrough_ int64 // next block's entry offset, or -1 if this is the last block
}

// Graph maps block-entry byte offset to Block. The entry block is
// offset 0. ExceptionEdges records the exception table's [start,end) to
// handler ranges as an open edge list a restructurer can consume later
// (spec §4.2 and §9: recorded, not acted on here).
type Graph struct {
	Blocks         map[int64]*Block
	Entry          int64
	ExceptionEdges []ExceptionEdge
}

// ExceptionEdge is one exception-table entry translated to CFG terms: an
// edge from every instruction offset in [Start, End) to the handler block.
type ExceptionEdge struct {
	Start, End int64
	Handler    int64
	CatchType  uint16
}

// Build partitions seq into basic blocks and wires successors, per
// spec §4.2's leader-collection algorithm.
func Build(seq bytecode.InstructionSequence, exceptions []classfile.ExceptionHandler) *Graph {
	leaders := collectLeaders(seq)
	blocks := partition(seq, leaders)

	g := &Graph{Blocks: make(map[int64]*Block, len(blocks)), Entry: 0}
	for _, b := range blocks {
		wireSuccessors(b)
		g.Blocks[b.Entry] = b
	}
	for _, eh := range exceptions {
		g.ExceptionEdges = append(g.ExceptionEdges, ExceptionEdge{
			Start:     int64(eh.StartPC),
			End:       int64(eh.EndPC),
			Handler:   int64(eh.HandlerPC),
			CatchType: eh.CatchType,
		})
	}
	return g
}

func collectLeaders(seq bytecode.InstructionSequence) map[int64]bool {
	leaders := map[int64]bool{0: true}
	for i, e := range seq {
		ins := e.Instr
		switch ins.Op {
		case bytecode.OpGoto, bytecode.OpJsr, bytecode.OpIfNull, bytecode.OpIfNonNull,
			bytecode.OpIfEq, bytecode.OpIfNe, bytecode.OpIfLt, bytecode.OpIfGe, bytecode.OpIfGt, bytecode.OpIfLe,
			bytecode.OpIfICmpEq, bytecode.OpIfICmpNe, bytecode.OpIfICmpLt, bytecode.OpIfICmpGe, bytecode.OpIfICmpGt, bytecode.OpIfICmpLe,
			bytecode.OpIfACmpEq, bytecode.OpIfACmpNe:
			leaders[ins.Target] = true
			if i+1 < len(seq) {
				leaders[seq[i+1].Offset] = true
			}
		case bytecode.OpTableSwitch:
			leaders[ins.SwitchDefault] = true
			for _, t := range ins.SwitchOffsets {
				leaders[t] = true
			}
			if i+1 < len(seq) {
				leaders[seq[i+1].Offset] = true
			}
		case bytecode.OpLookupSwitch:
			leaders[ins.SwitchDefault] = true
			for _, c := range ins.LookupCases {
				leaders[c.Target] = true
			}
			if i+1 < len(seq) {
				leaders[seq[i+1].Offset] = true
			}
		case bytecode.OpIReturn, bytecode.OpLReturn, bytecode.OpFReturn, bytecode.OpDReturn,
			bytecode.OpAReturn, bytecode.OpReturn, bytecode.OpAThrow:
			if i+1 < len(seq) {
				leaders[seq[i+1].Offset] = true
			}
		}
	}
	return leaders
}

func partition(seq bytecode.InstructionSequence, leaders map[int64]bool) []*Block {
	offsets := make([]int64, 0, len(leaders))
	for off := range leaders {
		offsets = append(offsets, off)
	}
	sort.Slice(offsets, func(i, j int) bool { return offsets[i] < offsets[j] })

	var blocks []*Block
	idx := 0
	for _, leaderOff := range offsets {
		for idx < len(seq) && seq[idx].Offset < leaderOff {
			idx++
		}
		start := idx
		end := idx
		for end < len(seq) {
			if end > start && leaders[seq[end].Offset] {
				break
			}
			end++
		}
		if start >= len(seq) {
			continue
		}
		next := int64(-1)
		if end < len(seq) {
			next = seq[end].Offset
		}
		blocks = append(blocks, &Block{Entry: seq[start].Offset, Instructions: seq[start:end], fallthrough_: next})
		idx = end
	}
	return blocks
}

func wireSuccessors(b *Block) {
	if len(b.Instructions) == 0 {
		return
	}
	last := b.Instructions[len(b.Instructions)-1]
	ins := last.Instr
	switch ins.Op {
	case bytecode.OpIfEq, bytecode.OpIfNe, bytecode.OpIfLt, bytecode.OpIfGe, bytecode.OpIfGt, bytecode.OpIfLe,
		bytecode.OpIfICmpEq, bytecode.OpIfICmpNe, bytecode.OpIfICmpLt, bytecode.OpIfICmpGe, bytecode.OpIfICmpGt, bytecode.OpIfICmpLe,
		bytecode.OpIfACmpEq, bytecode.OpIfACmpNe, bytecode.OpIfNull, bytecode.OpIfNonNull:
		// true-branch before fallthrough, per spec §4.2's stated ordering.
		b.Successors = []int64{ins.Target, b.fallthrough_}
	case bytecode.OpGoto, bytecode.OpJsr:
		b.Successors = []int64{ins.Target}
	case bytecode.OpTableSwitch:
		succ := []int64{ins.SwitchDefault}
		succ = append(succ, ins.SwitchOffsets...)
		b.Successors = succ
	case bytecode.OpLookupSwitch:
		succ := []int64{ins.SwitchDefault}
		for _, c := range ins.LookupCases {
			succ = append(succ, c.Target)
		}
		b.Successors = succ
	case bytecode.OpIReturn, bytecode.OpLReturn, bytecode.OpFReturn, bytecode.OpDReturn,
		bytecode.OpAReturn, bytecode.OpReturn, bytecode.OpAThrow:
		b.Successors = nil
	default:
		if b.fallthrough_ >= 0 {
			b.Successors = []int64{b.fallthrough_}
		}
	}
}
