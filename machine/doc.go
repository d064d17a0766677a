// Package machine implements the loader and execution engine for a Minsky
// register machine.
//
// The machine has an unbounded number of registers holding unbounded
// natural numbers. Registers r0, r1, ... are the program registers;
// r-1, r-2, ... are scratch registers that never appear in the output.
//
// The instruction set is "inc r" and "decjz r label", plus the convenience
// instruction "many r...", which increments each listed register in turn.
// A "dec r" instruction is available for interactive use only. Jumping to
// HALT, or running past the last instruction, halts the machine.
//
// The assembler accepts an optional "registers n0 n1 ..." line with the
// initial values of r0, r1, ..., followed by instruction lines, each with an
// optional "label:" prefix. Lines starting with '#' are comments.
package machine
