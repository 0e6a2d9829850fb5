// Package packet decodes BITS transmissions into an immutable packet tree.
//
// Wire layout, in bits, MSB first:
//
//	header    version:3 type:3
//	literal   (type 4)  groups of cont:1 nibble:4, last group has cont=0
//	operator  (type !4) mode:1, then
//	          mode 0: total_bits:15 followed by children totalling total_bits
//	          mode 1: count:11 followed by exactly count children
//
// Decoding is a recursive descent from offset 0. Any violation aborts the
// whole decode; there is no partial result.
package packet
