// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed as part of the siltc project.

package ir

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/silt-lang/siltc/internal/diag"
)

// Package ir's mangling scheme (spec §6) is bit-exact and therefore
// cannot reach for golang.org/x/text/encoding or any other general
// Unicode library: it needs the one specific Bootstring variant
// (RFC 3492 "Punycode", ACE-less — no xn-- prefix, since the prefix
// belongs to DNS labels, not LLVM globals) the spec names, byte-for-byte.
// No example in the retrieval pack wires a punycode codec, so this file
// is the one place in the module that implements an algorithm from
// scratch against a standard rather than adapting a dependency; see
// DESIGN.md's ledger entry for internal/ir/mangle.go.

const (
	punyBase        = 36
	punyTMin        = 1
	punyTMax        = 26
	punySkew        = 38
	punyDamp        = 700
	punyInitialBias = 72
	punyInitialN    = 128
)

func punyAdapt(delta, numPoints int, firstTime bool) int {
	if firstTime {
		delta /= punyDamp
	} else {
		delta /= 2
	}
	delta += delta / numPoints
	k := 0
	for delta > ((punyBase-punyTMin)*punyTMax)/2 {
		delta /= punyBase - punyTMin
		k += punyBase
	}
	return k + (punyBase-punyTMin+1)*delta/(delta+punySkew)
}

func punyDigitToChar(d int) byte {
	switch {
	case d < 26:
		return byte('a' + d)
	default:
		return byte('0' + d - 26)
	}
}

func punyCharToDigit(c byte) (int, bool) {
	switch {
	case c >= 'a' && c <= 'z':
		return int(c - 'a'), true
	case c >= 'A' && c <= 'Z':
		return int(c - 'A'), true
	case c >= '0' && c <= '9':
		return int(c-'0') + 26, true
	default:
		return 0, false
	}
}

// punyEncode implements RFC 3492's encoding procedure, producing the
// bare ASCII Bootstring (no "xn--" ACE prefix; spec §6 mangles straight
// into LLVM global names, not DNS labels).
func punyEncode(s string) string {
	input := []rune(s)
	var out strings.Builder

	var basic []rune
	for _, r := range input {
		if r < 0x80 {
			basic = append(basic, r)
		}
	}
	b := len(basic)
	for _, r := range basic {
		out.WriteRune(r)
	}
	if b > 0 {
		out.WriteByte('-')
	}

	n := punyInitialN
	delta := 0
	bias := punyInitialBias
	h := b

	for h < len(input) {
		m := int(^uint(0) >> 1) // max int
		for _, r := range input {
			if int(r) >= n && int(r) < m {
				m = int(r)
			}
		}
		delta += (m - n) * (h + 1)
		n = m
		for _, r := range input {
			if int(r) < n {
				delta++
			}
			if int(r) == n {
				q := delta
				for k := punyBase; ; k += punyBase {
					var t int
					switch {
					case k <= bias+punyTMin:
						t = punyTMin
					case k >= bias+punyTMax:
						t = punyTMax
					default:
						t = k - bias
					}
					if q < t {
						break
					}
					out.WriteByte(punyDigitToChar(t + (q-t)%(punyBase-t)))
					q = (q - t) / (punyBase - t)
				}
				out.WriteByte(punyDigitToChar(q))
				bias = punyAdapt(delta, h+1, h == b)
				delta = 0
				h++
			}
		}
		delta++
		n++
	}
	return out.String()
}

// punyDecode implements RFC 3492's decoding procedure, the inverse of
// punyEncode.
func punyDecode(s string) (string, error) {
	var basic []rune
	rest := s
	if idx := strings.LastIndexByte(s, '-'); idx >= 0 {
		for i := 0; i < idx; i++ {
			basic = append(basic, rune(s[i]))
		}
		rest = s[idx+1:]
	} else {
		rest = s
	}

	out := append([]rune{}, basic...)
	n := punyInitialN
	i := 0
	bias := punyInitialBias

	pos := 0
	for pos < len(rest) {
		oldi := i
		w := 1
		for k := punyBase; ; k += punyBase {
			if pos >= len(rest) {
				return "", diag.IllFormedInput(diag.Span{}, "punycode: truncated input")
			}
			digit, ok := punyCharToDigit(rest[pos])
			if !ok {
				return "", diag.IllFormedInput(diag.Span{}, "punycode: invalid digit %q", rest[pos])
			}
			pos++
			i += digit * w
			var t int
			switch {
			case k <= bias+punyTMin:
				t = punyTMin
			case k >= bias+punyTMax:
				t = punyTMax
			default:
				t = k - bias
			}
			if digit < t {
				break
			}
			w *= punyBase - t
		}
		bias = punyAdapt(i-oldi, len(out)+1, oldi == 0)
		n += i / (len(out) + 1)
		i = i % (len(out) + 1)
		r := rune(n)
		out = append(out, 0)
		copy(out[i+1:], out[i:])
		out[i] = r
		i++
	}
	return string(out), nil
}

// mangleIdentifier renders s as spec §6's byte-length-prefixed
// identifier: "<utf8-byte-length><identifier>" for ASCII identifiers,
// or "X<punycode-byte-length><punycode>" otherwise.
func mangleIdentifier(s string) string {
	if isASCII(s) {
		return strconv.Itoa(len(s)) + s
	}
	enc := punyEncode(s)
	return "X" + strconv.Itoa(len(enc)) + enc
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}

// demangleIdentifier parses one byte-length-prefixed identifier off the
// front of mangled, returning the decoded identifier and the unconsumed
// remainder.
func demangleIdentifier(mangled string) (ident string, rest string, err error) {
	punycoded := false
	if strings.HasPrefix(mangled, "X") {
		punycoded = true
		mangled = mangled[1:]
	}
	i := 0
	for i < len(mangled) && mangled[i] >= '0' && mangled[i] <= '9' {
		i++
	}
	if i == 0 {
		return "", "", diag.IllFormedInput(diag.Span{}, "mangle: expected length prefix in %q", mangled)
	}
	n, convErr := strconv.Atoi(mangled[:i])
	if convErr != nil {
		return "", "", diag.IllFormedInput(diag.Span{}, "mangle: bad length prefix %q", mangled[:i])
	}
	if i+n > len(mangled) {
		return "", "", diag.IllFormedInput(diag.Span{}, "mangle: truncated identifier, want %d bytes", n)
	}
	payload := mangled[i : i+n]
	rest = mangled[i+n:]
	if !punycoded {
		return payload, rest, nil
	}
	decoded, decErr := punyDecode(payload)
	if decErr != nil {
		return "", "", decErr
	}
	return decoded, rest, nil
}

// MangleDataType renders name as a top-level data-type global name.
func MangleDataType(name string) string { return "_SD" + mangleIdentifier(name) }

// MangleRecordType renders name as a top-level record-type global name.
func MangleRecordType(name string) string { return "_SR" + mangleIdentifier(name) }

// MangleContinuation renders name as a top-level continuation global
// name.
func MangleContinuation(name string) string { return "_SC" + mangleIdentifier(name) }

// MangleModule renders name as a module-level global name prefix.
func MangleModule(name string) string { return "_S" + mangleIdentifier(name) }

// MangleTypeMetadata renders name's type-metadata global name (spec §6:
// "N" suffix marks a type-metadata record).
func MangleTypeMetadata(name string) string { return "_SD" + mangleIdentifier(name) + "N" }

// demangleKind identifies which of Data/Record/Continuation/plain-module
// a mangled top-level name denotes.
type demangleKind byte

const (
	DemangleData demangleKind = 'D'
	DemangleRecord demangleKind = 'R'
	DemangleContinuation demangleKind = 'C'
	DemangleModule demangleKind = 0
)

// Demangle reverses Mangle{DataType,RecordType,Continuation,Module}: it
// strips the "_S" prefix, reads the optional D/R/C kind tag, and
// demangles the trailing identifier. A trailing "N" type-metadata marker
// is accepted and dropped, so a MangleTypeMetadata name demangles to its
// bare data-type identifier; the marker's presence is not reported.
func Demangle(mangled string) (demangleKind, string, error) {
	if !strings.HasPrefix(mangled, "_S") {
		return 0, "", diag.IllFormedInput(diag.Span{}, "mangle: missing _S prefix in %q", mangled)
	}
	rest := mangled[2:]
	kind := DemangleModule
	if len(rest) > 0 {
		switch rest[0] {
		case 'D', 'R', 'C':
			kind = demangleKind(rest[0])
			rest = rest[1:]
		}
	}
	ident, remainder, err := demangleIdentifier(rest)
	if err != nil {
		return 0, "", err
	}
	if remainder != "" && remainder != "N" {
		return 0, "", diag.IllFormedInput(diag.Span{}, "mangle: trailing garbage %q after identifier", remainder)
	}
	return kind, ident, nil
}
