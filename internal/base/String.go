package base

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode"
)

/***************************************
 * Join fmt.Stringer lazily
 ***************************************/

type jointStringer[T fmt.Stringer] struct {
	it    []T
	delim string
}

func (join jointStringer[T]) String() string {
	var notFirst bool
	sb := strings.Builder{}
	for _, x := range join.it {
		if notFirst {
			sb.WriteString(join.delim)
		}
		sb.WriteString(x.String())
		notFirst = true
	}
	return sb.String()
}

func Join[T fmt.Stringer](delim string, it ...T) fmt.Stringer {
	return jointStringer[T]{delim: delim, it: it}
}
func JoinString[T fmt.Stringer](delim string, it ...T) string {
	return Join(delim, it...).String()
}

func MakeString(x any) string {
	switch it := x.(type) {
	case string:
		return it
	case fmt.Stringer:
		return it.String()
	default:
		return fmt.Sprint(x)
	}
}

/***************************************
 * String helpers
 ***************************************/

var re_nonAlphaNumeric = regexp.MustCompile(`[^\w\d]+`)

func SanitizeIdentifier(in string) string {
	return re_nonAlphaNumeric.ReplaceAllString(in, "_")
}

// SplitList splits a ';' separated MSBuild list, dropping empty entries.
func SplitList(in string) (result []string) {
	for _, it := range strings.Split(in, ";") {
		if it = strings.TrimSpace(it); len(it) > 0 {
			result = append(result, it)
		}
	}
	return
}

// SplitCommandLine splits on white spaces, honoring double quotes.
func SplitCommandLine(in string) (result []string, err error) {
	var sb strings.Builder
	var quoted, pending bool
	for _, ch := range in {
		switch {
		case ch == '"':
			quoted = !quoted
			pending = true
		case unicode.IsSpace(ch) && !quoted:
			if pending {
				result = append(result, sb.String())
				sb.Reset()
				pending = false
			}
		default:
			sb.WriteRune(ch)
			pending = true
		}
	}
	if quoted {
		return nil, fmt.Errorf("unterminated quote in %q", in)
	}
	if pending {
		result = append(result, sb.String())
	}
	return
}

/***************************************
 * StringSet
 ***************************************/

type StringSet []string

func NewStringSet(x ...string) (result StringSet) {
	result = make(StringSet, 0, len(x))
	result.AppendUniq(x...)
	return
}

func (set StringSet) Len() int               { return len(set) }
func (set StringSet) At(i int) string        { return set[i] }
func (set StringSet) Slice() []string        { return set }
func (set StringSet) Join(sep string) string { return strings.Join(set, sep) }
func (set StringSet) String() string         { return set.Join(";") }

func (set StringSet) IndexOf(it string) (int, bool) {
	for i, x := range set {
		if x == it {
			return i, true
		}
	}
	return len(set), false
}
func (set StringSet) Contains(it ...string) bool {
	for _, x := range it {
		if _, ok := set.IndexOf(x); !ok {
			return false
		}
	}
	return true
}
func (set *StringSet) Append(it ...string) *StringSet {
	*set = append(*set, it...)
	return set
}
func (set *StringSet) AppendUniq(it ...string) *StringSet {
	for _, x := range it {
		if !set.Contains(x) {
			*set = append(*set, x)
		}
	}
	return set
}
func (set *StringSet) Remove(it ...string) (numRemoved int) {
	for _, x := range it {
		if i, ok := set.IndexOf(x); ok {
			*set = Delete(*set, i)
			numRemoved++
		}
	}
	return
}
func (set StringSet) Equals(other StringSet) bool {
	if len(set) != len(other) {
		return false
	}
	for i, x := range set {
		if other[i] != x {
			return false
		}
	}
	return true
}
func (set StringSet) Sort() {
	sort.Strings(set)
}
func (set *StringSet) Set(in string) error {
	*set = NewStringSet(SplitList(in)...)
	return nil
}
func (set StringSet) Type() string { return "StringSet" }
