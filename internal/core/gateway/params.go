// Package gateway implements the signed request / notification protocol shared by
// query-string style payment providers: the parameter set, the signer, the request
// builder and the notification verifier.
package gateway

import (
	"net/url"
	"sort"
	"strings"

	"golang.org/x/text/encoding"
)

// Channel records how a parameter arrived.
type Channel int

const (
	ChannelGet Channel = iota
	ChannelPost
)

func (c Channel) String() string {
	if c == ChannelPost {
		return "POST"
	}
	return "GET"
}

// Parameter is a single named field of a request or notification.
type Parameter struct {
	Name    string
	Value   string
	Channel Channel
}

// ParameterSet holds the fields of one outbound request or inbound notification.
// Names are unique. The zero value is an empty set ready to use.
// A ParameterSet belongs to a single operation and is not safe for concurrent use.
type ParameterSet struct {
	params []Parameter
	index  map[string]int
}

// NewParameterSet creates an empty parameter set.
func NewParameterSet() *ParameterSet {
	return &ParameterSet{index: make(map[string]int)}
}

// ParameterSetFrom loads form or query values into a new set.
// Only the first value of a repeated name is kept.
func ParameterSetFrom(values url.Values, ch Channel) *ParameterSet {
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)

	set := NewParameterSet()
	for _, name := range names {
		if v := values[name]; len(v) > 0 {
			set.Set(name, v[0], ch)
		}
	}
	return set
}

const replacementChar = "\uFFFD"

// DecodeValues converts values received in the provider's text encoding to
// UTF-8. A value enc cannot decode is kept byte for byte, so it fails the
// signature check instead of being silently altered. Decoders substitute
// U+FFFD for invalid input rather than failing, so a replacement character
// that was not in the input marks the value as undecodable.
func DecodeValues(values url.Values, enc encoding.Encoding) url.Values {
	if enc == nil {
		return values
	}
	out := make(url.Values, len(values))
	for name, vs := range values {
		decoded := make([]string, len(vs))
		for i, v := range vs {
			s, err := enc.NewDecoder().String(v)
			if err != nil || (strings.Contains(s, replacementChar) && !strings.Contains(v, replacementChar)) {
				s = v
			}
			decoded[i] = s
		}
		out[name] = decoded
	}
	return out
}

// Set upserts a parameter. An existing parameter keeps its position.
func (s *ParameterSet) Set(name, value string, ch Channel) {
	if s.index == nil {
		s.index = make(map[string]int)
	}
	if i, ok := s.index[name]; ok {
		s.params[i] = Parameter{Name: name, Value: value, Channel: ch}
		return
	}
	s.index[name] = len(s.params)
	s.params = append(s.params, Parameter{Name: name, Value: value, Channel: ch})
}

// Get returns the value of name and whether it is present.
func (s *ParameterSet) Get(name string) (string, bool) {
	i, ok := s.index[name]
	if !ok {
		return "", false
	}
	return s.params[i].Value, true
}

// Value returns the value of name, or "" when absent.
func (s *ParameterSet) Value(name string) string {
	v, _ := s.Get(name)
	return v
}

// Len returns the number of parameters.
func (s *ParameterSet) Len() int {
	return len(s.params)
}

// All returns a copy of the parameters in insertion order.
func (s *ParameterSet) All() []Parameter {
	out := make([]Parameter, len(s.params))
	copy(out, s.params)
	return out
}

// Sorted returns a copy of the parameters ordered by name, byte-wise.
func (s *ParameterSet) Sorted() []Parameter {
	out := s.All()
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Clear removes every parameter.
func (s *ParameterSet) Clear() {
	s.params = nil
	s.index = make(map[string]int)
}

// Snapshot is a detached copy of a parameter set.
type Snapshot struct {
	params []Parameter
}

// Snapshot captures the current parameters for a later Restore.
func (s *ParameterSet) Snapshot() Snapshot {
	return Snapshot{params: s.All()}
}

// Restore replaces the current parameters with the snapshot, channels included.
func (s *ParameterSet) Restore(snap Snapshot) {
	s.Clear()
	for _, p := range snap.params {
		s.Set(p.Name, p.Value, p.Channel)
	}
}
