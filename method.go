package bright

import (
	"fmt"
	"sort"
	"strings"
)

//go:generate mockgen -source=method.go -destination=mocks/method_mock.go -package=mocks

// AllDisplays addresses every display a method can enumerate. Passing it to
// GetBrightness or SetBrightness applies the operation to each display in
// enumeration order.
const AllDisplays = -1

// Method is the capability contract every brightness backend implements.
//
// Implementations must keep the enumeration order stable between repeated
// GetDisplayInfo calls within a single enumeration pass, so that the
// MethodIndex recorded in a DisplayInfo remains addressable for the lifetime
// of a registry snapshot.
type Method interface {
	// Name returns the lowercase registry name of the method, e.g. "sysfs".
	Name() string

	// GetDisplayInfo enumerates all displays this method can address. It
	// must not change any brightness state. If the underlying mechanism
	// (driver, bus, executable) is absent, implementations return an error
	// wrapping ErrBackendUnavailable; this is recoverable and only removes
	// the method from the current snapshot.
	GetDisplayInfo() ([]DisplayInfo, error)

	// GetBrightness returns the brightness percentage of the display with
	// the given method-local index, or of every display in enumeration
	// order when passed AllDisplays. Values are integers in [0, 100].
	GetBrightness(display int) ([]int, error)

	// SetBrightness sets the brightness of the display with the given
	// method-local index (or all displays for AllDisplays) to a percentage
	// in [0, 100].
	SetBrightness(value int, display int) error
}

// MethodSet is an ordered, immutable-by-convention registry of brightness
// methods. A Controller is constructed with one MethodSet; tests substitute
// an entire set rather than mutating a shared one, so there is no global
// mutable registry to leak state between callers.
type MethodSet struct {
	order   []string
	methods map[string]Method
}

// NewMethodSet builds a registry from the given methods, preserving their
// order. Registration order decides enumeration and deduplication priority:
// when two methods report the same physical display, the earlier one wins.
func NewMethodSet(methods ...Method) *MethodSet {
	s := &MethodSet{methods: make(map[string]Method)}
	for _, m := range methods {
		s.Register(m)
	}
	return s
}

// Register appends a method to the set under its lowercased name. A method
// with a duplicate name replaces the earlier entry in place.
func (s *MethodSet) Register(m Method) {
	name := strings.ToLower(m.Name())
	if _, exists := s.methods[name]; !exists {
		s.order = append(s.order, name)
	}
	s.methods[name] = m
}

// Get returns the method registered under the given name. The lookup is
// case-insensitive.
func (s *MethodSet) Get(name string) (Method, error) {
	m, ok := s.methods[strings.ToLower(name)]
	if !ok {
		names := s.Names()
		sort.Strings(names)
		return nil, fmt.Errorf("invalid method %q, must be one of %v", name, names)
	}
	return m, nil
}

// Names returns the registered method names in registration order.
func (s *MethodSet) Names() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Methods returns the registered methods in registration order.
func (s *MethodSet) Methods() []Method {
	out := make([]Method, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, s.methods[name])
	}
	return out
}

// Len returns the number of registered methods.
func (s *MethodSet) Len() int {
	return len(s.order)
}

// filtered returns the subset of methods to enumerate for the given filter.
// An empty filter selects every method.
func (s *MethodSet) filtered(name string) ([]Method, error) {
	if name == "" {
		return s.Methods(), nil
	}
	m, err := s.Get(name)
	if err != nil {
		return nil, err
	}
	return []Method{m}, nil
}
