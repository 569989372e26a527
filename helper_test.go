package bright_test

import (
	"fmt"
	"sync"

	"github.com/brightctl/bright"
)

// fakeMethod is an in-memory bright.Method for tests. Brightness state is
// kept per display so relative and fade operations behave realistically.
type fakeMethod struct {
	name    string
	enumErr error

	mu       sync.Mutex
	displays []fakeDisplay
	setCalls []setCall
}

type fakeDisplay struct {
	info       bright.DisplayInfo
	brightness int
	getErr     error
	setErr     error
}

type setCall struct {
	value   int
	display int
}

func newFakeMethod(name string, displays ...fakeDisplay) *fakeMethod {
	return &fakeMethod{name: name, displays: displays}
}

func (m *fakeMethod) Name() string { return m.name }

func (m *fakeMethod) GetDisplayInfo() ([]bright.DisplayInfo, error) {
	if m.enumErr != nil {
		return nil, m.enumErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	infos := make([]bright.DisplayInfo, len(m.displays))
	for i, d := range m.displays {
		infos[i] = d.info
	}
	return infos, nil
}

func (m *fakeMethod) GetBrightness(display int) ([]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if display == bright.AllDisplays {
		values := make([]int, 0, len(m.displays))
		for _, d := range m.displays {
			if d.getErr != nil {
				return nil, d.getErr
			}
			values = append(values, d.brightness)
		}
		return values, nil
	}

	if display < 0 || display >= len(m.displays) {
		return nil, fmt.Errorf("display index %d out of range", display)
	}
	if err := m.displays[display].getErr; err != nil {
		return nil, err
	}
	return []int{m.displays[display].brightness}, nil
}

func (m *fakeMethod) SetBrightness(value int, display int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.setCalls = append(m.setCalls, setCall{value: value, display: display})

	if display == bright.AllDisplays {
		for i := range m.displays {
			if err := m.displays[i].setErr; err != nil {
				return err
			}
			m.displays[i].brightness = value
		}
		return nil
	}

	if display < 0 || display >= len(m.displays) {
		return fmt.Errorf("display index %d out of range", display)
	}
	if err := m.displays[display].setErr; err != nil {
		return err
	}
	m.displays[display].brightness = value
	return nil
}

// calls returns a copy of the recorded set calls.
func (m *fakeMethod) calls() []setCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]setCall, len(m.setCalls))
	copy(out, m.setCalls)
	return out
}

// level returns the current brightness of the display at the given index.
func (m *fakeMethod) level(display int) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.displays[display].brightness
}

func display(name, serial, edid string, brightness int) fakeDisplay {
	return fakeDisplay{
		info:       bright.DisplayInfo{Name: name, Serial: serial, EDID: edid},
		brightness: brightness,
	}
}

func newController(cfg bright.Config, methods ...bright.Method) *bright.Controller {
	return bright.New(
		bright.NewMethodSet(methods...),
		bright.WithConfig(cfg),
		bright.WithLowerBound(1),
	)
}
