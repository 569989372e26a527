package bright

import (
	"context"
	"fmt"
)

// Display is a convenience handle bound to one resolved display for repeated
// operations. Each operation re-resolves the display by its most stable
// identifier (EDID, then serial, then name, then snapshot index) scoped to
// the owning method, so the handle stays correct even when the registry's
// absolute ordering shifts between enumeration passes.
type Display struct {
	info DisplayInfo
	ctrl *Controller
}

// Display resolves an identifier to exactly one display and returns a handle
// bound to it. Identifiers matching several displays are rejected; use the
// batch operations for plural targets.
func (c *Controller) Display(id Identifier) (*Display, error) {
	records, err := c.Resolve(id, "")
	if err != nil {
		return nil, err
	}
	if len(records) > 1 {
		return nil, fmt.Errorf("identifier %v matches %d displays, expected exactly one", id, len(records))
	}
	return &Display{info: records[0], ctrl: c}, nil
}

// Info returns the display record the handle was bound to.
func (d *Display) Info() DisplayInfo {
	return d.info
}

// target returns the identifier and method filter for re-resolving the bound
// display. The index fallback counts positions in the unfiltered snapshot, so
// the method filter must not narrow the listing it resolves against.
func (d *Display) target() (Identifier, string) {
	id := d.info.StableIdentifier()
	if _, ok := id.(Index); ok {
		return id, ""
	}
	return id, d.info.Method.Name()
}

// GetBrightness returns this display's current brightness percentage.
func (d *Display) GetBrightness() (int, error) {
	id, method := d.target()
	readings, err := d.ctrl.GetBrightness(GetOpts{
		Display: id,
		Method:  method,
	})
	if err != nil {
		return 0, err
	}
	return readings[0].Percent, readings[0].Err
}

// SetBrightness changes this display's brightness. Relative values resolve
// against this display's current level.
func (d *Display) SetBrightness(value Value, force bool) error {
	id, method := d.target()
	_, err := d.ctrl.SetBrightness(value, SetOpts{
		Display:  id,
		Method:   method,
		Force:    force,
		NoReturn: true,
	})
	return err
}

// FadeBrightness gradually changes this display's brightness to finish,
// blocking until settled, and returns the final level.
func (d *Display) FadeBrightness(ctx context.Context, finish Value, opts FadeOpts) (int, error) {
	opts.Display, opts.Method = d.target()
	readings, err := d.ctrl.FadeBrightness(ctx, finish, opts)
	if err != nil {
		return 0, err
	}
	return readings[0].Percent, readings[0].Err
}

// Refresh re-resolves the display and updates the bound record, picking up
// any changed snapshot ordering or enriched identity fields.
func (d *Display) Refresh() error {
	id, method := d.target()
	records, err := d.ctrl.Resolve(id, method)
	if err != nil {
		return err
	}
	d.info = records[0]
	return nil
}
