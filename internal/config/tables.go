package config

import (
	"encoding/json"

	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"github.com/ironsheep/scan-highlights/internal/transform"
)

// TableFile is the on-disk format for orientation table overrides:
//
//	{
//	  "axis": [
//	    {"platform": "ios", "orientation": "landscape-left", "transform": {"mirrorX": true}}
//	  ],
//	  "layout": [
//	    {"platform": "android", "orientation": "portrait", "swap": true}
//	  ]
//	}
//
// Entries replace the matching defaults; everything else is kept.
type TableFile struct {
	Axis   []AxisEntry   `json:"axis"`
	Layout []LayoutEntry `json:"layout"`
}

// AxisEntry overrides one axis table cell.
type AxisEntry struct {
	Platform    transform.Platform      `json:"platform"`
	Orientation transform.Orientation   `json:"orientation"`
	Transform   transform.AxisTransform `json:"transform"`
}

// LayoutEntry overrides one layout table cell.
type LayoutEntry struct {
	Platform    transform.Platform    `json:"platform"`
	Orientation transform.Orientation `json:"orientation"`
	Swap        bool                  `json:"swap"`
}

// ParseTables applies the overrides in data to copies of axis and layout.
func ParseTables(data []byte, axis transform.AxisTable, layout transform.LayoutTable) (transform.AxisTable, transform.LayoutTable, error) {
	var file TableFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, nil, errors.Wrap(err, "decode table file")
	}

	outAxis, outLayout := axis.Clone(), layout.Clone()
	var errs error
	for i, e := range file.Axis {
		if err := checkKey(e.Platform, e.Orientation); err != nil {
			errs = multierr.Append(errs, errors.Wrapf(err, "axis[%d]", i))
			continue
		}
		outAxis[transform.TableKey{Platform: e.Platform, Orientation: e.Orientation}] = e.Transform
	}
	for i, e := range file.Layout {
		if err := checkKey(e.Platform, e.Orientation); err != nil {
			errs = multierr.Append(errs, errors.Wrapf(err, "layout[%d]", i))
			continue
		}
		outLayout[transform.TableKey{Platform: e.Platform, Orientation: e.Orientation}] = e.Swap
	}
	if errs != nil {
		return nil, nil, errs
	}
	return outAxis, outLayout, nil
}

func checkKey(p transform.Platform, o transform.Orientation) error {
	if p == "" {
		return errors.New("missing platform")
	}
	if _, err := transform.ParsePlatform(string(p)); err != nil {
		return err
	}
	if !o.Known() {
		return errors.Errorf("unknown orientation %q", o)
	}
	return nil
}
