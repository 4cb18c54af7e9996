package geodata

import (
	"log/slog"
	"strconv"
)

// EmptyNumberMarker is the reserved value written by the chart
// decoder for a mandatory attribute whose value was omitted
// (MAXINT-6, following the OGR S-57 convention). Attribute lookups
// treat it the same as an absent attribute.
const EmptyNumberMarker = "2147483641"

// SetAttribute records a string attribute. Last write wins.
func (o *Object) SetAttribute(name, value string) {
	if o.attrs == nil {
		o.attrs = make(map[string]string)
	}
	o.attrs[name] = value
}

// Attribute returns the attribute value. ok is false when the
// attribute is absent, empty, or carries the mandatory-but-unset
// marker.
func (o *Object) Attribute(name string) (value string, ok bool) {
	v, present := o.attrs[name]
	if !present || v == EmptyNumberMarker {
		return "", false
	}
	if v == "" {
		slog.Debug("attribute has no value", "attribute", name, "object", o.name)
		return "", false
	}
	return v, true
}

// AttributeFloat returns a numeric attribute value.
func (o *Object) AttributeFloat(name string) (float64, bool) {
	v, ok := o.Attribute(name)
	if !ok {
		return 0, false
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		slog.Debug("attribute is not numeric", "attribute", name, "value", v, "object", o.name)
		return 0, false
	}
	return f, true
}

// AttributeCount returns the number of attributes set on the object.
func (o *Object) AttributeCount() int { return len(o.attrs) }

// Attributes calls fn for every attribute. Iteration order is
// unspecified.
func (o *Object) Attributes(fn func(name, value string)) {
	for k, v := range o.attrs {
		fn(k, v)
	}
}

// DumpObject logs the object's identity, attributes and geometry
// summary for debugging. With coords set, every coordinate is logged;
// otherwise only the extent.
func DumpObject(o *Object, coords bool) {
	slog.Info("chart object", "id", o.id, "name", o.name, "type", o.Type().String())
	o.Attributes(func(name, value string) {
		slog.Info("attribute", "name", name, "value", value)
	})
	if coords {
		for i := 0; i < o.RingCount(); i++ {
			xyz, err := o.Ring(i)
			if err != nil {
				continue
			}
			for j := 0; j+2 < len(xyz); j += 3 {
				slog.Info("coordinate", "ring", i, "x", xyz[j], "y", xyz[j+1], "z", xyz[j+2])
			}
		}
		return
	}
	slog.Info("extent", "west", o.ext.W, "south", o.ext.S, "east", o.ext.E, "north", o.ext.N)
}
