// Package persist implements the JSON persistence codec: a document
// shape for one TemporalPolygon, including the natural-order vertex-id
// range encoding and the Linear/Circular/Opaque temporal-function
// encoding (Opaque degrades to its absolute fallback on decode).
package persist

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	goccyjson "github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/deltapolygon/deltapolygon/point"
	"github.com/deltapolygon/deltapolygon/polygon"
	"github.com/deltapolygon/deltapolygon/tfunc"
	"github.com/deltapolygon/deltapolygon/vertex"
	"github.com/deltapolygon/deltapolygon/vstate"
)

// Document is the on-the-wire shape of one TemporalPolygon.
type Document struct {
	ID               uuid.UUID        `json:"id"`
	VertexIDs        []int            `json:"vertexIds"`
	VertexIDsEncoded *string          `json:"vertexIdsEncoded"`
	CoordinateSystem *string          `json:"coordinateSystem"`
	Vertices         []VertexDocument `json:"vertices"`
}

// VertexDocument is one vertex's id and state history.
type VertexDocument struct {
	ID     int             `json:"id"`
	States []StateDocument `json:"states"`
}

// StateDocument is one VertexState, flattened into a single JSON shape
// carrying whichever fields its flavor uses.
type StateDocument struct {
	DeltaX           float64           `json:"deltaX"`
	DeltaY           float64           `json:"deltaY"`
	IsAbsolute       bool              `json:"isAbsolute"`
	AbsoluteX        *float64          `json:"absoluteX,omitempty"`
	AbsoluteY        *float64          `json:"absoluteY,omitempty"`
	IntervalStart    time.Time         `json:"intervalStart"`
	IntervalEnd      *time.Time        `json:"intervalEnd,omitempty"`
	GroupedVertexIDs []int             `json:"groupedVertexIds,omitempty"`
	TemporalFunction *FunctionDocument `json:"temporalFunction,omitempty"`
}

// FunctionDocument is one TemporalFunction.
type FunctionDocument struct {
	FunctionType    string    `json:"functionType"`
	ReferencePointX float64   `json:"referencePointX"`
	ReferencePointY float64   `json:"referencePointY"`
	ReferenceTime   time.Time `json:"referenceTime"`
	Parameters      []float64 `json:"parameters"`
}

// Marshal encodes p as a JSON document, using goccy/go-json for encoding.
func Marshal(p *polygon.TemporalPolygon) ([]byte, error) {
	doc, err := Encode(p)
	if err != nil {
		return nil, err
	}
	return goccyjson.Marshal(doc)
}

// Unmarshal decodes a JSON document back into a TemporalPolygon.
func Unmarshal(data []byte) (*polygon.TemporalPolygon, error) {
	var doc Document
	if err := goccyjson.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return Decode(doc)
}

// Encode converts p into its Document form. Exactly one of VertexIDs or
// VertexIDsEncoded is populated: natural-order sequences (0, 1, ..., n-1)
// use the compact encoded form, anything else lists ids explicitly.
func Encode(p *polygon.TemporalPolygon) (Document, error) {
	doc := Document{ID: p.ID}

	if isNaturalOrder(p.VertexIDs) {
		enc := EncodeIDRange(p.VertexIDs)
		doc.VertexIDsEncoded = &enc
	} else {
		doc.VertexIDs = append([]int(nil), p.VertexIDs...)
	}

	cs := p.CoordSystem.String()
	doc.CoordinateSystem = &cs

	doc.Vertices = make([]VertexDocument, len(p.VertexIDs))
	for i, id := range p.VertexIDs {
		states := p.Vertices[id].States()
		sdocs := make([]StateDocument, len(states))
		for j, s := range states {
			sd, err := encodeState(s)
			if err != nil {
				return Document{}, err
			}
			sdocs[j] = sd
		}
		doc.Vertices[i] = VertexDocument{ID: id, States: sdocs}
	}
	return doc, nil
}

func encodeState(s vstate.State) (StateDocument, error) {
	sd := StateDocument{
		DeltaX:           s.DX,
		DeltaY:           s.DY,
		IsAbsolute:       s.Flavor == vstate.FlavorAbsolute,
		IntervalStart:    s.Interval.Start,
		IntervalEnd:      s.Interval.End,
		GroupedVertexIDs: s.GroupedVertexIDs,
	}
	if s.Flavor == vstate.FlavorAbsolute {
		x, y := s.Point.X, s.Point.Y
		sd.AbsoluteX, sd.AbsoluteY = &x, &y
	}
	if s.Flavor == vstate.FlavorFunction {
		fd, err := encodeFunction(s.Fn)
		if err != nil {
			return StateDocument{}, err
		}
		sd.TemporalFunction = &fd
	}
	return sd, nil
}

func encodeFunction(fn tfunc.Function) (FunctionDocument, error) {
	switch fn.Kind {
	case tfunc.KindLinear:
		return FunctionDocument{
			FunctionType:    "Linear",
			ReferencePointX: fn.RefPoint.X,
			ReferencePointY: fn.RefPoint.Y,
			ReferenceTime:   fn.T0,
			Parameters:      []float64{fn.VX, fn.VY},
		}, nil
	case tfunc.KindCircular:
		return FunctionDocument{
			FunctionType:    "Circular",
			ReferencePointX: fn.Center.X,
			ReferencePointY: fn.Center.Y,
			ReferenceTime:   fn.T0,
			Parameters:      []float64{fn.Radius, fn.Omega, fn.Phi},
		}, nil
	case tfunc.KindOpaque:
		return FunctionDocument{
			FunctionType:    "Opaque",
			ReferencePointX: fn.RefPoint.X,
			ReferencePointY: fn.RefPoint.Y,
			ReferenceTime:   fn.T0,
			Parameters:      []float64{fn.FallbackPoint.X, fn.FallbackPoint.Y},
		}, nil
	default:
		return FunctionDocument{}, fmt.Errorf("persist: unknown function kind %v", fn.Kind)
	}
}

// Decode converts a Document back into a TemporalPolygon. Opaque functions
// deserialize to an Absolute state at their fallback point.
func Decode(doc Document) (*polygon.TemporalPolygon, error) {
	ids, err := decodeIDs(doc)
	if err != nil {
		return nil, err
	}

	vertices := make(map[int]*vertex.Vertex, len(doc.Vertices))
	for _, vd := range doc.Vertices {
		v := vertex.New(vd.ID)
		for _, sd := range vd.States {
			s, err := decodeState(sd)
			if err != nil {
				return nil, err
			}
			v.AddState(s)
		}
		vertices[vd.ID] = v
	}

	cs := polygon.Cartesian
	if doc.CoordinateSystem != nil && *doc.CoordinateSystem == "Geographic" {
		cs = polygon.Geographic
	}

	p, err := polygon.New(ids, vertices, cs)
	if err != nil {
		return nil, err
	}
	p.ID = doc.ID
	return p, nil
}

func decodeState(sd StateDocument) (vstate.State, error) {
	iv := point.Interval{Start: sd.IntervalStart, End: sd.IntervalEnd}

	if sd.TemporalFunction != nil {
		fd := *sd.TemporalFunction
		switch fd.FunctionType {
		case "Linear":
			fn := tfunc.NewLinear(point.Point{X: fd.ReferencePointX, Y: fd.ReferencePointY}, fd.ReferenceTime, fd.Parameters[0], fd.Parameters[1])
			return vstate.NewFunction(fn, iv).WithGroup(sd.GroupedVertexIDs), nil
		case "Circular":
			fn := tfunc.NewCircular(point.Point{X: fd.ReferencePointX, Y: fd.ReferencePointY}, fd.ReferenceTime, fd.Parameters[0], fd.Parameters[1], fd.Parameters[2])
			return vstate.NewFunction(fn, iv).WithGroup(sd.GroupedVertexIDs), nil
		case "Opaque":
			fallback := point.Point{}
			if len(fd.Parameters) >= 2 {
				fallback = point.Point{X: fd.Parameters[0], Y: fd.Parameters[1]}
			}
			return vstate.NewAbsolute(fallback, iv).WithGroup(sd.GroupedVertexIDs), nil
		default:
			return vstate.State{}, fmt.Errorf("persist: unknown function type %q", fd.FunctionType)
		}
	}

	if sd.IsAbsolute {
		var x, y float64
		if sd.AbsoluteX != nil {
			x = *sd.AbsoluteX
		}
		if sd.AbsoluteY != nil {
			y = *sd.AbsoluteY
		}
		return vstate.NewAbsolute(point.Point{X: x, Y: y}, iv).WithGroup(sd.GroupedVertexIDs), nil
	}
	return vstate.NewDelta(sd.DeltaX, sd.DeltaY, iv).WithGroup(sd.GroupedVertexIDs), nil
}

func decodeIDs(doc Document) ([]int, error) {
	if doc.VertexIDsEncoded != nil {
		return DecodeIDRange(*doc.VertexIDsEncoded)
	}
	return doc.VertexIDs, nil
}

// isNaturalOrder reports whether ids is exactly [0, 1, ..., len(ids)-1].
func isNaturalOrder(ids []int) bool {
	for i, id := range ids {
		if id != i {
			return false
		}
	}
	return len(ids) > 0
}

// EncodeIDRange encodes a natural-order id sequence [0, 1, ..., n-1] as
// "0-(n-1)" (or "0" for a single id).
func EncodeIDRange(ids []int) string {
	n := len(ids)
	if n == 1 {
		return "0"
	}
	return fmt.Sprintf("%d-%d", 0, n-1)
}

// DecodeIDRange decodes the comma-separated token form: each token is
// either "n" or "a-b" (a <= b), with "a-b" expanding to a, a+1, ..., b.
func DecodeIDRange(encoded string) ([]int, error) {
	var out []int
	for _, tok := range strings.Split(encoded, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		if dash := strings.IndexByte(tok, '-'); dash >= 0 {
			a, err := strconv.Atoi(strings.TrimSpace(tok[:dash]))
			if err != nil {
				return nil, fmt.Errorf("persist: invalid range token %q: %w", tok, err)
			}
			b, err := strconv.Atoi(strings.TrimSpace(tok[dash+1:]))
			if err != nil {
				return nil, fmt.Errorf("persist: invalid range token %q: %w", tok, err)
			}
			if a > b {
				return nil, fmt.Errorf("persist: invalid range token %q: start after end", tok)
			}
			for i := a; i <= b; i++ {
				out = append(out, i)
			}
			continue
		}
		n, err := strconv.Atoi(tok)
		if err != nil {
			return nil, fmt.Errorf("persist: invalid id token %q: %w", tok, err)
		}
		out = append(out, n)
	}
	return out, nil
}
