// Package bounds translates spatial regions on the sky into SQL predicates
// over a table's right ascension and declination columns. All angles are in degrees.
package bounds

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

type Bound interface {
	ToSQL(raColumn, decColumn string) (string, error)
}

// Circle selects the points within Radius of (RA, Dec).
type Circle struct {
	RA     float64
	Dec    float64
	Radius float64
}

func NewCircle(ra, dec, radius float64) (*Circle, error) {
	if radius <= 0 {
		return nil, errors.Errorf("circle radius must be positive, got %v", radius)
	}
	if math.Abs(dec) > 90 {
		return nil, errors.Errorf("declination out of range: %v", dec)
	}
	return &Circle{RA: normalizeRA(ra), Dec: dec, Radius: radius}, nil
}

func (c *Circle) ToSQL(raColumn, decColumn string) (string, error) {
	if raColumn == "" || decColumn == "" {
		return "", errors.New("circle bound needs both ra and dec columns")
	}

	// First cut down to the box enclosing the circle, which databases can use indices for.
	// The circle's widest RA extent is at the declination where a meridian is tangent to it.
	// Circles reaching a pole span every RA.
	raMin, raMax := 0.0, 360.0
	if math.Abs(c.Dec)+c.Radius < 90 {
		sinHalfWidth := math.Sin(radians(c.Radius)) / math.Cos(radians(c.Dec))
		if sinHalfWidth < 1 {
			halfWidth := degrees(math.Asin(sinHalfWidth))
			raMin, raMax = c.RA-halfWidth, c.RA+halfWidth
		}
	}
	decMin, decMax := c.Dec-c.Radius, c.Dec+c.Radius

	sb := &strings.Builder{}
	sb.WriteString(raRange(raColumn, raMin, raMax))
	sb.WriteString(fmt.Sprintf(" AND %s BETWEEN %s AND %s", decColumn, formatFloat(decMin), formatFloat(decMax)))

	// Then use the haversine formula for the exact distance.
	sb.WriteString(fmt.Sprintf(" AND 2 * ASIN(SQRT(POWER(SIN(0.5 * (%s - %s) * PI() / 180.0), 2)", decColumn, formatFloat(c.Dec)))
	sb.WriteString(fmt.Sprintf(" + COS(%s * PI() / 180.0) * COS(%s * PI() / 180.0)", decColumn, formatFloat(c.Dec)))
	sb.WriteString(fmt.Sprintf(" * POWER(SIN(0.5 * (%s - %s) * PI() / 180.0), 2)))", raColumn, formatFloat(c.RA)))
	sb.WriteString(fmt.Sprintf(" < %s", formatFloat(radians(c.Radius))))

	return sb.String(), nil
}

// Box selects the points within the given half widths of (RA, Dec) along each axis.
type Box struct {
	RA           float64
	Dec          float64
	RAHalfWidth  float64
	DecHalfWidth float64
}

// NewBox creates a box. A single half width is used for both axes.
func NewBox(ra, dec float64, halfWidths ...float64) (*Box, error) {
	var raHalf, decHalf float64
	switch len(halfWidths) {
	case 1:
		raHalf, decHalf = halfWidths[0], halfWidths[0]
	case 2:
		raHalf, decHalf = halfWidths[0], halfWidths[1]
	default:
		return nil, errors.Errorf("box needs one or two half widths, got %d", len(halfWidths))
	}
	if raHalf <= 0 || decHalf <= 0 {
		return nil, errors.Errorf("box half widths must be positive, got %v and %v", raHalf, decHalf)
	}
	return &Box{RA: normalizeRA(ra), Dec: dec, RAHalfWidth: raHalf, DecHalfWidth: decHalf}, nil
}

func (b *Box) ToSQL(raColumn, decColumn string) (string, error) {
	if raColumn == "" || decColumn == "" {
		return "", errors.New("box bound needs both ra and dec columns")
	}

	return fmt.Sprintf("%s AND %s BETWEEN %s AND %s",
		raRange(raColumn, b.RA-b.RAHalfWidth, b.RA+b.RAHalfWidth),
		decColumn,
		formatFloat(b.Dec-b.DecHalfWidth),
		formatFloat(b.Dec+b.DecHalfWidth),
	), nil
}

// Parse creates a bound from its kind and parameters, as given on the command line:
// circle takes ra, dec, radius and box takes ra, dec and one or two half widths.
func Parse(kind string, params []float64) (Bound, error) {
	switch strings.ToLower(kind) {
	case "circle":
		if len(params) != 3 {
			return nil, errors.Errorf("circle takes ra, dec and radius, got %d parameters", len(params))
		}
		return NewCircle(params[0], params[1], params[2])
	case "box":
		if len(params) < 3 {
			return nil, errors.Errorf("box takes ra, dec and half widths, got %d parameters", len(params))
		}
		return NewBox(params[0], params[1], params[2:]...)
	}
	return nil, errors.Errorf("unknown bound kind: %s", kind)
}

// raRange handles ranges wrapping around 0/360.
func raRange(raColumn string, raMin, raMax float64) string {
	if raMax-raMin >= 360 {
		return fmt.Sprintf("%s BETWEEN 0 AND 360", raColumn)
	}
	if raMin < 0 {
		return fmt.Sprintf("(%s BETWEEN %s AND 360 OR %s BETWEEN 0 AND %s)",
			raColumn, formatFloat(raMin+360), raColumn, formatFloat(raMax))
	}
	if raMax > 360 {
		return fmt.Sprintf("(%s BETWEEN %s AND 360 OR %s BETWEEN 0 AND %s)",
			raColumn, formatFloat(raMin), raColumn, formatFloat(raMax-360))
	}
	return fmt.Sprintf("%s BETWEEN %s AND %s", raColumn, formatFloat(raMin), formatFloat(raMax))
}

func normalizeRA(ra float64) float64 {
	ra = math.Mod(ra, 360)
	if ra < 0 {
		ra += 360
	}
	return ra
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}

func degrees(rad float64) float64 {
	return rad * 180 / math.Pi
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
