/*
Copyright © 2018 the Heightmap authors.
This file is part of Heightmap.

Heightmap is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

Heightmap is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with Heightmap.  If not, see <http://www.gnu.org/licenses/>.
*/

package heightmap

import (
	"fmt"
	"math"

	"github.com/ctessum/geom/proj"
)

const (
	deg2rad = 0.01745329251994329577
	rad2deg = 57.29577951308232088

	// earthRadius is the WGS84 mean radius [m]. A spherical earth is
	// accurate to well under a meter at heightmap tile scales.
	earthRadius = 6371008.8
)

// AEQD is an azimuthal equidistant projection on a spherical earth,
// centered at a geodetic origin. The origin maps to (0, 0), x
// increases eastward, y increases northward, and the straight-line
// distance from the plane origin to any projected point equals the
// great-circle distance on the sphere.
type AEQD struct {
	origin           Origin
	lat0, lon0       float64 // origin in radians
	sinLat0, cosLat0 float64
	radius           float64
}

// NewAEQD creates a projection centered at origin.
func NewAEQD(origin Origin) *AEQD {
	p := &AEQD{
		origin: origin,
		lat0:   origin.Lat * deg2rad,
		lon0:   origin.Lon * deg2rad,
		radius: earthRadius,
	}
	p.sinLat0, p.cosLat0 = math.Sincos(p.lat0)
	return p
}

// Origin returns the geodetic anchor of the projection.
func (p *AEQD) Origin() Origin { return p.origin }

// Forward equations--mapping geodetic degrees to local plane meters.
// The central angle comes from the haversine formula, which stays
// well conditioned for the short distances heightmap tiles cover, and
// the initial bearing from the origin gives the direction on the
// plane. A zero-distance input yields exactly (0, 0); atan2 keeps the
// bearing finite even when it is geometrically meaningless there.
func (p *AEQD) Forward(lat, lon float64) (x, y float64) {
	phi := lat * deg2rad
	dLam := normLon((lon - p.origin.Lon) * deg2rad)
	sinPhi, cosPhi := math.Sincos(phi)
	sinDLam, cosDLam := math.Sincos(dLam)

	sinHalfPhi := math.Sin((phi - p.lat0) / 2)
	sinHalfLam := math.Sin(dLam / 2)
	a := sinHalfPhi*sinHalfPhi + p.cosLat0*cosPhi*sinHalfLam*sinHalfLam
	if a > 1 {
		a = 1
	}
	dist := p.radius * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	bearing := math.Atan2(sinDLam*cosPhi,
		p.cosLat0*sinPhi-p.sinLat0*cosPhi*cosDLam)
	sinB, cosB := math.Sincos(bearing)
	return dist * sinB, dist * cosB
}

// Inverse equations--mapping local plane meters back to geodetic
// degrees with the direct geodesic formula on the sphere. The plane
// origin returns the geodetic origin exactly. The asin argument is
// clamped so that rounding near the poles cannot produce NaN.
func (p *AEQD) Inverse(x, y float64) (lat, lon float64) {
	if x == 0 && y == 0 {
		return p.origin.Lat, p.origin.Lon
	}
	delta := math.Hypot(x, y) / p.radius
	bearing := math.Atan2(x, y)
	sinDelta, cosDelta := math.Sincos(delta)
	sinB, cosB := math.Sincos(bearing)

	sinPhi := p.sinLat0*cosDelta + p.cosLat0*sinDelta*cosB
	if sinPhi > 1 {
		sinPhi = 1
	} else if sinPhi < -1 {
		sinPhi = -1
	}
	phi := math.Asin(sinPhi)
	lam := p.lon0 + math.Atan2(sinB*sinDelta*p.cosLat0, cosDelta-p.sinLat0*sinPhi)
	return phi * rad2deg, normLon(lam) * rad2deg
}

// TransformTo returns a function converting local plane coordinates
// to coordinates in the spatial reference dst, which may be any
// reference the proj package can represent.
func (p *AEQD) TransformTo(dst *proj.SR) (proj.Transformer, error) {
	longlat, err := proj.Parse("+proj=longlat")
	if err != nil {
		return nil, fmt.Errorf("heightmap: while preparing geographic reference: %v", err)
	}
	t, err := longlat.NewTransform(dst)
	if err != nil {
		return nil, fmt.Errorf("heightmap: while preparing transform to raster reference: %v", err)
	}
	return func(x, y float64) (X, Y float64, err error) {
		lat, lon := p.Inverse(x, y)
		return t(lon, lat)
	}, nil
}

// normLon wraps a longitude in radians into [-π, π].
func normLon(lon float64) float64 {
	if math.Abs(lon) <= math.Pi {
		return lon
	}
	lon = math.Mod(lon, 2*math.Pi)
	if lon > math.Pi {
		lon -= 2 * math.Pi
	} else if lon < -math.Pi {
		lon += 2 * math.Pi
	}
	return lon
}
