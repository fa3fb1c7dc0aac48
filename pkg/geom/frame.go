package geom

import (
	"math"

	v2 "github.com/deadsy/sdfx/vec/v2"
)

// Matrix3 is a row-major 3x3 matrix.
type Matrix3 [3][3]float64

// RotationMatrix3D returns the matrix whose columns are the local axes of a
// planar element: x along p1-p0, y along p3-p0 and z along normal, each
// normalised. The axes are not re-orthogonalised; Invert handles skew.
func RotationMatrix3D(p0, p1, p3, normal Point3) Matrix3 {
	x := Unit(p1.Sub(p0))
	y := Unit(p3.Sub(p0))
	z := Unit(normal)
	return Matrix3{
		{x.X, y.X, z.X},
		{x.Y, y.Y, z.Y},
		{x.Z, y.Z, z.Z},
	}
}

// MulVec returns m * v.
func (m Matrix3) MulVec(v Point3) Point3 {
	return Point3{
		X: m[0][0]*v.X + m[0][1]*v.Y + m[0][2]*v.Z,
		Y: m[1][0]*v.X + m[1][1]*v.Y + m[1][2]*v.Z,
		Z: m[2][0]*v.X + m[2][1]*v.Y + m[2][2]*v.Z,
	}
}

// Invert inverts m by Gauss-Jordan elimination with full pivoting. A
// singular matrix reports false.
func Invert(m Matrix3) (Matrix3, bool) {
	const n = 3
	a := m
	var indxc, indxr, ipiv [n]int

	for i := 0; i < n; i++ {
		big := 0.0
		irow, icol := -1, -1
		for j := 0; j < n; j++ {
			if ipiv[j] == 1 {
				continue
			}
			for k := 0; k < n; k++ {
				if ipiv[k] == 0 && math.Abs(a[j][k]) >= big {
					big = math.Abs(a[j][k])
					irow, icol = j, k
				}
			}
		}
		if irow < 0 || big <= TightEps {
			return Matrix3{}, false
		}
		ipiv[icol]++
		if irow != icol {
			a[irow], a[icol] = a[icol], a[irow]
		}
		indxr[i], indxc[i] = irow, icol

		pivinv := 1 / a[icol][icol]
		a[icol][icol] = 1
		for l := 0; l < n; l++ {
			a[icol][l] *= pivinv
		}
		for ll := 0; ll < n; ll++ {
			if ll == icol {
				continue
			}
			dum := a[ll][icol]
			a[ll][icol] = 0
			for l := 0; l < n; l++ {
				a[ll][l] -= a[icol][l] * dum
			}
		}
	}

	for l := n - 1; l >= 0; l-- {
		if indxr[l] == indxc[l] {
			continue
		}
		for k := 0; k < n; k++ {
			a[k][indxr[l]], a[k][indxc[l]] = a[k][indxc[l]], a[k][indxr[l]]
		}
	}
	return a, true
}

// Frame maps between world coordinates and the local frame of a planar
// element anchored at its first corner.
type Frame struct {
	Origin Point3
	M      Matrix3 // local -> world
	Inv    Matrix3 // world -> local
}

// NewFrame builds the local frame of the element with corners p0, p1, p3
// adjacent and the given normal.
func NewFrame(p0, p1, p3, normal Point3) (Frame, bool) {
	m := RotationMatrix3D(p0, p1, p3, normal)
	inv, ok := Invert(m)
	if !ok {
		return Frame{}, false
	}
	return Frame{Origin: p0, M: m, Inv: inv}, true
}

// ToLocal transforms a world point into the frame.
func (f Frame) ToLocal(p Point3) Point3 {
	return f.Inv.MulVec(p.Sub(f.Origin))
}

// FromLocal transforms a local point back to world coordinates.
func (f Frame) FromLocal(l Point3) Point3 {
	return f.Origin.Add(f.M.MulVec(l))
}

// Flatten transforms world points into the frame and drops the local z.
func (f Frame) Flatten(pts []Point3) []v2.Vec {
	out := make([]v2.Vec, len(pts))
	for i, p := range pts {
		l := f.ToLocal(p)
		out[i] = v2.Vec{X: l.X, Y: l.Y}
	}
	return out
}
