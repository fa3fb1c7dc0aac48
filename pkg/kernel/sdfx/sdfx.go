// Package sdfx implements the kernel.Kernel interface using the
// github.com/deadsy/sdfx SDF-based CAD library.
package sdfx

import (
	"fmt"

	"github.com/deadsy/sdfx/sdf"
	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/subvol/pkg/geom"
	"github.com/chazu/subvol/pkg/kernel"
)

// Compile-time interface check.
var _ kernel.Kernel = (*SdfxKernel)(nil)

// sdfxSolid wraps an sdf.SDF3 to implement kernel.Solid.
type sdfxSolid struct {
	s sdf.SDF3
}

// BoundingBox returns the axis-aligned bounding box.
func (s *sdfxSolid) BoundingBox() (min, max [3]float64) {
	bb := s.s.BoundingBox()
	min = [3]float64{bb.Min.X, bb.Min.Y, bb.Min.Z}
	max = [3]float64{bb.Max.X, bb.Max.Y, bb.Max.Z}
	return min, max
}

// Distance evaluates the signed distance field at p.
func (s *sdfxSolid) Distance(p geom.Point3) float64 {
	return s.s.Evaluate(p)
}

// SdfxKernel implements kernel.Kernel using sdfx.
type SdfxKernel struct{}

// New returns a new SdfxKernel.
func New() *SdfxKernel {
	return &SdfxKernel{}
}

// Prism extrudes the footprint polygon. sdf.Extrude3D centres the solid on
// z = 0, so it is moved up to the middle of [zmin, zmax].
func (k *SdfxKernel) Prism(footprint []v2.Vec, zmin, zmax float64) (kernel.Solid, error) {
	if zmax <= zmin {
		return nil, fmt.Errorf("sdfx: prism: empty z range [%g, %g]", zmin, zmax)
	}
	s2, err := sdf.Polygon2D(footprint)
	if err != nil {
		return nil, fmt.Errorf("sdfx: prism: %w", err)
	}
	s3 := sdf.Extrude3D(s2, zmax-zmin)
	m := sdf.Translate3d(v3.Vec{Z: (zmin + zmax) / 2})
	return &sdfxSolid{s: sdf.Transform3D(s3, m)}, nil
}
