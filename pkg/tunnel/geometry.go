package tunnel

import (
	"math"

	"github.com/taigrr/tunnelrun/pkg/math3d"
	"github.com/taigrr/tunnelrun/pkg/models"
)

// Tessellation of a segment.
const (
	Steps  = 20 // along the arc
	Facets = 8  // around the cross-section

	// AtlasTiles is the edge length of the square texture atlas in tiles.
	AtlasTiles = 3

	atlasInset = 0.01
)

// VertexCount and IndexCount are the sizes of every segment mesh.
const (
	VertexCount = Steps * Facets * 4
	IndexCount  = Steps * Facets * 6
)

// Mesh tessellates the segment into world-space quads. Each facet of each
// step gets its own four vertices and a random tile of the atlas, so the
// placement transform for the result is the identity.
func (s *Segment) Mesh(rng Rand) *models.Mesh {
	m := models.NewMesh("segment", VertexCount, IndexCount)
	orient := s.Frame.Orientation()

	ring := func(i, j int) math3d.Vec3 {
		local := s.canonicalPoint(float64(i)/Steps*math.Pi/2, facetAngle(j))
		return s.Origin.Add(orient.MulVec3Dir(local))
	}

	for i := 0; i < Steps; i++ {
		for j := 0; j < Facets; j++ {
			u0, v0, u1, v1 := atlasTile(rng.Intn(AtlasTiles * AtlasTiles))
			m.AddQuad([4]models.MeshVertex{
				{Position: ring(i, j), UV: math3d.V2(u0, v0)},
				{Position: ring(i, j+1), UV: math3d.V2(u0, v1)},
				{Position: ring(i+1, j+1), UV: math3d.V2(u1, v1)},
				{Position: ring(i+1, j), UV: math3d.V2(u1, v0)},
			})
		}
	}

	m.CalculateNormals()
	m.CalculateBounds()
	return m
}

// canonicalPoint is the tube surface point at arc angle a (radians) and
// facet angle phi, for a segment at the origin heading along -Z and bending
// toward +Y.
func (s *Segment) canonicalPoint(a, phi float64) math3d.Vec3 {
	bigR := s.Params.BigR
	r := s.Params.TubeRadius
	return math3d.V3(
		r*math.Cos(phi),
		bigR-(bigR+r*math.Sin(phi))*math.Cos(a),
		-(s.Params.EllipseRatio*bigR+r*math.Sin(phi))*math.Sin(a),
	)
}

// facetAngle is the angle of ring vertex j. The half-facet offset puts flat
// faces, not edges, under the right-angle steering positions.
func facetAngle(j int) float64 {
	return float64(j)*2*math.Pi/Facets + math.Pi/Facets
}

func atlasTile(tile int) (u0, v0, u1, v1 float64) {
	const size = 1.0 / AtlasTiles
	tx := float64(tile % AtlasTiles)
	ty := float64(tile / AtlasTiles)
	return tx*size + atlasInset, ty*size + atlasInset,
		(tx+1)*size - atlasInset, (ty+1)*size - atlasInset
}
